package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/mvp-joe/docsmith/internal/model"
	"github.com/mvp-joe/docsmith/internal/reader"
)

var (
	// ErrInvalidLanguage indicates a language without a reader
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrEmptySourcePaths indicates no source roots were configured
	ErrEmptySourcePaths = errors.New("empty source paths")

	// ErrInvalidPattern indicates a namespace or exclusion pattern that does not compile
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrEmptyWriter indicates a missing writer name
	ErrEmptyWriter = errors.New("empty writer")

	// ErrEmptyOutputPath indicates a missing output directory
	ErrEmptyOutputPath = errors.New("empty output path")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")
)

// Validate checks if the configuration is valid.
// Returns an error describing all validation failures.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateSources(cfg); err != nil {
		errs = append(errs, err)
	}

	if err := validatePatterns(cfg); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.DebounceMillis < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMillis))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateSources(cfg *Config) error {
	var errs []error

	supported := reader.SupportedLanguages()
	if !slices.Contains(supported, cfg.Language) {
		errs = append(errs, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidLanguage, cfg.Language, strings.Join(supported, ", ")))
	}

	if len(cfg.SourcePaths) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one source path is required", ErrEmptySourcePaths))
	}

	for _, p := range cfg.SourcePaths {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("%w: source path cannot be blank", ErrEmptySourcePaths))
			break
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePatterns(cfg *Config) error {
	var errs []error

	if _, err := model.ParseSelector(cfg.Namespaces); err != nil {
		errs = append(errs, fmt.Errorf("%w: namespaces: %v", ErrInvalidPattern, err))
	}

	if cfg.ExcludeVars != "" {
		if _, err := regexp.Compile(cfg.ExcludeVars); err != nil {
			errs = append(errs, fmt.Errorf("%w: exclude_vars: %v", ErrInvalidPattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Writer) == "" {
		errs = append(errs, fmt.Errorf("%w: writer cannot be empty", ErrEmptyWriter))
	}

	if strings.TrimSpace(cfg.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: output path cannot be empty", ErrEmptyOutputPath))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The result still matches every sentinel through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return &validationError{errs: errs}
}

type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	msgs := make([]string, 0, len(e.errs))
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *validationError) Unwrap() []error {
	return e.errs
}
