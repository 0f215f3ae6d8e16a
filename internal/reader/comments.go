package reader

import "strings"

// stripCommentPrefix removes a line-comment marker and one following space.
func stripCommentPrefix(line, marker string) string {
	line = strings.TrimPrefix(line, marker)
	return strings.TrimPrefix(line, " ")
}

// blockCommentLines returns the text lines of a /* */ comment with the
// delimiters and the conventional leading asterisks removed.
func blockCommentLines(text string) []string {
	text = strings.TrimSuffix(strings.TrimSpace(text), "*/")
	for _, opener := range []string{"/**", "/*!", "/*"} {
		if strings.HasPrefix(text, opener) {
			text = strings.TrimPrefix(text, opener)
			break
		}
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		lines = append(lines, strings.TrimPrefix(line, " "))
	}
	return lines
}

// commentLines returns the text lines of a C or C++ style comment.
func commentLines(text string) []string {
	text = strings.TrimRight(text, "\r\n")
	switch {
	case strings.HasPrefix(text, "/*"):
		return blockCommentLines(text)
	case strings.HasPrefix(text, "///"):
		return []string{stripCommentPrefix(text, "///")}
	case strings.HasPrefix(text, "//!"):
		return []string{stripCommentPrefix(text, "//!")}
	default:
		return []string{stripCommentPrefix(text, "//")}
	}
}
