package main

import "github.com/mvp-joe/docsmith/internal/cli"

func main() {
	cli.Execute()
}
