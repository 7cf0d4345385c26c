package main

import "github.com/spec-kit/issuetrack/internal/cli"

// set via -ldflags at release build time
var version = "dev"

func main() {
	cli.Execute(version)
}
