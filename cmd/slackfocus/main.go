// Package main is the entry point for the slackfocus CLI.
package main

import "github.com/slackfocus/slackfocus/internal/cli"

func main() {
	cli.Execute()
}
