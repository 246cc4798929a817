// Package main is the entry point for the refit CLI.
package main

import "refit.dev/pkg/refit/cmd"

func main() {
	cmd.Execute()
}
