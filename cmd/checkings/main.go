// SPDX-License-Identifier: MIT

// checkings is the validation service CLI.
//
// Usage:
//
//	checkings daemon [-config config.yaml]
//	checkings validate -schema schema.json -payload payload.json
//	checkings config <validate|dump|init> [flags]
//	checkings version
package main

import (
	"fmt"
	"os"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "validate":
		os.Exit(runValidate(os.Args[2:]))
	case "config":
		os.Exit(runConfigCLI(os.Args[2:]))
	case "version", "-version", "--version":
		fmt.Printf("checkings %s (commit: %s, built: %s)\n", version, commit, buildDate)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  checkings daemon [-config config.yaml]")
	fmt.Fprintln(os.Stderr, "        run the validation server")
	fmt.Fprintln(os.Stderr, "  checkings validate -schema FILE -payload FILE [-report FILE]")
	fmt.Fprintln(os.Stderr, "        validate one payload against a schema file and exit")
	fmt.Fprintln(os.Stderr, "  checkings config <validate|dump|init> [flags]")
	fmt.Fprintln(os.Stderr, "        inspect or initialise the configuration file")
	fmt.Fprintln(os.Stderr, "  checkings version")
	fmt.Fprintln(os.Stderr, "        print version and exit")
}
