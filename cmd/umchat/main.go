// UMChat - embeddable skill chat core
// License: MIT

package main

import (
	"fmt"
	"os"

	"umchat/pkg/config"
	"umchat/pkg/logger"
)

const version = "0.1.0"

var globalConfigPathOverride string

func main() {
	globalConfigPathOverride = detectConfigPathFromArgs(os.Args)

	for _, arg := range os.Args {
		if arg == "--debug" || arg == "-d" {
			config.SetDebugMode(true)
			logger.SetLevel(logger.DEBUG)
			break
		}
	}

	os.Args = normalizeCLIArgs(os.Args)

	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "chat":
		chatCmd()
	case "serve":
		serveCmd()
	case "history":
		historyCmd()
	case "config":
		configCmd()
	case "version", "--version", "-v":
		fmt.Printf("umchat v%s\n", version)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("umchat - terminal front-end for the skill chat widget core")
	fmt.Println()
	fmt.Println("Usage: umchat <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  chat       Open the chat panel")
	fmt.Println("  serve      Run a local mock skill webhook")
	fmt.Println("  history    Show or clear the stored conversation")
	fmt.Println("  config     Show or initialize the configuration")
	fmt.Println("  version    Print the version")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --debug, -d       Verbose logging, local config dir")
	fmt.Println("  --config <path>   Use an explicit config file")
}
