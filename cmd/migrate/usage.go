package main

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
)

// intArg parses the command's numeric argument or exits.
func intArg(args []string, fatal func() *zerolog.Event) int {
	if len(args) < 2 {
		fatal().Str("command", args[0]).Msg("Missing numeric argument")
	}
	v, err := strconv.Atoi(args[1])
	if err != nil {
		fatal().Err(err).Str("value", args[1]).Msg("Invalid numeric argument")
	}
	return v
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println("Commands: up, down, steps <n>, version, force <version>")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
