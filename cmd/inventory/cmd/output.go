// Package cmd provides CLI commands for the inventory tool.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// envelope is the wrapper emitted on stdout in --json mode. Exactly one
// envelope is printed per invocation.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// printEnvelope writes the JSON envelope to stdout.
func printEnvelope(env envelope) {
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ failed to encode JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// emitResult reports a successful command outcome: the JSON envelope in
// --json mode, the human-readable summary otherwise. Quiet mode suppresses
// the summary.
func emitResult(data interface{}, summary string) {
	if jsonOutput {
		printEnvelope(envelope{Success: true, Data: data})
		return
	}
	if quiet || summary == "" {
		return
	}
	fmt.Println(summary)
}

// fail reports a command failure and exits with code 1, or 130 when the run
// was interrupted.
func fail(message string, err error) {
	if jsonOutput {
		printEnvelope(envelope{Success: false, Error: fmt.Sprintf("%s: %v", message, err)})
	} else {
		fmt.Fprintf(os.Stderr, "❌ %s: %v\n", message, err)
	}
	if errors.Is(err, context.Canceled) {
		os.Exit(130)
	}
	os.Exit(1)
}

// step prints a progress line. Suppressed in quiet and JSON modes so stdout
// stays parseable.
func step(format string, args ...interface{}) {
	if quiet || jsonOutput {
		return
	}
	fmt.Printf(format+"\n", args...)
}
