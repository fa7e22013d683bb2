// Package utils provides utility functions for CLI commands in wasm.
package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/wasmhost/wasm/cmd/output"
	"github.com/wasmhost/wasm/services"
)

var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// HandleCommandError provides consistent error handling for CLI commands
func HandleCommandError(operation string, err error, context ...any) {
	slog.Error("Command failed", append([]any{"operation", operation, "error", err}, context...)...)
	_, _ = fmt.Fprint(stderr, output.PrintMessage(output.Error, "Error: %s", services.FormatErrorForUser(err)))
	exit(1)
}
