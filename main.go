// =============================================================================
// EDI Splitter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the EDI Splitter CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   edisplit split FILE        - Split a file into two halves
//   edisplit remove FILE       - Remove orders and write a rejection report
//   edisplit orders FILE       - List the orders in a file
//   edisplit process           - Split every file in the input directory
//   edisplit version           - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core logic (EDI engine, config, processing, reports)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/edi-splitter/cmd"
)

func main() {
	cmd.Execute()
}
