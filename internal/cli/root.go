// Package cli wires the CLI collaborator contract (flags, output
// selection, debug dumps) to the internal/asmctx pipeline, following
// cmd/cli/cmd's layout: a root cobra.Command with a command group and
// subcommands registered in init().
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// RootCmd is the top-level `asm8086` command. cmd/asm8086/main.go runs it
// through Execute.
var RootCmd = &cobra.Command{
	Use:   "asm8086",
	Short: "8086/80186 assembler",
	Long:  `asm8086 assembles 8086/80186 source into a raw binary or MS-DOS MZ executable.`,
}

func init() {
	RootCmd.AddGroup(&cobra.Group{
		ID:    "assemble",
		Title: "Assembly",
	})
	RootCmd.AddCommand(assembleCmd)
}

// Execute runs RootCmd and exits nonzero on error "Exit
// code: 0 on success; nonzero and diagnostic on any error."
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	inputs    []string
	outPath   string
	format    string
	linkMode  bool
	showAST   bool
	showLink  bool
	showSec   bool
	showAll   bool
)

var assembleCmd = &cobra.Command{
	Use:     "assemble",
	GroupID: "assemble",
	Short:   "Assemble a source file into a binary artifact",
	Long:    `Assemble reads an 8086/80186 assembly source file and writes a RawBinary or MZ executable`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssemble(cmd)
	},
}

func init() {
	flags := assembleCmd.Flags()
	flags.StringArrayVarP(&inputs, "in", "i", nil, "input source file (repeatable; last wins as the primary target)")
	flags.StringVarP(&outPath, "out", "o", "", "output file (default: input with extension removed)")
	flags.StringVarP(&format, "format", "f", "bin", "output format: bin, com (raw binary), exe (MS-DOS MZ), obj (cataloged, not realized)")
	flags.BoolVarP(&linkMode, "link", "l", false, "linking mode")
	flags.BoolVar(&showAST, "show-ast", false, "dump the parsed statement list (debug only, no effect on output bytes)")
	flags.BoolVar(&showLink, "show-link", false, "dump the linked image's symbol values (debug only, no effect on output bytes)")
	flags.BoolVar(&showSec, "show-sec", false, "dump section sizes and fix-up counts (debug only, no effect on output bytes)")
	flags.BoolVar(&showAll, "show-all", false, "enable every -show-* dump")
}

// primaryInput resolves the -i/-in flag list to the one primary source
// file: the last occurrence wins
func primaryInput() (string, error) {
	if len(inputs) == 0 {
		return "", fmt.Errorf("no input file given (-i/-in)")
	}
	return inputs[len(inputs)-1], nil
}

// defaultOutputPath strips the input's extension
// "-o/-out (default: input with extension removed)".
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext)
}

func runAssemble(cmd *cobra.Command) error {
	input, err := primaryInput()
	if err != nil {
		return err
	}

	out := outPath
	if out == "" {
		out = defaultOutputPath(input)
	}

	source, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}

	result, err := Assemble(input, string(source), format)
	if err != nil {
		printDiagnostics(cmd, result)
		return err
	}

	if err := os.WriteFile(out, result.Output, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	printDiagnostics(cmd, result)
	for _, w := range result.Warnings {
		cmd.Printf("warning: %s\n", w.Message)
	}
	cmd.Printf("wrote %s (%d bytes)\n", out, len(result.Output))
	return nil
}

func printDiagnostics(cmd *cobra.Command, result *Result) {
	if result == nil {
		return
	}
	all := showAll
	if showAST || all {
		cmd.Println("=== AST ===")
		for _, line := range result.ASTDump {
			cmd.Println(line)
		}
	}
	if showSec || all {
		cmd.Println("=== SECTIONS ===")
		for _, line := range result.SectionDump {
			cmd.Println(line)
		}
	}
	if showLink || all {
		cmd.Println("=== LINK ===")
		for _, line := range result.LinkDump {
			cmd.Println(line)
		}
	}
	for _, e := range result.Diagnostics {
		cmd.Println(e)
	}
}
