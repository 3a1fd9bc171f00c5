/*
Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// main.go - CLI entry point.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/gmofishsauce/gup/internal/compiler"
	"github.com/gmofishsauce/gup/internal/diag"
)

const version = "0.1.0"

// exitBadArgs is the process exit status for the help/version fast
// paths and for any compile error: -1 truncated to a byte, matching
// the synopsis's "status -1" wording with an os.Exit-able value.
const exitBadArgs = 255

var (
	showVersion bool
	asmOnly     bool
	asmFormat   string
	debug       bool
)

func main() {
	root := &cobra.Command{
		Use:           "gup PATH...",
		Short:         "gup compiles source files to x86_64 assembly",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Args is deliberately permissive: -h/-v are fast paths that
		// must win even with zero positional arguments, so the real
		// "at least one path" check happens by hand in run.
		Args: cobra.ArbitraryArgs,
		RunE: run,
	}
	root.InitDefaultHelpFlag()
	root.Flags().Lookup("help").Usage = "print help text and exit"
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "print version banner and exit")
	root.Flags().BoolVarP(&asmOnly, "asm-only", "a", false, "assembly-only; do not invoke the external assembler")
	root.Flags().StringVarP(&asmFormat, "format", "f", "elf64", "object format passed to the external assembler")
	root.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug tracing")
	// cobra answers -h itself, before RunE, and Execute then returns
	// nil; exiting here keeps -h on the exitBadArgs status.
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stdout, cmd.UsageString())
		os.Exit(exitBadArgs)
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gup: %v\n", err)
		os.Exit(exitBadArgs)
	}
}

func run(cmd *cobra.Command, paths []string) error {
	if help, _ := cmd.Flags().GetBool("help"); help {
		cmd.Help()
		os.Exit(exitBadArgs)
	}
	if showVersion {
		fmt.Fprintf(os.Stdout, "gup version %s\n", version)
		os.Exit(exitBadArgs)
	}
	if len(paths) == 0 {
		return fmt.Errorf("at least one source path is required")
	}
	for _, path := range paths {
		if err := compileOne(path); err != nil {
			fmt.Fprintf(os.Stderr, "gup: %s: %v\n", path, err)
			return err
		}
	}
	return nil
}

// compileOne compiles a single source file to compiler.DefaultAsmOut
// and, unless -a was given, invokes the external assembler on it and
// removes the generated assembly on success.
func compileOne(path string) error {
	sink := diag.New(path)
	sink.SetDebug(debug)

	st, err := compiler.Open(path, compiler.DefaultAsmOut, sink)
	if err != nil {
		return err
	}

	compileErr := st.Compile()
	if err := st.Close(); err != nil && compileErr == nil {
		compileErr = err
	}
	if compileErr != nil {
		return compileErr
	}

	if asmOnly {
		return nil
	}
	return assembleAndCleanUp(sink)
}

// assembleAndCleanUp invokes the external assembler on the generated
// assembly and removes it on success, the way the round-trip test
// harness this is modeled on invokes and cleans up after its tools.
func assembleAndCleanUp(sink *diag.Sink) error {
	cmd := exec.Command("nasm", "-f"+asmFormat, compiler.DefaultAsmOut)
	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		sink.Warnf(0, "assembler output: %s", output)
	}
	if err != nil {
		return fmt.Errorf("external assembler: %w", err)
	}
	return os.Remove(compiler.DefaultAsmOut)
}
