// Command flux compiles and runs Flux source code: a script runner, a
// one-shot expression evaluator, an interactive REPL, and a bytecode
// disassembler, wired together with spf13/cobra.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	flux "github.com/flux-lang/flux"
	"github.com/flux-lang/flux/bcrewrite"
	"github.com/flux-lang/flux/code"
	"github.com/flux-lang/flux/diag"
	"github.com/flux-lang/flux/repl"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flux",
		Short:         "Flux compiles and runs Flux programs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(), newEvalCmd(), newReplCmd(), newDisasmCmd())
	return root
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Compile and run a Flux script file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			//nolint:gosec
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			return runSource(string(content), args[0])
		},
	}
	return cmd
}

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <expr>",
		Short: "Evaluate a single Flux expression and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSource(args[0], "<eval>")
		},
	}
	return cmd
}

func newReplCmd() *cobra.Command {
	var noColor, debug bool
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive Flux REPL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username := "flux"
			if usr := os.Getenv("USER"); usr != "" {
				username = usr
			}
			repl.Start(username, repl.Options{NoColor: noColor, Debug: debug})
			return nil
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable syntax highlighting and colored output")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable verbose debug output")
	return cmd
}

func newDisasmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm <file>",
		Short: "Compile a Flux script and print its disassembled bytecode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			//nolint:gosec
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			program, diags := flux.Compile(string(content), args[0])
			if len(diags) > 0 {
				printDiagnostics(diags)
				return fmt.Errorf("compilation failed")
			}
			return bcrewrite.ForEachInstr(program.Bytecode.Instructions, func(v bcrewrite.InstrView) {
				def, err := code.Lookup(byte(v.Op))
				name := "?"
				if err == nil {
					name = def.Name
				}
				fmt.Printf("%04d %-16s %v\n", v.PC, name, v.Operands)
			})
		},
	}
	return cmd
}

func runSource(source, name string) error {
	program, diags := flux.Compile(source, name)
	if len(diags) > 0 {
		printDiagnostics(diags)
		return fmt.Errorf("compilation failed")
	}

	result, err := flux.Run(program, nil)
	if err != nil {
		return fmt.Errorf("runtime error: %w", err)
	}
	if result != nil {
		fmt.Println(result.Inspect())
	}
	return nil
}

func printDiagnostics(diags diag.Diagnostics) {
	for _, d := range diags {
		if d.Hint != "" {
			fmt.Fprintf(os.Stderr, "%s: %s (%s) at line %d\n", d.Code, d.Message, d.Hint, d.Span.Start.Line)
		} else {
			fmt.Fprintf(os.Stderr, "%s: %s at line %d\n", d.Code, d.Message, d.Span.Start.Line)
		}
	}
}
