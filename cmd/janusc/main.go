// Command janusc drives the middle end end to end: it reads a parse
// tree as JSON and writes the compiled bytecode.Module as JSON,
// following the thin-CLI-over-a-library pattern of the teacher's own
// analysis command drivers rather than embedding any logic itself.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"janus/bytecode"
	"janus/compiler"
	"janus/diag"
	"janus/pt"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		sanityCheck    bool
		emitDebugNames bool
		outPath        string
	)

	cmd := &cobra.Command{
		Use:           "janusc [input]",
		Short:         "compile a Janus parse tree (JSON) to a bytecode module (JSON)",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(args)
			if err != nil {
				return err
			}
			defer in.Close()

			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("janusc: reading input: %w", err)
			}

			module, err := pt.DecodeModule(data)
			if err != nil {
				return err
			}

			bc, err := compiler.Compile(module, compiler.Options{
				EmitDebugNames: emitDebugNames,
				SanityCheck:    sanityCheck,
			})
			if err != nil {
				printDiag(cmd.ErrOrStderr(), err)
				return err
			}

			out, err := openOutput(outPath)
			if err != nil {
				return err
			}
			defer out.Close()

			return writeModule(out, bc)
		},
	}

	cmd.Flags().BoolVar(&sanityCheck, "sanity", false, "run the internal sanity checker over every compiled function")
	cmd.Flags().BoolVar(&emitDebugNames, "debug-names", false, "accepted for debug names; no compiler pass reads it")
	cmd.Flags().StringVarP(&outPath, "output", "o", "-", "output path, or - for stdout")

	return cmd
}

func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("janusc: opening input: %w", err)
	}
	return f, nil
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("janusc: opening output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func writeModule(w io.Writer, m *bytecode.Module) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("janusc: writing output: %w", err)
	}
	return nil
}

func printDiag(w io.Writer, err error) {
	if d, ok := err.(*diag.Error); ok {
		diag.NewPrinter(w).Print(d)
		return
	}
	fmt.Fprintln(w, "error:", err)
}
