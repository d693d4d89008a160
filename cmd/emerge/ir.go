package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"emerge/internal/driver"
	"emerge/internal/ir"
)

func newIRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ir [flags] [file|directory...]",
		Short: "Emit IR for declarations that bind without errors",
		RunE:  runIR,
	}
	cmd.Flags().String("format", "text", "IR format (text|msgpack)")
	cmd.Flags().StringP("output", "o", "", "write IR to file instead of stdout")
	cmd.Flags().String("package", "", "emit only this package (required for msgpack when there are several)")
	addCheckFlags(cmd)
	return cmd
}

func runIR(cmd *cobra.Command, args []string) (err error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "text" && format != "msgpack" {
		return fmt.Errorf("unknown format %q (expected text|msgpack)", format)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	pkg, err := cmd.Flags().GetString("package")
	if err != nil {
		return fmt.Errorf("failed to get package flag: %w", err)
	}

	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	s.opts.EmitIR = true
	res, err := driver.Check(cmd.Context(), s.paths, s.opts)
	if err != nil {
		return err
	}
	if res.HasErrors() {
		if err := printDiagnostics(cmd.ErrOrStderr(), "pretty", res, s); err != nil {
			return err
		}
		return errCheckFailed
	}

	snapshots := res.Snapshots
	if pkg != "" {
		snapshots = nil
		for _, snap := range res.Snapshots {
			if snap.Package == pkg {
				snapshots = append(snapshots, snap)
			}
		}
		if len(snapshots) == 0 {
			return fmt.Errorf("no package %q in the input", pkg)
		}
	}
	if format == "msgpack" && len(snapshots) != 1 {
		return fmt.Errorf("msgpack output holds one package, got %d; select one with --package", len(snapshots))
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, ferr := os.Create(output)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if format == "msgpack" {
		return ir.EncodeSnapshot(w, snapshots[0])
	}
	for _, snap := range snapshots {
		if err := ir.Dump(w, snap); err != nil {
			return err
		}
	}
	return nil
}
