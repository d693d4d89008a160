package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"emerge/internal/diagfmt"
	"emerge/internal/driver"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [file|directory...]",
		Short: "Bind declaration files and report diagnostics",
		Long: `Bind every .toml/.yaml declaration file as one compilation unit and report
diagnostics. Without arguments the sources of the enclosing emerge.toml are used.`,
		RunE: runCheck,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	cmd.Flags().String("ui", "off", "progress view (auto|on|off)")
	addCheckFlags(cmd)
	return cmd
}

// addCheckFlags registers the flags shared by check and ir.
func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Bool("no-lints", false, "drop lint warnings")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "short", "json":
	default:
		return fmt.Errorf("unknown format %q (expected pretty|short|json)", format)
	}

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	var res *driver.Result
	if format != "json" && shouldUseTUI(mode, cmd.OutOrStdout()) {
		res, err = runCheckWithUI(cmd.Context(), cmd.OutOrStdout(), "emerge check", s.paths, s.opts)
	} else {
		res, err = driver.Check(cmd.Context(), s.paths, s.opts)
	}
	if err != nil {
		return err
	}
	if err := printDiagnostics(cmd.OutOrStdout(), format, res, s); err != nil {
		return err
	}
	if res.HasErrors() {
		return errCheckFailed
	}
	return nil
}

func printDiagnostics(w io.Writer, format string, res *driver.Result, s *runSettings) error {
	switch format {
	case "json":
		return diagfmt.JSON(w, res.Bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         s.pathMode,
			BaseDir:          s.baseDir,
			IncludeNotes:     s.showNotes,
		})
	case "short":
		diagfmt.Short(w, res.Bag, res.FileSet, s.showNotes)
	default:
		diagfmt.Pretty(w, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     colorEnabled(),
			PathMode:  s.pathMode,
			BaseDir:   s.baseDir,
			ShowNotes: s.showNotes,
		})
	}
	if format != "json" && res.Timing != nil {
		fmt.Fprint(w, res.Timing.Summary())
	}
	return nil
}
