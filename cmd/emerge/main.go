package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emerge/internal/version"
)

// errCheckFailed signals that diagnostics with errors were already printed.
var errCheckFailed = errors.New("check failed")

// newRootCmd builds the command tree. The returned function stops tracing and
// profiling; it must run after Execute, whatever Execute returned.
func newRootCmd() (*cobra.Command, func()) {
	root := &cobra.Command{
		Use:           "emerge",
		Short:         "Semantic binder for class and interface declarations",
		Long:          `emerge binds declared classes and interfaces: it resolves inheritance, overrides, overload sets and mixins, checks initialization and emits IR`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics to collect (0 = project or default)")
	root.PersistentFlags().Int("jobs", 0, "max parallel workers for loading files (0=auto)")
	root.PersistentFlags().Bool("cache", false, "reuse results of unchanged inputs from the disk cache")
	root.PersistentFlags().String("cache-dir", "", "disk cache directory (default: $XDG_CACHE_HOME/emerge)")
	root.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|phase|detail|debug)")
	root.PersistentFlags().String("trace-mode", "stream", "trace sink (stream|tail)")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a Go execution trace to file")

	var stops []func()
	finish := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
		stops = nil
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		stops = append(stops, stopProfiling)
		stopTracing, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		stops = append(stops, stopTracing)
		return nil
	}

	root.AddCommand(newCheckCmd(), newIRCmd(), newVersionCmd())
	return root, finish
}

func main() {
	root, finish := newRootCmd()
	err := root.Execute()
	finish()
	if err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintf(os.Stderr, "emerge: %v\n", err)
		}
		os.Exit(1)
	}
}
