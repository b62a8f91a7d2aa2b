package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zachacious/rs-respec/respec"
)

// These variables are set at build time through ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts respec.Options
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "rs-respec [path]",
		Short: "rs-respec generates OpenAPI specs from Rust web services.",
		Long: `rs-respec statically analyzes the source of a Rust web service built with
axum or actix-web and writes an OpenAPI 3 document describing its routes,
parameters, request bodies and response types. The analyzed code is never
compiled or run. Settings can be kept in a .rs-respec.yaml file at the
project root; flags override it.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = "."
			if len(args) == 1 {
				opts.Path = args[0]
			}
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			opts.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
			return respec.Write(cmd.Context(), opts, stdout)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rs-respec",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "rs-respec version %s\n", version)
			fmt.Fprintf(stdout, "commit: %s\n", commit)
			fmt.Fprintf(stdout, "built at: %s\n", date)
		},
	}
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: yaml or json (default yaml)")
	rootCmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file (default stdout)")
	rootCmd.Flags().StringVarP(&opts.Framework, "framework", "w", "", "Force a framework: axum or actix-web (default auto-detect)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd
}
