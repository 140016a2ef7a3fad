package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/secretbox/cmd/secretbox/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:          "secretbox",
		Short:        "Diagnostics for the secretbox secure memory library",
		Long:         `Companion tool for github.com/systmms/secretbox. Verifies that the host can pin and protect secret pages the way the library requires.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(commands.NewDoctorCommand())

	return rootCmd.Execute()
}
