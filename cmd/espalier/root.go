package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier is a state machine definition compiler",
	Long: `Espalier validates state machine definitions written in YAML or JSON and
turns them into strongly typed models, diagrams and generated Go source.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("file", "f", "machine.yaml", "Path to the machine definition")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// newCompiler configures the compiler for a command invocation.
// In debug mode it logs to Stderr (to keep Stdout machine-readable).
func newCompiler(cmd *cobra.Command) *espalier.Compiler {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return espalier.New(espalier.WithLogger(logging.New(slog.LevelDebug)))
	}
	return espalier.New()
}

// definitionPath resolves the definition file, letting a positional
// argument stand in for the --file flag.
func definitionPath(cmd *cobra.Command, args []string) string {
	path, _ := cmd.Flags().GetString("file")
	if !cmd.Flags().Changed("file") && len(args) > 0 {
		path = args[0]
	}
	return path
}
