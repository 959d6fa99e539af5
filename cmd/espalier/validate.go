package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a machine definition for consistency",
	Long: `Parses the definition and enforces every structural rule: name references,
the start state, exactly one behavior per state, traversal shapes and timer
options. The first violation is reported with its line and column.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Machine is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := definitionPath(cmd, args)

	m, err := newCompiler(cmd).CompileFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("Compiled %d states, %d events, %d timers. Start state: %s\n",
		len(m.States), len(m.Events), len(m.Timers), m.StartState)
	return nil
}
