package main

import (
	"fmt"
	"os"

	"github.com/aretw0/espalier/internal/codegen"
	"github.com/spf13/cobra"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate Go source for a machine definition",
	Long: `Compiles the definition and emits a self contained Go package with typed
state, event and timer constants plus the full transition table.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := definitionPath(cmd, args)
		output, _ := cmd.Flags().GetString("output")
		pkg, _ := cmd.Flags().GetString("package")

		m, err := newCompiler(cmd).CompileFile(path)
		if err != nil {
			fmt.Printf("Error compiling definition: %v\n", err)
			os.Exit(1)
		}

		src, err := codegen.Generate(m, codegen.Options{Package: pkg})
		if err != nil {
			fmt.Printf("Error generating source: %v\n", err)
			os.Exit(1)
		}

		if output == "" {
			fmt.Print(string(src))
			return
		}

		if err := os.WriteFile(output, src, 0644); err != nil {
			fmt.Printf("Error writing %s: %v\n", output, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", output)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("output", "o", "", "Write the generated source to a file instead of Stdout")
	generateCmd.Flags().String("package", "machine", "Package name of the generated source")
}
