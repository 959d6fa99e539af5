package main

import (
	"fmt"
	"os"

	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Export the machine graph visualization",
	Long: `Compiles the definition and outputs a Mermaid state diagram representing
states, edges and timers.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := definitionPath(cmd, args)

		m, err := newCompiler(cmd).CompileFile(path)
		if err != nil {
			fmt.Printf("Error compiling definition: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.Mermaid(m))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
