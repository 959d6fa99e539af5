package main

import (
	"fmt"
	"os"

	"github.com/aretw0/espalier/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Render a human readable summary of the machine",
	Long: `Compiles the definition and prints a Markdown summary of every state, edge
and timer. When Stdout is a terminal the summary is rendered with styling;
when piped, the raw Markdown is emitted.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := definitionPath(cmd, args)

		m, err := newCompiler(cmd).CompileFile(path)
		if err != nil {
			fmt.Printf("Error compiling definition: %v\n", err)
			os.Exit(1)
		}

		markdown := tui.Describe(m)

		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Print(markdown)
			return
		}

		tui.PrintBanner()
		render := tui.NewRenderer()
		out, err := render(markdown)
		if err != nil {
			// Styling is best effort; the summary still has to reach the user.
			fmt.Print(markdown)
			return
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
