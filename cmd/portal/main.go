package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:           "portal",
		Short:         "Agency portal: log in once and open the applications your role grants.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	commands := []func() *cobra.Command{
		newServeCommand,
		newCatalogCommand,
	}
	for _, newCmd := range commands {
		cmd.AddCommand(newCmd())
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "portal:", err)
		os.Exit(1)
	}
}
