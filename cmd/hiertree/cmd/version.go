package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hiertree version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("hiertree version %s (commit %s)\n", Version, Commit)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
