package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/remindme"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of remindme",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "remindme version %s\n", remindme.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
