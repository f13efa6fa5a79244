package main

import (
	"fmt"
	"os"

	"firstbites/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var envDir string
	var cfg config.Config

	root := &cobra.Command{
		Use:           "firstbites",
		Short:         "Baby food introduction tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(envDir)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envDir, "env-dir", ".", "directory holding the .env file")

	root.AddCommand(
		serveCommand(&cfg),
		seedCommand(&cfg),
		remindCommand(&cfg),
	)
	return root
}
