// Package cmd implements the toolmesh command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "toolmesh",
		Short:         "toolmesh: a chat assistant that converts files, reads text from images and writes code",
		Long:          "toolmesh runs a conversational assistant in the terminal. Messages are answered by the default responder or start tool jobs (file conversion, OCR, code generation) that run concurrently and report back into the conversation.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default $HOME/.config/toolmesh/toolmesh.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newChatCmd(app),
		newFormatsCmd(),
		newConfigCmd(app),
		newHistoryCmd(app),
	)

	return rootCmd
}
