package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	cmdCtx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "avconvert",
		Short:         "Convert audio and video files with native, shell, and cloud engines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := cmdCtx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newConvertCommand(cmdCtx))
	rootCmd.AddCommand(newFormatsCommand())
	rootCmd.AddCommand(newHistoryCommand(cmdCtx))
	rootCmd.AddCommand(newStatusCommand(cmdCtx))
	rootCmd.AddCommand(newServeCommand(cmdCtx))
	rootCmd.AddCommand(newDoctorCommand(cmdCtx))
	rootCmd.AddCommand(newConfigCommand(cmdCtx))
	rootCmd.AddCommand(newTestNotifyCommand(cmdCtx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
