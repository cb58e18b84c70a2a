package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var flags overrides

	ctx := newCommandContext(&configFlag, &flags)

	rootCmd := &cobra.Command{
		Use:           "photorestore",
		Short:         "Find photos and videos missing from a reference library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	pf.StringVar(&flags.subject, "subject", "", "Folder of files to look up")
	pf.StringVar(&flags.reference, "reference", "", "Reference library folder")
	pf.StringVar(&flags.output, "output", "", "Folder for the report and staged copies")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "Report what would be copied without copying")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format (console or json)")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newHashCommand(ctx))
	rootCmd.AddCommand(newPairsCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
