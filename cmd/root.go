package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"perpus/config"
	"perpus/log"
)

func NewRootCommand() *cobra.Command {
	var cfgFile string
	var cfg config.Config

	root := &cobra.Command{
		Use:           "perpus",
		Short:         "School library catalog, circulation and reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
			return log.Configure(cfg.Log.Level, cfg.Log.Format)
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to a config file (default ./config.yaml)")

	current := func() config.Config { return cfg }
	root.AddCommand(
		newServeCommand(current),
		newMigrateCommand(current),
		newReportCommand(current),
	)
	return root
}

func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}
