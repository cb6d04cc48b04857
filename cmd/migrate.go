package cmd

import (
	"github.com/spf13/cobra"

	"perpus/config"
	"perpus/log"
	"perpus/repository"
)

func newMigrateCommand(cfg func() config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := repository.InitDatabase(cfg().Database)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err = repository.Migrate(db); err != nil {
				return err
			}
			log.GetLogger(cmd.Context()).Infoln("schema up to date")
			return nil
		},
	}
}
