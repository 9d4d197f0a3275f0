package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(Migrate())
}

func Migrate() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Create the default partition",
		Run: func(cmd *cobra.Command, args []string) {
			client, err := openClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			if err := client.Migrate(context.Background()); err != nil {
				logrus.Error(err)
				return
			}

			logrus.Info("database migrated")
		},
	}

	return command
}
