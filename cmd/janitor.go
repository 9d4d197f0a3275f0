package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/emrgen/recipe/internal/jobs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

func init() {
	rootCmd.AddCommand(janitorCmd())
}

func janitorCmd() *cobra.Command {
	var once bool
	var grace time.Duration

	command := &cobra.Command{
		Use:   "janitor",
		Short: "drop empty partitions, on a schedule until interrupted",
		Run: func(cmd *cobra.Command, args []string) {
			client, err := openClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			janitor := client.Janitor()
			if once {
				// the first sweep only marks empty partitions
				if _, err := janitor.Sweep(context.Background()); err != nil {
					logrus.Error(err)
					return
				}
				time.Sleep(grace)

				dropped, err := janitor.Sweep(context.Background())
				if err != nil {
					logrus.Error(err)
					return
				}
				logrus.Infof("dropped %d empty partition(s) %v", dropped.Cardinality(), dropped.ToSlice())
				return
			}

			executor := jobs.NewTaskExecutor(janitor)
			if err := executor.Start(); err != nil {
				logrus.Error(err)
				return
			}
			defer executor.Stop()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, unix.SIGINT, unix.SIGTERM)
			<-sig
			logrus.Info("shutting down janitor")
		},
	}

	command.Flags().BoolVar(&once, "once", false, "sweep once and exit")
	command.Flags().DurationVar(&grace, "grace", 30*time.Second, "with --once, how long a partition must stay empty")

	return command
}
