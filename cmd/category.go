package cmd

import (
	"context"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "category commands",
}

func init() {
	categoryCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	categoryCmd.AddCommand(listCategoryCmd())
}

func listCategoryCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "list",
		Short: "list categories that currently hold a partition",
		Run: func(cmd *cobra.Command, args []string) {
			client, err := openClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			categories, err := client.Recipes().ListCategories(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Category"})
			for _, category := range categories {
				table.Append([]string{category})
			}
			table.Render()
		},
	}

	return command
}
