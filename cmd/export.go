package cmd

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/emrgen/recipe/internal/compress"
	"github.com/emrgen/recipe/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
}

func exportCmd() *cobra.Command {
	var output string
	var codec string

	var required = []string{"output"}

	command := &cobra.Command{
		Use:     "export",
		Short:   "write every recipe to a compressed json file",
		Example: "recipe export -o recipes.json.lz4 -z lz4",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			c, err := compress.ByName(codec)
			if err != nil {
				logrus.Error(err)
				return
			}

			client, err := openClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			recipes, err := client.Recipes().GetAllRecipes(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}

			data, err := json.Marshal(recipes)
			if err != nil {
				logrus.Error(err)
				return
			}
			data, err = c.Encode(data)
			if err != nil {
				logrus.Error(err)
				return
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("exported %d recipes to %s", len(recipes), output)
		},
	}

	command.Flags().StringVarP(&output, "output", "o", "", "file to write (required)")
	command.Flags().StringVarP(&codec, "compress", "z", "gzip", "compression: "+strings.Join(compress.Names, ", "))
	command.Flags().SortFlags = false

	return command
}

func importCmd() *cobra.Command {
	var input string
	var codec string

	var required = []string{"input"}

	command := &cobra.Command{
		Use:     "import",
		Short:   "create the recipes of an exported file, under new ids",
		Example: "recipe import -i recipes.json.lz4 -z lz4",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			c, err := compress.ByName(codec)
			if err != nil {
				logrus.Error(err)
				return
			}

			data, err := os.ReadFile(input)
			if err != nil {
				logrus.Error(err)
				return
			}
			data, err = c.Decode(data)
			if err != nil {
				logrus.Error(err)
				return
			}

			var recipes []*model.Recipe
			if err := json.Unmarshal(data, &recipes); err != nil {
				logrus.Error(err)
				return
			}

			client, err := openClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			ctx := context.Background()
			imported := 0
			for _, r := range recipes {
				if err := r.Validate(); err != nil {
					logrus.Warnf("skipping recipe %s: %v", r.ID, err)
					continue
				}
				created, err := client.Recipes().CreateRecipe(ctx, r, r.CreatedBy)
				if err != nil {
					logrus.Error(err)
					return
				}
				logrus.Debugf("imported recipe %s as %s", r.ID, created.ID)
				imported++
			}

			logrus.Infof("imported %d of %d recipes from %s", imported, len(recipes), input)
		},
	}

	command.Flags().StringVarP(&input, "input", "i", "", "file to read (required)")
	command.Flags().StringVarP(&codec, "compress", "z", "gzip", "compression: "+strings.Join(compress.Names, ", "))
	command.Flags().SortFlags = false

	return command
}
