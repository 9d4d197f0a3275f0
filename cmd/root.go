package cmd

import (
	"os"

	"github.com/emrgen/recipe"
	"github.com/emrgen/recipe/internal/config"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "recipe",
	Short: "recipe store management tool",
	Example: `recipe db migrate
recipe category list
recipe create -t "Lemon Tart" -c Desserts -m 45 -u alice -i lemons -i butter
recipe get -r <recipe-id>
recipe list -c desserts
recipe update -r <recipe-id> -c Baking
recipe search --title lemon --max-time 50
recipe delete -r <recipe-id>
recipe export -o recipes.json.gz -z gzip
recipe janitor`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}

// openClient loads the configuration from the environment and opens the store.
func openClient() (recipe.Client, error) {
	cnf := config.LoadConfig()
	config.SetupLogging(cnf)

	return recipe.NewClient(cnf)
}
