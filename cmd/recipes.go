package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/emrgen/recipe/internal/model"
	"github.com/emrgen/recipe/internal/service"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(createRecipeCmd())
	rootCmd.AddCommand(getRecipeCmd())
	rootCmd.AddCommand(listRecipeCmd())
	rootCmd.AddCommand(updateRecipeCmd())
	rootCmd.AddCommand(deleteRecipeCmd())
	rootCmd.AddCommand(searchRecipeCmd())
}

func createRecipeCmd() *cobra.Command {
	var title string
	var ingredients []string
	var instructions string
	var minutes int
	var category string
	var user string

	var required = []string{"title", "user"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a recipe",
		Example: `recipe create -t "Lemon Tart" -c Desserts -m 45 -u alice -i lemons -i butter`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			r := &model.Recipe{
				Title:        title,
				Ingredients:  ingredients,
				Instructions: instructions,
				CookingTime:  minutes,
				Category:     category,
			}
			if err := r.Validate(); err != nil {
				color.Red("%v", err)
				return
			}

			client, err := openClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			created, err := client.Recipes().CreateRecipe(context.Background(), r, user)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("recipe created with id: %s", created.ID)
		},
	}

	command.Flags().StringVarP(&title, "title", "t", "", "title of the recipe (required)")
	command.Flags().StringSliceVarP(&ingredients, "ingredient", "i", nil, "ingredient, repeat for more")
	command.Flags().StringVarP(&instructions, "instructions", "s", "", "preparation steps")
	command.Flags().IntVarP(&minutes, "minutes", "m", 0, "cooking time in minutes")
	command.Flags().StringVarP(&category, "category", "c", "", "category, empty means uncategorized")
	command.Flags().StringVarP(&user, "user", "u", "", "creator of the recipe (required)")
	command.Flags().SortFlags = false

	return command
}

func getRecipeCmd() *cobra.Command {
	var recipeID string
	var category string

	var required = []string{"recipe-id"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a recipe",
		Example: "recipe get -r <recipe-id> -c <category>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, err := openClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			r, err := findRecipe(context.Background(), client.Recipes(), category, recipeID)
			if err != nil {
				reportError(err)
				return
			}
			if r == nil {
				color.Red("recipe %s not found in category %q", recipeID, category)
				return
			}

			printRecipes([]*model.Recipe{r})
			printField("Ingredients", strings.Join(r.Ingredients, ", "))
			printField("Instructions", r.Instructions)
			printField("Created", r.CreatedAt.Format("2006-01-02 15:04:05"))
			printField("Updated", r.UpdatedAt.Format("2006-01-02 15:04:05"))
		},
	}

	command.Flags().StringVarP(&recipeID, "recipe-id", "r", "", "recipe id (required)")
	command.Flags().StringVarP(&category, "category", "c", "", "look only in this category")
	command.Flags().SortFlags = false

	return command
}

func listRecipeCmd() *cobra.Command {
	var category string

	command := &cobra.Command{
		Use:   "list",
		Short: "list recipes",
		Run: func(cmd *cobra.Command, args []string) {
			client, err := openClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			ctx := context.Background()
			var recipes []*model.Recipe
			if cmd.Flag("category").Changed {
				recipes, err = client.Recipes().SearchByCategory(ctx, category)
			} else {
				recipes, err = client.Recipes().GetAllRecipes(ctx)
			}
			if err != nil {
				logrus.Error(err)
				return
			}

			printRecipes(recipes)
		},
	}

	command.Flags().StringVarP(&category, "category", "c", "", "list one category only")

	return command
}

func updateRecipeCmd() *cobra.Command {
	var recipeID string
	var title string
	var ingredients []string
	var instructions string
	var minutes int
	var category string

	var required = []string{"recipe-id"}

	command := &cobra.Command{
		Use:     "update",
		Short:   "update a recipe, changing the category moves it",
		Example: "recipe update -r <recipe-id> -t <title> -c <category>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, err := openClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			ctx := context.Background()
			details, err := client.Recipes().GetRecipeByID(ctx, recipeID)
			if err != nil {
				reportError(err)
				return
			}

			flags := cmd.Flags()
			if flags.Changed("title") {
				details.Title = title
			}
			if flags.Changed("ingredient") {
				details.Ingredients = ingredients
			}
			if flags.Changed("instructions") {
				details.Instructions = instructions
			}
			if flags.Changed("minutes") {
				details.CookingTime = minutes
			}
			if flags.Changed("category") {
				details.Category = category
			}
			if err := details.Validate(); err != nil {
				color.Red("%v", err)
				return
			}

			updated, err := client.Recipes().UpdateRecipe(ctx, recipeID, details)
			if err != nil {
				reportError(err)
				return
			}

			printRecipes([]*model.Recipe{updated})
		},
	}

	command.Flags().StringVarP(&recipeID, "recipe-id", "r", "", "recipe id (required)")
	command.Flags().StringVarP(&title, "title", "t", "", "new title")
	command.Flags().StringSliceVarP(&ingredients, "ingredient", "i", nil, "new ingredients, repeat for more")
	command.Flags().StringVarP(&instructions, "instructions", "s", "", "new preparation steps")
	command.Flags().IntVarP(&minutes, "minutes", "m", 0, "new cooking time in minutes")
	command.Flags().StringVarP(&category, "category", "c", "", "new category")
	command.Flags().SortFlags = false

	return command
}

func deleteRecipeCmd() *cobra.Command {
	var recipeID string
	var category string

	var required = []string{"recipe-id"}

	command := &cobra.Command{
		Use:     "delete",
		Short:   "delete a recipe",
		Example: "recipe delete -r <recipe-id> -c <category>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, err := openClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			ctx := context.Background()
			if cmd.Flag("category").Changed {
				r, err := client.Recipes().GetRecipeByCategoryAndID(ctx, category, recipeID)
				if err != nil {
					reportError(err)
					return
				}
				if r == nil {
					color.Red("recipe %s not found in category %q", recipeID, category)
					return
				}
			}

			if err := client.Recipes().DeleteRecipe(ctx, recipeID); err != nil {
				reportError(err)
				return
			}

			logrus.Infof("recipe %s deleted", recipeID)
		},
	}

	command.Flags().StringVarP(&recipeID, "recipe-id", "r", "", "recipe id (required)")
	command.Flags().StringVarP(&category, "category", "c", "", "only delete when the recipe is in this category")
	command.Flags().SortFlags = false

	return command
}

func searchRecipeCmd() *cobra.Command {
	var criteria service.Criteria
	var maxTime int
	var user string

	command := &cobra.Command{
		Use:     "search",
		Short:   "search recipes",
		Example: "recipe search --title lemon --ingredient butter --max-time 50 -c desserts",
		Run: func(cmd *cobra.Command, args []string) {
			client, err := openClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			ctx := context.Background()
			var recipes []*model.Recipe
			if cmd.Flag("user").Changed {
				recipes, err = client.Recipes().GetRecipesByUser(ctx, user)
			} else {
				if cmd.Flag("max-time").Changed {
					criteria.MaxCookingTime = &maxTime
				}
				recipes, err = client.Recipes().AdvancedSearch(ctx, criteria)
			}
			if err != nil {
				logrus.Error(err)
				return
			}

			printRecipes(recipes)
		},
	}

	command.Flags().StringVar(&criteria.Title, "title", "", "title contains")
	command.Flags().StringVar(&criteria.Ingredient, "ingredient", "", "some ingredient contains")
	command.Flags().IntVar(&maxTime, "max-time", 0, "cooking time at most, in minutes")
	command.Flags().StringVarP(&criteria.Category, "category", "c", "", "search one category only")
	command.Flags().StringVarP(&user, "user", "u", "", "recipes created by user, other filters are ignored")
	command.Flags().SortFlags = false

	return command
}

// findRecipe looks in one category when it is given, otherwise everywhere.
// Only the single category lookup returns nil for a missing recipe.
func findRecipe(ctx context.Context, recipes *service.RecipeService, category, id string) (*model.Recipe, error) {
	if category != "" {
		return recipes.GetRecipeByCategoryAndID(ctx, category, id)
	}
	return recipes.GetRecipeByID(ctx, id)
}

func printRecipes(recipes []*model.Recipe) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Title", "Category", "Minutes", "Created By"})
	for _, r := range recipes {
		table.Append([]string{r.ID, r.Title, r.Category, strconv.Itoa(r.CookingTime), r.CreatedBy})
	}
	table.Render()
}

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

func reportError(err error) {
	if errors.Is(err, service.ErrRecipeNotFound) {
		color.Red("%v", err)
		return
	}
	logrus.Error(err)
}

// checkMissingFlags reports the required flags that were not set and returns
// true when there is at least one.
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if !cmd.Flag(required).Changed {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) == 0 {
		return false
	}

	var msg string
	for _, f := range missingFlags {
		msg += fmt.Sprintf("--%s ", f)
	}
	color.Red("missing: %s\n", msg)
	if len(providedFlags) > 0 {
		color.Green("provide: %s\n", strings.Join(providedFlags, " "))
	}
	cmd.Println("")
	_ = cmd.Usage()

	return true
}
