package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"task-tracker/internal/model"
)

func newCategoryCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage task categories",
	}

	var category model.Category
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.app.Categories.AddCategory(cmd.Context(), &category); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %s (%s)\n", category.Name, category.ID)
			return nil
		},
	}
	add.Flags().StringVar(&category.Name, "name", "", "category name, 2 to 100 characters")
	add.Flags().StringVar(&category.Description, "description", "", "category description")
	_ = add.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := opts.app.Categories.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
			for _, c := range categories {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.Description)
			}
			return tw.Flush()
		},
	}

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category; its tasks lose the category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.app.Categories.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}
