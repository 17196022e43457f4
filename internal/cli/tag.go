package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"todo-me/internal/domain"
)

var tagColor string

func init() {
	tagAddCmd.Flags().StringVar(&tagColor, "color", "", "hex color, e.g. #ff8800")

	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagDeleteCmd)
	rootCmd.AddCommand(tagCmd)
}

var tagCmd = &cobra.Command{
	Use:     "tag",
	Aliases: []string{"tags"},
	Short:   "Manage tags",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tags, err := newClient().ListTags(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(tags)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOLOR")
		for _, t := range tags {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Name, t.Color)
		}
		return w.Flush()
	},
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := newClient().CreateTag(cmd.Context(), domain.CreateTagRequest{
			Name:  args[0],
			Color: tagColor,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", tag.ID, tag.Name)
		return nil
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a tag",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteTag(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Tag deleted.")
		return nil
	},
}
