package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"todo-me/internal/domain"
)

var projectDescription string

func init() {
	projectAddCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "project description")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectArchiveCmd)
	projectCmd.AddCommand(projectUnarchiveCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, _ []string) error {
		projects, err := newClient().ListProjects(cmd.Context())
		if err != nil {
			return err
		}
		return printProjects(projects)
	},
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := domain.CreateProjectRequest{
			Name:        args[0],
			Description: projectDescription,
		}
		project, err := newClient().CreateProject(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", project.ID, project.Name)
		return nil
	},
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleArchive(cmd, args[0], false)
	},
}

var projectUnarchiveCmd = &cobra.Command{
	Use:   "unarchive <id>",
	Short: "Restore an archived project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleArchive(cmd, args[0], true)
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a project",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		undoToken, err := newClient().DeleteProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println("Project deleted. Its tasks keep their other fields but are detached.")
		printUndoHint(undoToken)
		return nil
	},
}

func toggleArchive(cmd *cobra.Command, projectID string, unarchive bool) error {
	project, undoToken, err := newClient().ArchiveProject(cmd.Context(), projectID, unarchive)
	if err != nil {
		return err
	}
	state := "archived"
	if !project.Archived {
		state = "active"
	}
	fmt.Printf("%s  %s (%s)\n", project.ID, project.Name, state)
	printUndoHint(undoToken)
	return nil
}
