package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"todo-me/internal/domain"
)

var (
	taskTitle       string
	taskDescription string
	taskPriority    int
	taskDue         string
	taskDueTime     string
	taskProject     string
	taskClearDue    bool
)

func init() {
	taskAddCmd.Flags().StringVarP(&taskDescription, "description", "d", "", "task description")
	taskAddCmd.Flags().IntVarP(&taskPriority, "priority", "p", 0, "priority (0-3)")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "due date (YYYY-MM-DD)")
	taskAddCmd.Flags().StringVar(&taskDueTime, "at", "", "due time (HH:MM)")
	taskAddCmd.Flags().StringVar(&taskProject, "project", "", "project ID")

	taskEditCmd.Flags().StringVarP(&taskTitle, "title", "t", "", "new title")
	taskEditCmd.Flags().StringVarP(&taskDescription, "description", "d", "", "new description")
	taskEditCmd.Flags().IntVarP(&taskPriority, "priority", "p", -1, "new priority (0-3)")
	taskEditCmd.Flags().StringVar(&taskProject, "project", "", "project ID ('' detaches)")

	taskRescheduleCmd.Flags().StringVar(&taskDue, "due", "", "due date (YYYY-MM-DD)")
	taskRescheduleCmd.Flags().StringVar(&taskDueTime, "at", "", "due time (HH:MM)")
	taskRescheduleCmd.Flags().BoolVar(&taskClearDue, "clear", false, "remove the due date")

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskCompleteCmd)
	taskCmd.AddCommand(taskReopenCmd)
	taskCmd.AddCommand(taskRescheduleCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(undoCmd)
}

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks"},
	Short:   "Manage tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tasks, err := newClient().ListTasks(cmd.Context())
		if err != nil {
			return err
		}
		return printTasks(tasks)
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := domain.CreateTaskRequest{
			Title:       args[0],
			Description: taskDescription,
			Priority:    taskPriority,
		}
		if taskDue != "" {
			due, err := parseDate(taskDue)
			if err != nil {
				return err
			}
			req.DueDate = &due
		}
		if taskDueTime != "" {
			req.DueTime = &taskDueTime
		}
		if taskProject != "" {
			req.ProjectID = &taskProject
		}
		task, err := newClient().CreateTask(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printTask(task)
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req domain.UpdateTaskRequest
		if cmd.Flags().Changed("title") {
			req.Title = &taskTitle
		}
		if cmd.Flags().Changed("description") {
			req.Description = &taskDescription
		}
		if cmd.Flags().Changed("priority") {
			req.Priority = &taskPriority
		}
		if cmd.Flags().Changed("project") {
			req.ProjectID = &taskProject
		}
		task, undoToken, err := newClient().UpdateTask(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}
		if err := printTask(task); err != nil {
			return err
		}
		printUndoHint(undoToken)
		return nil
	},
}

var taskCompleteCmd = &cobra.Command{
	Use:     "complete <id>",
	Aliases: []string{"done"},
	Short:   "Mark a task completed",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(cmd, args[0], domain.StatusCompleted)
	},
}

var taskReopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Mark a task pending again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(cmd, args[0], domain.StatusPending)
	},
}

var taskRescheduleCmd = &cobra.Command{
	Use:   "reschedule <id>",
	Short: "Change a task's due date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req domain.RescheduleRequest
		if !taskClearDue {
			if taskDue == "" {
				return fmt.Errorf("either --due or --clear is required")
			}
			due, err := parseDate(taskDue)
			if err != nil {
				return err
			}
			req.DueDate = &due
			if taskDueTime != "" {
				req.DueTime = &taskDueTime
			}
		}
		task, undoToken, err := newClient().RescheduleTask(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}
		if err := printTask(task); err != nil {
			return err
		}
		printUndoHint(undoToken)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		undoToken, err := newClient().DeleteTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println("Task deleted.")
		printUndoHint(undoToken)
		return nil
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo <token>",
	Short: "Revert a recent change using its undo token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := newClient().Undo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput() {
			fmt.Println(string(data))
			return nil
		}
		fmt.Println("Change undone.")
		return nil
	},
}

func setStatus(cmd *cobra.Command, taskID string, status domain.TaskStatus) error {
	task, undoToken, err := newClient().SetTaskStatus(cmd.Context(), taskID, status)
	if err != nil {
		return err
	}
	if err := printTask(task); err != nil {
		return err
	}
	printUndoHint(undoToken)
	return nil
}

func parseDate(s string) (time.Time, error) {
	due, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return due, nil
}
