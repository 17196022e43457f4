package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"todo-me/internal/domain"
)

func jsonOutput() bool {
	return outputFormat == "json"
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTasks(tasks []*domain.Task) error {
	if jsonOutput() {
		return printJSON(tasks)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE")
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
			if t.DueTime != nil {
				due += " " + *t.DueTime
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", t.ID, truncate(t.Title, 40), t.Status, t.Priority, due)
	}
	return w.Flush()
}

func printTask(t *domain.Task) error {
	if jsonOutput() {
		return printJSON(t)
	}
	fmt.Printf("%s  [%s] %s (priority %d)\n", t.ID, t.Status, t.Title, t.Priority)
	if t.Description != "" {
		fmt.Printf("  %s\n", t.Description)
	}
	if t.DueDate != nil {
		due := t.DueDate.Format("2006-01-02")
		if t.DueTime != nil {
			due += " " + *t.DueTime
		}
		fmt.Printf("  due: %s\n", due)
	}
	if t.ProjectID != nil {
		fmt.Printf("  project: %s\n", *t.ProjectID)
	}
	if len(t.TagIDs) > 0 {
		fmt.Printf("  tags: %s\n", strings.Join(t.TagIDs, ", "))
	}
	return nil
}

func printProjects(projects []*domain.Project) error {
	if jsonOutput() {
		return printJSON(projects)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tARCHIVED")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%t\n", p.ID, truncate(p.Name, 40), p.Archived)
	}
	return w.Flush()
}

// printUndoHint surfaces the token a mutating call returned, when the
// server minted one.
func printUndoHint(token string) {
	if token == "" {
		return
	}
	fmt.Printf("undo token: %s (run 'todo undo %s' to revert)\n", token, token)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
