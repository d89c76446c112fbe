// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/taskdeck/internal/board"
	"github.com/pdiddy/taskdeck/internal/markdown"
	"github.com/pdiddy/taskdeck/pkg/types"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks on the project board",
	Long: `Task manages the project's task board. Tasks move through the columns
backlog, queued, in_progress, in_review, and done; a task that fails
processing lands in error. Tasks carry labels, dependencies on other
tasks, and checkable subtasks.`,
}

// taskStore opens the board store for the selected project.
func taskStore(cmd *cobra.Command) (*board.Store, error) {
	dir, err := projectDir(cmd)
	if err != nil {
		return nil, err
	}
	return board.NewStore(dir), nil
}

// --- create subcommand ---

var taskCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a task in the backlog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskCreate,
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	store, err := taskStore(cmd)
	if err != nil {
		return err
	}

	description, _ := cmd.Flags().GetString("description")
	priority, _ := cmd.Flags().GetString("priority")
	labels, _ := cmd.Flags().GetStringSlice("label")
	deps, _ := cmd.Flags().GetStringSlice("depends-on")

	task, err := store.Create(board.CreateTaskInput{
		Title:        strings.Join(args, " "),
		Description:  description,
		Priority:     types.TaskPriority(priority),
		Labels:       labels,
		Dependencies: deps,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created task %s: %s\n", task.ID, task.Title)
	return nil
}

// --- list subcommand ---

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally filtered by status or label",
	RunE:  runTaskList,
}

func runTaskList(cmd *cobra.Command, args []string) error {
	store, err := taskStore(cmd)
	if err != nil {
		return err
	}

	status, _ := cmd.Flags().GetString("status")
	label, _ := cmd.Flags().GetString("label")

	tasks, err := store.List(board.ListFilter{
		Status: types.TaskStatus(status),
		Label:  label,
	})
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-12s  %-8s  %-40s  %s\n",
		"ID", "Status", "Priority", "Title", "Labels")
	for _, t := range tasks {
		fmt.Fprintf(os.Stdout, "%-36s  %-12s  %-8s  %-40s  %s\n",
			t.ID, t.Status, t.Priority, truncate(t.Title, 40), strings.Join(t.Labels, ","))
	}
	fmt.Fprintf(os.Stdout, "\n%d tasks\n", len(tasks))
	return nil
}

// --- show subcommand ---

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show full task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	store, err := taskStore(cmd)
	if err != nil {
		return err
	}
	task, err := store.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:        %s\n", task.ID)
	fmt.Printf("Title:     %s\n", task.Title)
	fmt.Printf("Status:    %s\n", task.Status)
	fmt.Printf("Priority:  %s\n", task.Priority)
	if len(task.Labels) > 0 {
		fmt.Printf("Labels:    %s\n", strings.Join(task.Labels, ", "))
	}
	if len(task.Dependencies) > 0 {
		fmt.Printf("Depends:   %s\n", strings.Join(task.Dependencies, ", "))
	}
	fmt.Printf("Created:   %s\n", task.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:   %s\n", task.UpdatedAt.Format("2006-01-02 15:04:05"))
	if task.Description != "" {
		fmt.Printf("\n%s\n", task.Description)
	}
	if len(task.Subtasks) > 0 {
		fmt.Println("\nSubtasks:")
		for _, st := range task.Subtasks {
			mark := " "
			if st.Done {
				mark = "x"
			}
			fmt.Printf("  [%s] %s  %s\n", mark, st.ID, st.Title)
		}
	}
	return nil
}

// --- update subcommand ---

var taskUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update task fields",
	Long: `Update changes only the fields whose flags are given. Labels and
dependencies are replaced wholesale, not merged.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskUpdate,
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	store, err := taskStore(cmd)
	if err != nil {
		return err
	}

	var in board.UpdateTaskInput
	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		in.Title = &v
	}
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		in.Description = &v
	}
	if cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		status := types.TaskStatus(v)
		in.Status = &status
	}
	if cmd.Flags().Changed("priority") {
		v, _ := cmd.Flags().GetString("priority")
		priority := types.TaskPriority(v)
		in.Priority = &priority
	}
	if cmd.Flags().Changed("label") {
		v, _ := cmd.Flags().GetStringSlice("label")
		in.Labels = &v
	}
	if cmd.Flags().Changed("depends-on") {
		v, _ := cmd.Flags().GetStringSlice("depends-on")
		in.Dependencies = &v
	}

	task, err := store.Update(args[0], in)
	if err != nil {
		return err
	}
	fmt.Printf("Updated task %s\n", task.ID)
	return nil
}

// --- move subcommand ---

var taskMoveCmd = &cobra.Command{
	Use:   "move <id> <status>",
	Short: "Move a task to another board column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := taskStore(cmd)
		if err != nil {
			return err
		}
		task, err := store.Move(args[0], types.TaskStatus(args[1]))
		if err != nil {
			return err
		}
		fmt.Printf("Moved task %s to %s\n", task.ID, task.Status)
		return nil
	},
}

// --- delete subcommand ---

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task and drop references to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := taskStore(cmd)
		if err != nil {
			return err
		}
		if err := store.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted task %s\n", args[0])
		return nil
	},
}

// --- subtask subcommands ---

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage subtasks of a task",
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add <task-id> <title>",
	Short: "Add a subtask",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := taskStore(cmd)
		if err != nil {
			return err
		}
		task, err := store.AddSubtask(args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		st := task.Subtasks[len(task.Subtasks)-1]
		fmt.Printf("Added subtask %s to task %s\n", st.ID, task.ID)
		return nil
	},
}

var subtaskToggleCmd = &cobra.Command{
	Use:   "toggle <task-id> <subtask-id>",
	Short: "Toggle a subtask's done state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := taskStore(cmd)
		if err != nil {
			return err
		}
		task, err := store.ToggleSubtask(args[0], args[1])
		if err != nil {
			return err
		}
		for _, st := range task.Subtasks {
			if st.ID == args[1] {
				state := "open"
				if st.Done {
					state = "done"
				}
				fmt.Printf("Subtask %s is now %s\n", st.ID, state)
			}
		}
		return nil
	},
}

// --- import subcommand ---

var taskImportCmd = &cobra.Command{
	Use:   "import <file.md>",
	Short: "Import tasks from a markdown document",
	Long: `Import parses a markdown document into tasks: each H2 heading starts a
task, checkbox list items become subtasks, and "Depends on:" lines name
dependencies by task title. Imported tasks land in the backlog.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskImport,
}

func runTaskImport(cmd *cobra.Command, args []string) error {
	store, err := taskStore(cmd)
	if err != nil {
		return err
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	existing, err := store.Load()
	if err != nil {
		return err
	}

	fallback := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	parsed := markdown.Parse(source, fallback)
	tasks := markdown.ToTasks(parsed, existing, os.Stderr)

	imported, err := store.Import(tasks)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d task(s) from %s\n", len(imported), args[0])
	return nil
}

func init() {
	taskCreateCmd.Flags().String("description", "", "task description")
	taskCreateCmd.Flags().String("priority", "", "priority: low, medium, or high (default medium)")
	taskCreateCmd.Flags().StringSlice("label", nil, "label (repeatable)")
	taskCreateCmd.Flags().StringSlice("depends-on", nil, "dependency task ID (repeatable)")

	taskListCmd.Flags().String("status", "", "filter by status")
	taskListCmd.Flags().String("label", "", "filter by label")

	taskUpdateCmd.Flags().String("title", "", "new title")
	taskUpdateCmd.Flags().String("description", "", "new description")
	taskUpdateCmd.Flags().String("status", "", "new status")
	taskUpdateCmd.Flags().String("priority", "", "new priority")
	taskUpdateCmd.Flags().StringSlice("label", nil, "replacement label set (repeatable)")
	taskUpdateCmd.Flags().StringSlice("depends-on", nil, "replacement dependency set (repeatable)")

	subtaskCmd.AddCommand(subtaskAddCmd)
	subtaskCmd.AddCommand(subtaskToggleCmd)

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskMoveCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(subtaskCmd)
	taskCmd.AddCommand(taskImportCmd)

	rootCmd.AddCommand(taskCmd)
}
