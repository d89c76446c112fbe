// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/taskdeck/internal/board"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage the registry of known projects",
	Long: `Project manages the registry of known projects so other commands can
select a project by name instead of a directory path. The registry lives
in ~/.config/taskdeck/projects.json.`,
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Register a project directory under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := board.NewRegistry(appConfig().Registry)
		if err != nil {
			return err
		}
		project, err := registry.Add(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Registered %s (%s) at %s\n", project.Name, project.ID, project.Path)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := board.NewRegistry(appConfig().Registry)
		if err != nil {
			return err
		}
		projects, err := registry.Load()
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("No projects registered.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-36s  %s\n", "Name", "ID", "Path")
		for _, p := range projects {
			fmt.Fprintf(os.Stdout, "%-20s  %-36s  %s\n", p.Name, p.ID, p.Path)
		}
		return nil
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove <name-or-id>",
	Short: "Remove a project from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := board.NewRegistry(appConfig().Registry)
		if err != nil {
			return err
		}
		if err := registry.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

func init() {
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectRemoveCmd)

	rootCmd.AddCommand(projectCmd)
}
