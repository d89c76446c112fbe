// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/taskdeck/internal/guard"
)

var guardCmd = &cobra.Command{
	Use:   "guard",
	Short: "Validate shell commands against the safety allowlist",
	Long: `Guard checks shell commands against an allowlist before automation runs
them. Strict mode (guard.strict_mode or TASKDECK_STRICT=1) removes
shell-spawning commands and blocks curl/wget invocations that could
upload data to non-local hosts.`,
}

var guardCheckCmd = &cobra.Command{
	Use:   "check -- <command> [args...]",
	Short: "Check whether a command is allowed",
	Long: `Check validates a single command line. An allowed command prints "ok"
and exits zero; a blocked one reports the reason and exits non-zero.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		commandLine := strings.Join(args, " ")
		if err := guard.Check(appConfig().Guard, commandLine); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

var guardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the commands allowed in the current mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig().Guard
		strict := guard.StrictMode(cfg)

		commands := guard.BaseCommands(strict)
		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)

		mode := "normal"
		if strict {
			mode = "strict"
		}
		fmt.Printf("Mode: %s\n\n", mode)
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	guardCmd.AddCommand(guardCheckCmd)
	guardCmd.AddCommand(guardListCmd)

	rootCmd.AddCommand(guardCmd)
}
