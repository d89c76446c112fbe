// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/taskdeck/internal/gitlab"
)

var mrCmd = &cobra.Command{
	Use:   "mr",
	Short: "Review GitLab merge requests",
	Long: `Mr reviews merge requests on the project's GitLab repository.
Credentials and the project path come from .taskdeck/gitlab/config.json
({"token": ..., "project": ..., "instance_url": ...}).`,
}

// mrClient builds a GitLab client for the selected project.
func mrClient(cmd *cobra.Command) (*gitlab.Client, error) {
	dir, err := projectDir(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := gitlab.LoadConfig(dir)
	if err != nil {
		return nil, err
	}
	return gitlab.NewClient(cfg, appConfig().GitLab), nil
}

// mrIID parses the merge-request id argument.
func mrIID(arg string) (int, error) {
	iid, err := strconv.Atoi(strings.TrimPrefix(arg, "!"))
	if err != nil {
		return 0, fmt.Errorf("invalid merge request id %q", arg)
	}
	return iid, nil
}

// --- view subcommand ---

var mrViewCmd = &cobra.Command{
	Use:   "view <iid>",
	Short: "Show merge request details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := mrClient(cmd)
		if err != nil {
			return err
		}
		iid, err := mrIID(args[0])
		if err != nil {
			return err
		}
		mr, err := client.GetMR(context.Background(), iid)
		if err != nil {
			return err
		}

		fmt.Printf("!%d  %s\n", mr.IID, mr.Title)
		fmt.Printf("State:    %s\n", mr.State)
		fmt.Printf("Author:   %s (@%s)\n", mr.Author.Name, mr.Author.Username)
		fmt.Printf("Branch:   %s -> %s\n", mr.SourceBranch, mr.TargetBranch)
		fmt.Printf("URL:      %s\n", mr.WebURL)
		if mr.Description != "" {
			fmt.Printf("\n%s\n", mr.Description)
		}
		return nil
	},
}

// --- diff subcommand ---

var mrDiffCmd = &cobra.Command{
	Use:   "diff <iid>",
	Short: "Print the merge request's unified diff",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := mrClient(cmd)
		if err != nil {
			return err
		}
		iid, err := mrIID(args[0])
		if err != nil {
			return err
		}
		diff, err := client.Diff(context.Background(), iid)
		if err != nil {
			return err
		}
		fmt.Println(diff)
		return nil
	},
}

// --- commits subcommand ---

var mrCommitsCmd = &cobra.Command{
	Use:   "commits <iid>",
	Short: "List the merge request's commits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := mrClient(cmd)
		if err != nil {
			return err
		}
		iid, err := mrIID(args[0])
		if err != nil {
			return err
		}
		commits, err := client.Commits(context.Background(), iid)
		if err != nil {
			return err
		}
		for _, c := range commits {
			fmt.Printf("%s  %-50s  %s\n", c.ShortID, c.Title, c.AuthorName)
		}
		return nil
	},
}

// --- comment subcommand ---

var mrCommentCmd = &cobra.Command{
	Use:   "comment <iid> <body>",
	Short: "Post a comment on a merge request",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := mrClient(cmd)
		if err != nil {
			return err
		}
		iid, err := mrIID(args[0])
		if err != nil {
			return err
		}
		note, err := client.PostNote(context.Background(), iid, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("Posted note %d on !%d\n", note.ID, iid)
		return nil
	},
}

// --- approve subcommand ---

var mrApproveCmd = &cobra.Command{
	Use:   "approve <iid>",
	Short: "Approve a merge request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := mrClient(cmd)
		if err != nil {
			return err
		}
		iid, err := mrIID(args[0])
		if err != nil {
			return err
		}
		if err := client.Approve(context.Background(), iid); err != nil {
			return err
		}
		fmt.Printf("Approved !%d\n", iid)
		return nil
	},
}

// --- merge subcommand ---

var mrMergeCmd = &cobra.Command{
	Use:   "merge <iid>",
	Short: "Merge a merge request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := mrClient(cmd)
		if err != nil {
			return err
		}
		iid, err := mrIID(args[0])
		if err != nil {
			return err
		}
		squash, _ := cmd.Flags().GetBool("squash")
		mr, err := client.Merge(context.Background(), iid, squash)
		if err != nil {
			return err
		}
		fmt.Printf("Merged !%d (%s)\n", mr.IID, mr.State)
		return nil
	},
}

// --- assign subcommand ---

var mrAssignCmd = &cobra.Command{
	Use:   "assign <iid> [user-id...]",
	Short: "Assign users to a merge request",
	Long: `Assign replaces the merge request's assignees with the given numeric
user ids. With --self the authenticated user is assigned instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMRAssign,
}

func runMRAssign(cmd *cobra.Command, args []string) error {
	client, err := mrClient(cmd)
	if err != nil {
		return err
	}
	iid, err := mrIID(args[0])
	if err != nil {
		return err
	}

	var userIDs []int
	self, _ := cmd.Flags().GetBool("self")
	if self {
		user, err := client.CurrentUser(context.Background())
		if err != nil {
			return err
		}
		userIDs = []int{user.ID}
	} else {
		if len(args) < 2 {
			return fmt.Errorf("user id required (or use --self)")
		}
		for _, arg := range args[1:] {
			id, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("invalid user id %q", arg)
			}
			userIDs = append(userIDs, id)
		}
	}

	if _, err := client.Assign(context.Background(), iid, userIDs); err != nil {
		return err
	}
	fmt.Printf("Assigned %d user(s) to !%d\n", len(userIDs), iid)
	return nil
}

func init() {
	mrMergeCmd.Flags().Bool("squash", false, "squash commits on merge")
	mrAssignCmd.Flags().Bool("self", false, "assign the authenticated user")

	mrCmd.AddCommand(mrViewCmd)
	mrCmd.AddCommand(mrDiffCmd)
	mrCmd.AddCommand(mrCommitsCmd)
	mrCmd.AddCommand(mrCommentCmd)
	mrCmd.AddCommand(mrApproveCmd)
	mrCmd.AddCommand(mrMergeCmd)
	mrCmd.AddCommand(mrAssignCmd)

	rootCmd.AddCommand(mrCmd)
}
