// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/taskdeck/internal/template"
	"github.com/pdiddy/taskdeck/pkg/types"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage reusable task templates",
	Long: `Template manages markdown task templates with {{key=value}}
placeholders. Templates live in the global template directory and in a
project's .taskdeck/templates/; project templates shadow global ones
with the same name.`,
}

// templateStore opens the template store for the selected project.
func templateStore(cmd *cobra.Command) (*template.Store, error) {
	dir, err := projectDir(cmd)
	if err != nil {
		return nil, err
	}
	return template.NewStore(appConfig().Templates, dir)
}

// --- list subcommand ---

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := templateStore(cmd)
		if err != nil {
			return err
		}
		templates, err := store.List()
		if err != nil {
			return err
		}
		if len(templates) == 0 {
			fmt.Println("No templates found.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "%-24s  %-36s  %s\n", "Name", "ID", "Description")
		for _, tpl := range templates {
			fmt.Fprintf(os.Stdout, "%-24s  %-36s  %s\n", tpl.Name, tpl.ID, tpl.Description)
		}
		return nil
	},
}

// --- show subcommand ---

var templateShowCmd = &cobra.Command{
	Use:   "show <name-or-id>",
	Short: "Print a template's body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := templateStore(cmd)
		if err != nil {
			return err
		}
		tpl, err := store.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(tpl.Body)
		return nil
	},
}

// --- create subcommand ---

var templateCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a template from a file or stdin",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateCreate,
}

func runTemplateCreate(cmd *cobra.Command, args []string) error {
	store, err := templateStore(cmd)
	if err != nil {
		return err
	}

	fromFile, _ := cmd.Flags().GetString("from")
	var body []byte
	if fromFile != "" {
		body, err = os.ReadFile(fromFile)
	} else {
		body, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("reading template body: %w", err)
	}

	description, _ := cmd.Flags().GetString("description")
	labels, _ := cmd.Flags().GetStringSlice("label")

	tpl, err := store.Create(args[0], description, labels, string(body))
	if err != nil {
		return err
	}
	fmt.Printf("Created template %s (%s)\n", tpl.Name, tpl.ID)
	return nil
}

// --- delete subcommand ---

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <name-or-id>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := templateStore(cmd)
		if err != nil {
			return err
		}
		if err := store.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted template %s\n", args[0])
		return nil
	},
}

// --- params subcommand ---

var templateParamsCmd = &cobra.Command{
	Use:   "params <name-or-id>",
	Short: "List a template's placeholders and defaults",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := templateStore(cmd)
		if err != nil {
			return err
		}
		tpl, err := store.Get(args[0])
		if err != nil {
			return err
		}
		printPlaceholders(template.Extract(tpl.Body))
		return nil
	},
}

// --- scan subcommand ---

var templateScanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Scan a directory tree for placeholders",
	Long: `Scan walks a directory tree and reports every {{key=value}}
placeholder found in text files. Binary and unreadable files are
skipped with a warning. Without an argument the selected project
directory is scanned.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTemplateScan,
}

func runTemplateScan(cmd *cobra.Command, args []string) error {
	root := ""
	if len(args) > 0 {
		root = args[0]
	} else {
		dir, err := projectDir(cmd)
		if err != nil {
			return err
		}
		root = dir
	}

	results, err := template.Scan(root, os.Stderr)
	if err != nil {
		return err
	}

	perFile, _ := cmd.Flags().GetBool("per-file")
	if perFile {
		for _, r := range results {
			fmt.Printf("%s:\n", r.Path)
			for _, p := range r.Placeholders {
				fmt.Printf("  %s\n", formatPlaceholder(p))
			}
		}
		return nil
	}

	merged := template.MergeScan(results)
	if len(merged) == 0 {
		fmt.Println("No placeholders found.")
		return nil
	}
	printPlaceholders(merged)
	return nil
}

// --- render subcommand ---

var templateRenderCmd = &cobra.Command{
	Use:   "render <name-or-id>",
	Short: "Render a template with placeholder values",
	Long: `Render substitutes placeholder values into a template body and prints
the result. Values come from repeated --set key=value flags; keys
without a --set fall back to their template defaults. Unresolved keys
are an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplateRender,
}

func runTemplateRender(cmd *cobra.Command, args []string) error {
	store, err := templateStore(cmd)
	if err != nil {
		return err
	}

	pairs, _ := cmd.Flags().GetStringSlice("set")
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q: expected key=value", pair)
		}
		values[key] = value
	}

	rendered, err := store.Render(args[0], values)
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}

// --- shared helpers ---

func printPlaceholders(placeholders []types.Placeholder) {
	if len(placeholders) == 0 {
		fmt.Println("No placeholders.")
		return
	}
	for _, p := range placeholders {
		fmt.Println(formatPlaceholder(p))
	}
}

func formatPlaceholder(p types.Placeholder) string {
	switch {
	case len(p.Options) > 0:
		return fmt.Sprintf("%s (default: %s; options: %s)", p.Key, p.Default, strings.Join(p.Options, ", "))
	case p.Default != "":
		return fmt.Sprintf("%s (default: %s)", p.Key, p.Default)
	default:
		return p.Key
	}
}

func init() {
	templateCreateCmd.Flags().String("from", "", "file to read the template body from (default stdin)")
	templateCreateCmd.Flags().String("description", "", "template description")
	templateCreateCmd.Flags().StringSlice("label", nil, "label (repeatable)")

	templateScanCmd.Flags().Bool("per-file", false, "group placeholders by file")

	templateRenderCmd.Flags().StringSlice("set", nil, "placeholder value as key=value (repeatable)")

	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateShowCmd)
	templateCmd.AddCommand(templateCreateCmd)
	templateCmd.AddCommand(templateDeleteCmd)
	templateCmd.AddCommand(templateParamsCmd)
	templateCmd.AddCommand(templateScanCmd)
	templateCmd.AddCommand(templateRenderCmd)

	rootCmd.AddCommand(templateCmd)
}
