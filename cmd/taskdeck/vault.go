// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/taskdeck/internal/vault"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage the encrypted credential vault",
	Long: `Vault stores credentials encrypted at rest in the project's
.taskdeck/vault.json. Secrets are sealed with AES-256-GCM under a key
derived from a passphrase; the passphrase comes from the
TASKDECK_VAULT_KEY environment variable or a key file configured as
vault.key_file.`,
}

// vaultPassphrase resolves the vault passphrase from the environment or
// the configured key file.
func vaultPassphrase() (string, error) {
	if key := os.Getenv("TASKDECK_VAULT_KEY"); key != "" {
		return key, nil
	}
	keyFile := appConfig().Vault.KeyFile
	if keyFile == "" {
		return "", fmt.Errorf("no vault passphrase: set TASKDECK_VAULT_KEY or configure vault.key_file")
	}
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return "", fmt.Errorf("reading vault key file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// openVault opens the selected project's vault.
func openVault(cmd *cobra.Command) (*vault.Vault, error) {
	dir, err := projectDir(cmd)
	if err != nil {
		return nil, err
	}
	passphrase, err := vaultPassphrase()
	if err != nil {
		return nil, err
	}
	return vault.Open(dir, passphrase)
}

// --- list subcommand ---

var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups and accounts without revealing secrets",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault(cmd)
		if err != nil {
			return err
		}
		groups := v.Groups()
		if len(groups) == 0 {
			fmt.Println("Vault is empty.")
			return nil
		}
		for _, g := range groups {
			fmt.Printf("%s (%s)\n", g.Name, g.ID)
			for _, a := range g.Accounts {
				fmt.Printf("  %-36s  %-24s  %s\n", a.ID, a.Label, a.Username)
			}
		}
		return nil
	},
}

// --- group subcommands ---

var vaultGroupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage secret groups",
}

var vaultGroupAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a secret group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault(cmd)
		if err != nil {
			return err
		}
		group, err := v.AddGroup(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Created group %s (%s)\n", group.Name, group.ID)
		return nil
	},
}

var vaultGroupRemoveCmd = &cobra.Command{
	Use:   "remove <name-or-id>",
	Short: "Remove a group and all its accounts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault(cmd)
		if err != nil {
			return err
		}
		if err := v.RemoveGroup(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed group %s\n", args[0])
		return nil
	},
}

// --- account subcommands ---

var vaultAccountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts inside groups",
}

var vaultAccountAddCmd = &cobra.Command{
	Use:   "add <group> <label>",
	Short: "Add an account to a group",
	Args:  cobra.ExactArgs(2),
	RunE:  runVaultAccountAdd,
}

func runVaultAccountAdd(cmd *cobra.Command, args []string) error {
	v, err := openVault(cmd)
	if err != nil {
		return err
	}

	username, _ := cmd.Flags().GetString("username")
	secret, _ := cmd.Flags().GetString("secret")
	if secret == "" {
		return fmt.Errorf("--secret is required")
	}

	account, err := v.AddAccount(args[0], args[1], username, secret)
	if err != nil {
		return err
	}
	fmt.Printf("Added account %s (%s)\n", account.Label, account.ID)
	return nil
}

var vaultAccountShowCmd = &cobra.Command{
	Use:   "show <account-id>",
	Short: "Reveal one account's secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault(cmd)
		if err != nil {
			return err
		}
		secret, err := v.Reveal(args[0])
		if err != nil {
			return err
		}
		fmt.Println(secret)
		return nil
	},
}

var vaultAccountUpdateCmd = &cobra.Command{
	Use:   "update <account-id>",
	Short: "Update an account's label, username, or secret",
	Args:  cobra.ExactArgs(1),
	RunE:  runVaultAccountUpdate,
}

func runVaultAccountUpdate(cmd *cobra.Command, args []string) error {
	v, err := openVault(cmd)
	if err != nil {
		return err
	}

	var in vault.UpdateAccountInput
	if cmd.Flags().Changed("label") {
		value, _ := cmd.Flags().GetString("label")
		in.Label = &value
	}
	if cmd.Flags().Changed("username") {
		value, _ := cmd.Flags().GetString("username")
		in.Username = &value
	}
	if cmd.Flags().Changed("secret") {
		value, _ := cmd.Flags().GetString("secret")
		in.Secret = &value
	}

	account, err := v.UpdateAccount(args[0], in)
	if err != nil {
		return err
	}
	fmt.Printf("Updated account %s\n", account.ID)
	return nil
}

var vaultAccountRemoveCmd = &cobra.Command{
	Use:   "remove <account-id>",
	Short: "Remove an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault(cmd)
		if err != nil {
			return err
		}
		if err := v.RemoveAccount(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed account %s\n", args[0])
		return nil
	},
}

// --- reveal subcommand ---

var vaultRevealCmd = &cobra.Command{
	Use:   "reveal <group>",
	Short: "Reveal every secret in a group",
	Long: `Reveal decrypts every account in a group. Accounts whose values fail
to decrypt are reported on stderr and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault(cmd)
		if err != nil {
			return err
		}
		revealed, err := v.RevealGroup(args[0], os.Stderr)
		if err != nil {
			return err
		}
		for _, r := range revealed {
			fmt.Printf("%-24s  %-24s  %s\n", r.Label, r.Username, r.Secret)
		}
		return nil
	},
}

func init() {
	vaultAccountAddCmd.Flags().String("username", "", "account username")
	vaultAccountAddCmd.Flags().String("secret", "", "secret value to seal")

	vaultAccountUpdateCmd.Flags().String("label", "", "new label")
	vaultAccountUpdateCmd.Flags().String("username", "", "new username")
	vaultAccountUpdateCmd.Flags().String("secret", "", "new secret value")

	vaultGroupCmd.AddCommand(vaultGroupAddCmd)
	vaultGroupCmd.AddCommand(vaultGroupRemoveCmd)

	vaultAccountCmd.AddCommand(vaultAccountAddCmd)
	vaultAccountCmd.AddCommand(vaultAccountShowCmd)
	vaultAccountCmd.AddCommand(vaultAccountUpdateCmd)
	vaultAccountCmd.AddCommand(vaultAccountRemoveCmd)

	vaultCmd.AddCommand(vaultListCmd)
	vaultCmd.AddCommand(vaultGroupCmd)
	vaultCmd.AddCommand(vaultAccountCmd)
	vaultCmd.AddCommand(vaultRevealCmd)

	rootCmd.AddCommand(vaultCmd)
}
