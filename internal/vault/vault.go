// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vault stores project credentials in a versioned JSON file,
// encrypting secret values on write and decrypting them on read. The
// key is derived from a passphrase, never stored.
package vault

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/taskdeck/pkg/types"
)

const vaultFile = "vault.json"

// now is the clock; tests substitute a fixed time.
var now = time.Now

// Vault is an open credential store bound to one project.
type Vault struct {
	path string
	key  []byte
	file types.VaultFile
}

// Open loads the project vault, deriving the encryption key from
// passphrase. A missing vault file starts empty with a fresh salt; an
// unknown format version is an error.
func Open(projectDir, passphrase string) (*Vault, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("vault passphrase required: set TASKDECK_VAULT_KEY or configure a key file")
	}

	path := filepath.Join(projectDir, ".taskdeck", vaultFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading vault %s: %w", path, err)
		}
		salt, err := newSalt()
		if err != nil {
			return nil, err
		}
		key, err := deriveKey(passphrase, salt)
		if err != nil {
			return nil, err
		}
		return &Vault{
			path: path,
			key:  key,
			file: types.VaultFile{
				Version: types.VaultVersion,
				Salt:    base64.StdEncoding.EncodeToString(salt),
			},
		}, nil
	}

	var file types.VaultFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing vault %s: %w", path, err)
	}
	if file.Version != types.VaultVersion {
		return nil, fmt.Errorf("unsupported vault version %d (want %d)", file.Version, types.VaultVersion)
	}

	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil {
		return nil, fmt.Errorf("decoding vault salt: %w", err)
	}
	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}

	return &Vault{path: path, key: key, file: file}, nil
}

func (v *Vault) save() error {
	if err := os.MkdirAll(filepath.Dir(v.path), 0o755); err != nil {
		return fmt.Errorf("creating vault directory: %w", err)
	}
	data, err := json.MarshalIndent(v.file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling vault: %w", err)
	}
	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing vault: %w", err)
	}
	if err := os.Rename(tmp, v.path); err != nil {
		return fmt.Errorf("replacing vault: %w", err)
	}
	return nil
}

// Groups returns every group with values still sealed.
func (v *Vault) Groups() []types.SecretGroup {
	return v.file.Groups
}

// AddGroup creates a named secret group.
func (v *Vault) AddGroup(name string) (types.SecretGroup, error) {
	if name == "" {
		return types.SecretGroup{}, fmt.Errorf("group name is required")
	}
	if _, err := v.findGroup(name); err == nil {
		return types.SecretGroup{}, fmt.Errorf("group %q already exists", name)
	}

	group := types.SecretGroup{ID: uuid.NewString(), Name: name}
	v.file.Groups = append(v.file.Groups, group)
	if err := v.save(); err != nil {
		return types.SecretGroup{}, err
	}
	return group, nil
}

// RemoveGroup deletes a group and all its accounts.
func (v *Vault) RemoveGroup(idOrName string) error {
	for i, g := range v.file.Groups {
		if g.ID == idOrName || g.Name == idOrName {
			v.file.Groups = append(v.file.Groups[:i], v.file.Groups[i+1:]...)
			return v.save()
		}
	}
	return fmt.Errorf("group %s not found", idOrName)
}

// AddAccount seals secret and stores it under the given group.
func (v *Vault) AddAccount(groupIDOrName, label, username, secret string) (types.SecretAccount, error) {
	if label == "" {
		return types.SecretAccount{}, fmt.Errorf("account label is required")
	}
	g, err := v.findGroup(groupIDOrName)
	if err != nil {
		return types.SecretAccount{}, err
	}

	sealed, err := seal(v.key, secret)
	if err != nil {
		return types.SecretAccount{}, err
	}

	ts := now().UTC()
	account := types.SecretAccount{
		ID:        uuid.NewString(),
		Label:     label,
		Username:  username,
		Value:     sealed,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	g.Accounts = append(g.Accounts, account)
	if err := v.save(); err != nil {
		return types.SecretAccount{}, err
	}
	return account, nil
}

// Reveal decrypts one account's secret.
func (v *Vault) Reveal(accountID string) (string, error) {
	a, _, err := v.findAccount(accountID)
	if err != nil {
		return "", err
	}
	secret, err := open(v.key, a.Value)
	if err != nil {
		return "", fmt.Errorf("account %s: %w", accountID, err)
	}
	return secret, nil
}

// RevealedAccount pairs an account with its decrypted secret.
type RevealedAccount struct {
	types.SecretAccount
	Secret string `json:"secret" yaml:"secret"`
}

// RevealGroup decrypts every account in a group. Accounts that fail to
// decrypt are reported on warnw by id and returned with an empty
// secret; the listing itself never aborts.
func (v *Vault) RevealGroup(groupIDOrName string, warnw io.Writer) ([]RevealedAccount, error) {
	g, err := v.findGroup(groupIDOrName)
	if err != nil {
		return nil, err
	}

	out := make([]RevealedAccount, 0, len(g.Accounts))
	for _, a := range g.Accounts {
		r := RevealedAccount{SecretAccount: a}
		secret, err := open(v.key, a.Value)
		if err != nil {
			fmt.Fprintf(warnw, "warning: account %s: %v\n", a.ID, err)
		} else {
			r.Secret = secret
		}
		r.Value = ""
		out = append(out, r)
	}
	return out, nil
}

// UpdateAccountInput carries the mutable account fields. Nil fields
// are left untouched.
type UpdateAccountInput struct {
	Label    *string
	Username *string
	Secret   *string
}

// UpdateAccount applies the non-nil fields and refreshes UpdatedAt.
func (v *Vault) UpdateAccount(accountID string, in UpdateAccountInput) (types.SecretAccount, error) {
	a, _, err := v.findAccount(accountID)
	if err != nil {
		return types.SecretAccount{}, err
	}

	if in.Label != nil {
		if *in.Label == "" {
			return types.SecretAccount{}, fmt.Errorf("account label cannot be empty")
		}
		a.Label = *in.Label
	}
	if in.Username != nil {
		a.Username = *in.Username
	}
	if in.Secret != nil {
		sealed, err := seal(v.key, *in.Secret)
		if err != nil {
			return types.SecretAccount{}, err
		}
		a.Value = sealed
	}
	a.UpdatedAt = now().UTC()

	if err := v.save(); err != nil {
		return types.SecretAccount{}, err
	}
	return *a, nil
}

// RemoveAccount deletes one account.
func (v *Vault) RemoveAccount(accountID string) error {
	for gi := range v.file.Groups {
		accounts := v.file.Groups[gi].Accounts
		for ai, a := range accounts {
			if a.ID == accountID {
				v.file.Groups[gi].Accounts = append(accounts[:ai], accounts[ai+1:]...)
				return v.save()
			}
		}
	}
	return fmt.Errorf("account %s not found", accountID)
}

func (v *Vault) findGroup(idOrName string) (*types.SecretGroup, error) {
	for i := range v.file.Groups {
		if v.file.Groups[i].ID == idOrName || v.file.Groups[i].Name == idOrName {
			return &v.file.Groups[i], nil
		}
	}
	return nil, fmt.Errorf("group %s not found", idOrName)
}

func (v *Vault) findAccount(accountID string) (*types.SecretAccount, *types.SecretGroup, error) {
	for gi := range v.file.Groups {
		for ai := range v.file.Groups[gi].Accounts {
			if v.file.Groups[gi].Accounts[ai].ID == accountID {
				return &v.file.Groups[gi].Accounts[ai], &v.file.Groups[gi], nil
			}
		}
	}
	return nil, nil, fmt.Errorf("account %s not found", accountID)
}
