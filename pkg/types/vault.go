// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// VaultVersion is the on-disk format version the vault reads and writes.
const VaultVersion = 1

// SecretAccount is one credential inside a secret group. Value holds the
// sealed ciphertext on disk; the vault decrypts it on read.
type SecretAccount struct {
	// ID uniquely identifies the account within the vault.
	ID string `json:"id" yaml:"id"`

	// Label is the display name (e.g. "staging deploy key").
	Label string `json:"label" yaml:"label"`

	// Username is the login or key name, stored in the clear.
	Username string `json:"username,omitempty" yaml:"username,omitempty"`

	// Value is the sealed secret: base64(nonce || ciphertext).
	Value string `json:"value" yaml:"value"`

	// CreatedAt is set once when the account is added.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt refreshes on every mutation.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// SecretGroup collects related accounts (e.g. one group per service).
type SecretGroup struct {
	// ID uniquely identifies the group within the vault.
	ID string `json:"id" yaml:"id"`

	// Name is the group display name.
	Name string `json:"name" yaml:"name"`

	// Accounts lists the group's credentials.
	Accounts []SecretAccount `json:"accounts" yaml:"accounts"`
}

// VaultFile is the on-disk vault document.
type VaultFile struct {
	// Version is the format version; readers reject unknown versions.
	Version int `json:"version" yaml:"version"`

	// Salt is the base64 scrypt salt for the key derivation.
	Salt string `json:"salt" yaml:"salt"`

	// Groups holds every secret group.
	Groups []SecretGroup `json:"groups" yaml:"groups"`
}
