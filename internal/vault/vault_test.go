// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vault

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/taskdeck/pkg/types"
)

const testPassphrase = "correct horse battery staple"

func openTestVault(t *testing.T) (*Vault, string) {
	t.Helper()
	dir := t.TempDir()
	v, err := Open(dir, testPassphrase)
	require.NoError(t, err)
	return v, dir
}

func TestOpenRequiresPassphrase(t *testing.T) {
	_, err := Open(t.TempDir(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TASKDECK_VAULT_KEY")
}

func TestMissingVaultIsEmpty(t *testing.T) {
	v, _ := openTestVault(t)
	assert.Empty(t, v.Groups())
}

func TestRoundTrip(t *testing.T) {
	v, dir := openTestVault(t)

	group, err := v.AddGroup("gitlab")
	require.NoError(t, err)

	account, err := v.AddAccount("gitlab", "deploy token", "ci-bot", "glpat-sekrit")
	require.NoError(t, err)
	assert.NotEqual(t, "glpat-sekrit", account.Value, "value must be sealed on disk")

	// Reopen from disk with the same passphrase and decrypt.
	v2, err := Open(dir, testPassphrase)
	require.NoError(t, err)

	secret, err := v2.Reveal(account.ID)
	require.NoError(t, err)
	assert.Equal(t, "glpat-sekrit", secret)

	groups := v2.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, group.ID, groups[0].ID)
}

func TestVersionTagOnDisk(t *testing.T) {
	v, dir := openTestVault(t)
	_, err := v.AddGroup("g")
	require.NoError(t, err)
	_, err = v.AddAccount("g", "token", "", "glpat-sekrit")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".taskdeck", "vault.json"))
	require.NoError(t, err)

	var file types.VaultFile
	require.NoError(t, json.Unmarshal(data, &file))
	assert.Equal(t, types.VaultVersion, file.Version)
	assert.NotEmpty(t, file.Salt)
	assert.False(t, strings.Contains(string(data), "glpat"), "no plaintext secrets on disk")
}

func TestUnknownVersionRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".taskdeck", "vault.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 2, "salt": "AAAA", "groups": []}`), 0o600))

	_, err := Open(dir, testPassphrase)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version 2")
}

func TestWrongPassphraseFailsDecryption(t *testing.T) {
	v, dir := openTestVault(t)
	_, err := v.AddGroup("g")
	require.NoError(t, err)
	account, err := v.AddAccount("g", "key", "", "topsecret")
	require.NoError(t, err)

	v2, err := Open(dir, "wrong passphrase")
	require.NoError(t, err, "opening succeeds; decryption fails per value")

	_, err = v2.Reveal(account.ID)
	assert.Error(t, err)
}

func TestRevealGroupSurvivesBadValue(t *testing.T) {
	v, _ := openTestVault(t)
	_, err := v.AddGroup("g")
	require.NoError(t, err)
	good, err := v.AddAccount("g", "good", "", "ok")
	require.NoError(t, err)
	bad, err := v.AddAccount("g", "bad", "", "ok")
	require.NoError(t, err)

	// Corrupt one sealed value in memory.
	a, _, err := v.findAccount(bad.ID)
	require.NoError(t, err)
	a.Value = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

	var warnings bytes.Buffer
	revealed, err := v.RevealGroup("g", &warnings)
	require.NoError(t, err, "listing must not abort on a bad value")
	require.Len(t, revealed, 2)

	assert.Equal(t, "ok", revealed[0].Secret)
	assert.Equal(t, good.ID, revealed[0].ID)
	assert.Empty(t, revealed[1].Secret)
	assert.Contains(t, warnings.String(), bad.ID)
}

func TestUpdateAccount(t *testing.T) {
	v, _ := openTestVault(t)
	_, err := v.AddGroup("g")
	require.NoError(t, err)
	account, err := v.AddAccount("g", "old", "alice", "v1")
	require.NoError(t, err)

	label := "new"
	secret := "v2"
	updated, err := v.UpdateAccount(account.ID, UpdateAccountInput{Label: &label, Secret: &secret})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Label)
	assert.Equal(t, "alice", updated.Username)

	got, err := v.Reveal(account.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	empty := ""
	_, err = v.UpdateAccount(account.ID, UpdateAccountInput{Label: &empty})
	assert.Error(t, err)
}

func TestRemoveGroupAndAccount(t *testing.T) {
	v, _ := openTestVault(t)
	_, err := v.AddGroup("g")
	require.NoError(t, err)
	account, err := v.AddAccount("g", "a", "", "s")
	require.NoError(t, err)

	require.NoError(t, v.RemoveAccount(account.ID))
	assert.Error(t, v.RemoveAccount(account.ID))

	require.NoError(t, v.RemoveGroup("g"))
	assert.Error(t, v.RemoveGroup("g"))
}

func TestDuplicateGroupName(t *testing.T) {
	v, _ := openTestVault(t)
	_, err := v.AddGroup("g")
	require.NoError(t, err)
	_, err = v.AddGroup("g")
	assert.Error(t, err)
}

func TestSealRoundTripAndTamper(t *testing.T) {
	salt, err := newSalt()
	require.NoError(t, err)
	key, err := deriveKey("pass", salt)
	require.NoError(t, err)

	sealed, err := seal(key, "payload")
	require.NoError(t, err)

	got, err := open(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, "payload", got)

	// Distinct nonces: sealing twice never produces the same ciphertext.
	sealed2, err := seal(key, "payload")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, sealed2)

	// Flip a ciphertext byte; GCM must reject it.
	tampered := []byte(sealed)
	tampered[len(tampered)-5] ^= 'x'
	_, err = open(key, string(tampered))
	assert.Error(t, err)
}
