// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/taskdeck/pkg/types"
)

func TestStrictModeToggle(t *testing.T) {
	tests := []struct {
		name string
		env  string
		cfg  types.GuardConfig
		want bool
	}{
		{name: "default is normal mode", env: "", want: false},
		{name: "env true", env: "true", want: true},
		{name: "env 1", env: "1", want: true},
		{name: "env yes", env: "yes", want: true},
		{name: "env case insensitive", env: "TRUE", want: true},
		{name: "env garbage", env: "definitely", want: false},
		{name: "config wins without env", cfg: types.GuardConfig{StrictMode: true}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TASKDECK_STRICT", tt.env)
			assert.Equal(t, tt.want, StrictMode(tt.cfg))
		})
	}
}

func TestBaseCommandsByMode(t *testing.T) {
	normal := BaseCommands(false)
	strict := BaseCommands(true)

	for _, c := range []string{"eval", "exec", "sh", "bash", "zsh"} {
		assert.True(t, normal[c], "%s available in normal mode", c)
		assert.False(t, strict[c], "%s blocked in strict mode", c)
	}

	// Network commands stay available in both modes.
	for _, c := range []string{"curl", "wget"} {
		assert.True(t, normal[c])
		assert.True(t, strict[c])
	}

	assert.True(t, strict["git"])
	assert.True(t, strict["ls"])
}

func TestValidatorByMode(t *testing.T) {
	assert.Nil(t, Validator("curl", false))
	assert.NotNil(t, Validator("curl", true))
	assert.NotNil(t, Validator("wget", true))
	assert.Nil(t, Validator("git", true))
}

func TestCheck(t *testing.T) {
	t.Setenv("TASKDECK_STRICT", "")

	strict := types.GuardConfig{StrictMode: true}
	normal := types.GuardConfig{}

	tests := []struct {
		name    string
		cfg     types.GuardConfig
		command string
		wantErr string
	}{
		{name: "safe command", cfg: strict, command: "ls -la"},
		{name: "bash allowed in normal mode", cfg: normal, command: "bash -c 'echo hi'"},
		{name: "bash blocked in strict mode", cfg: strict, command: "bash -c 'echo hi'", wantErr: "spawn"},
		{name: "unknown command", cfg: normal, command: "cryptominer --fast", wantErr: "allowlist"},
		{name: "curl GET passes strict validation", cfg: strict, command: "curl https://example.com"},
		{name: "curl POST blocked in strict mode", cfg: strict, command: `curl -X POST https://example.com -d "data"`, wantErr: "blocked"},
		{name: "curl POST fine in normal mode", cfg: normal, command: `curl -X POST https://example.com -d "data"`},
		{name: "unparseable command", cfg: normal, command: `echo "unterminated`, wantErr: "parse"},
		{name: "empty command", cfg: normal, command: "   ", wantErr: "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.cfg, tt.command)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
