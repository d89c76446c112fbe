// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/taskdeck/pkg/types"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []types.Placeholder
	}{
		{
			name: "bare key",
			text: "deploy {{service}} now",
			want: []types.Placeholder{{Key: "service"}},
		},
		{
			name: "key with default",
			text: "env: {{env=staging}}",
			want: []types.Placeholder{{Key: "env", Default: "staging"}},
		},
		{
			name: "default plus options",
			text: "region {{region=us-east-1,eu-west-1,ap-south-1}}",
			want: []types.Placeholder{{
				Key: "region", Default: "us-east-1",
				Options: []string{"eu-west-1", "ap-south-1"},
			}},
		},
		{
			name: "duplicate keys collapse to first occurrence",
			text: "{{env=staging}} and later {{env=prod}}",
			want: []types.Placeholder{{Key: "env", Default: "staging"}},
		},
		{
			name: "order of first appearance",
			text: "{{b}} {{a}} {{b}}",
			want: []types.Placeholder{{Key: "b"}, {Key: "a"}},
		},
		{
			name: "whitespace trimmed around values",
			text: "{{mode= fast , slow }}",
			want: []types.Placeholder{{Key: "mode", Default: "fast", Options: []string{"slow"}}},
		},
		{
			name: "malformed braces are literal text",
			text: "{{not closed and {{9bad}} and {single}",
			want: nil,
		},
		{
			name: "nested braces do not match",
			text: "{{outer={{inner}}}}",
			want: []types.Placeholder{{Key: "inner"}},
		},
		{
			name: "underscore and dash keys",
			text: "{{image_tag}} {{build-id=42}}",
			want: []types.Placeholder{
				{Key: "image_tag"},
				{Key: "build-id", Default: "42"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		values map[string]string
		want   string
		errMsg string
	}{
		{
			name:   "supplied value wins over default",
			text:   "deploy to {{env=staging}}",
			values: map[string]string{"env": "prod"},
			want:   "deploy to prod",
		},
		{
			name: "default fills missing value",
			text: "deploy to {{env=staging}}",
			want: "deploy to staging",
		},
		{
			name: "options fall back to first value",
			text: "{{region=us-east-1,eu-west-1}}",
			want: "us-east-1",
		},
		{
			name:   "unresolved keys reported together, sorted",
			text:   "{{zeta}} {{alpha}} {{env=dev}}",
			errMsg: "unresolved placeholders: alpha, zeta",
		},
		{
			name: "earlier default covers a bare later occurrence",
			text: "deploy to {{env=staging}} and verify {{env}}",
			want: "deploy to staging and verify staging",
		},
		{
			name: "first occurrence's default wins over later ones",
			text: "{{env=staging}} {{env=prod}}",
			want: "staging staging",
		},
		{
			name:   "supplied value overrides every occurrence",
			text:   "{{env=staging}} {{env}} {{env=prod}}",
			values: map[string]string{"env": "qa"},
			want:   "qa qa qa",
		},
		{
			name: "literal text untouched",
			text: "func main() { fmt.Println(\"{{msg=hi}}\") }",
			want: "func main() { fmt.Println(\"hi\") }",
		},
		{
			name:   "no placeholders",
			text:   "plain text",
			want:   "plain text",
			values: map[string]string{"unused": "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.text, tt.values)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
