// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package guard decides whether a shell command an agent wants to run
// is allowed. The allowlist covers read-and-build style commands; in
// strict mode shell spawners are removed and network commands are
// validated against data exfiltration.
package guard

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"

	"github.com/pdiddy/taskdeck/pkg/types"
)

// safeCommands are always allowed regardless of mode.
var safeCommands = newSet(
	// core shell (read/navigate)
	"echo", "printf", "cat", "head", "tail", "less", "more", "ls", "pwd",
	"cd", "pushd", "popd", "cp", "mv", "mkdir", "rmdir", "touch", "ln",
	"find", "fd", "grep", "egrep", "fgrep", "rg", "ag", "sort", "uniq",
	"cut", "tr", "sed", "awk", "gawk", "wc", "diff", "cmp", "comm", "tee",
	"xargs", "read", "file", "stat", "tree", "du", "df", "which",
	"whereis", "type", "command", "date", "time", "sleep", "timeout",
	"watch", "true", "false", "test", "[", "[[", "env", "printenv",
	"export", "unset", "set", "source", ".", "exit", "return", "break",
	"continue",
	// archives
	"tar", "zip", "unzip", "gzip", "gunzip",
	// network (read-only)
	"ping", "host", "dig",
	// git
	"git", "gh", "glab",
	// process inspection and management
	"ps", "pgrep", "lsof", "jobs", "kill", "pkill", "killall",
	// file operations
	"rm", "chmod",
	// text tools
	"paste", "join", "split", "fold", "fmt", "nl", "rev", "shuf",
	"column", "expand", "unexpand", "iconv",
	// misc
	"clear", "reset", "man", "help", "uname", "whoami", "id", "basename",
	"dirname", "realpath", "readlink", "mktemp", "bc", "expr", "let",
	"seq", "yes", "jq", "yq",
)

// dangerousCommands can execute arbitrary code or spawn shells that
// bypass validation. Removed from the allowlist in strict mode.
var dangerousCommands = newSet("eval", "exec", "sh", "bash", "zsh")

// networkCommands are always allowed but validated in strict mode.
var networkCommands = newSet("curl", "wget")

func newSet(names ...string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// ValidatorFunc inspects a full command line and returns an error when
// the command must be blocked.
type ValidatorFunc func(commandLine string) error

// strictValidators are active only in strict mode.
var strictValidators = map[string]ValidatorFunc{
	"curl": validateCurl,
	"wget": validateWget,
}

// StrictMode reports whether strict mode is on, from config or the
// TASKDECK_STRICT environment variable (true/1/yes, case-insensitive).
func StrictMode(cfg types.GuardConfig) bool {
	if cfg.StrictMode {
		return true
	}
	switch strings.ToLower(os.Getenv("TASKDECK_STRICT")) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// BaseCommands returns the allowed command set for the mode. Network
// commands stay allowed in strict mode; they are validated separately.
func BaseCommands(strict bool) map[string]bool {
	out := make(map[string]bool, len(safeCommands)+len(dangerousCommands)+len(networkCommands))
	for c := range safeCommands {
		out[c] = true
	}
	for c := range networkCommands {
		out[c] = true
	}
	if !strict {
		for c := range dangerousCommands {
			out[c] = true
		}
	}
	return out
}

// Validator returns the validator for a command name, or nil when the
// command needs no validation in the given mode.
func Validator(name string, strict bool) ValidatorFunc {
	if !strict {
		return nil
	}
	return strictValidators[name]
}

// Check tokenizes the command line, enforces the allowlist for the
// configured mode, and runs the command's validator when one applies.
func Check(cfg types.GuardConfig, commandLine string) error {
	tokens, err := shlex.Split(commandLine)
	if err != nil {
		return fmt.Errorf("could not parse command: %w", err)
	}
	if len(tokens) == 0 {
		return fmt.Errorf("empty command")
	}

	strict := StrictMode(cfg)
	name := tokens[0]

	if !BaseCommands(strict)[name] {
		if strict && dangerousCommands[name] {
			return fmt.Errorf("command %q blocked in strict mode: it can spawn a shell that bypasses validation", name)
		}
		return fmt.Errorf("command %q is not in the allowlist", name)
	}

	if v := Validator(name, strict); v != nil {
		return v(commandLine)
	}
	return nil
}
