// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package guard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/shlex"
)

// allowedHosts get unrestricted access: local development traffic is
// never exfiltration.
var allowedHosts = newSet("localhost", "127.0.0.1", "::1", "0.0.0.0")

// curlUploadFlags indicate data upload (potential exfiltration).
var curlUploadFlags = newSet(
	"-d", "--data",
	"--data-raw", "--data-binary", "--data-urlencode", "--data-ascii",
	"-F", "--form",
	"-T", "--upload-file",
	"--json",
)

// curlSkipFlags take an argument; their values must not be mistaken
// for the URL.
var curlSkipFlags = newSet(
	"-o", "--output", "-O",
	"-H", "--header",
	"-A", "--user-agent",
	"-e", "--referer",
	"-u", "--user",
	"-x", "--proxy",
	"-b", "--cookie",
	"-c", "--cookie-jar",
	"--connect-timeout", "--max-time",
	"-w", "--write-out",
	"--retry", "--retry-delay",
)

// wgetUploadFlags indicate upload for wget.
var wgetUploadFlags = newSet(
	"--post-data", "--post-file",
	"--body-data", "--body-file",
	"--method",
)

// wgetSkipFlags take an argument.
var wgetSkipFlags = newSet(
	"-O", "--output-document",
	"-o", "--output-file",
	"-a", "--append-output",
	"--header",
	"--user-agent", "-U",
	"--referer",
	"--user", "--password",
	"--proxy-user", "--proxy-password",
	"-e", "--execute",
	"-t", "--tries",
	"-T", "--timeout",
	"-w", "--wait",
	"--limit-rate",
	"-P", "--directory-prefix",
)

var uploadMethods = newSet("POST", "PUT", "PATCH")

// validateCurl blocks curl invocations that could exfiltrate data: any
// upload flag or explicit POST/PUT/PATCH to a non-localhost URL.
func validateCurl(commandLine string) error {
	tokens, err := shlex.Split(commandLine)
	if err != nil {
		return fmt.Errorf("could not parse curl command: %w", err)
	}
	if len(tokens) == 0 || tokens[0] != "curl" {
		return fmt.Errorf("not a curl command")
	}

	skipFlags := union(curlSkipFlags, curlUploadFlags)

	var (
		uploadFlag     string
		explicitMethod string
	)

	for i := 1; i < len(tokens); i++ {
		token := tokens[i]

		if f := matchFlag(token, curlUploadFlags); f != "" {
			uploadFlag = f
		}

		if token == "-X" || token == "--request" {
			if i+1 < len(tokens) {
				explicitMethod = strings.ToUpper(tokens[i+1])
				i++
				continue
			}
		}

		// Skip the argument of flags that take one.
		if strings.HasPrefix(token, "-") && skipFlags[token] {
			i++
		}
	}

	rawURL := extractURL(tokens, skipFlags)
	if rawURL != "" && isLocalhost(rawURL) {
		return nil
	}

	if uploadFlag != "" {
		return fmt.Errorf("curl with %q blocked in strict mode (potential data exfiltration); only GET requests are allowed to external hosts, localhost is unrestricted", uploadFlag)
	}
	if uploadMethods[explicitMethod] {
		return fmt.Errorf("curl %s blocked in strict mode (potential data exfiltration); only GET requests are allowed to external hosts, localhost is unrestricted", explicitMethod)
	}
	return nil
}

// validateWget blocks wget invocations that upload data to non-localhost
// hosts.
func validateWget(commandLine string) error {
	tokens, err := shlex.Split(commandLine)
	if err != nil {
		return fmt.Errorf("could not parse wget command: %w", err)
	}
	if len(tokens) == 0 || tokens[0] != "wget" {
		return fmt.Errorf("not a wget command")
	}

	skipFlags := union(wgetSkipFlags, wgetUploadFlags)

	var (
		uploadFlag     string
		explicitMethod string
	)

	for i := 1; i < len(tokens); i++ {
		token := tokens[i]

		// --method alone is not an upload: only POST/PUT/PATCH values
		// block, so --method=GET stays usable.
		if f := matchFlag(token, wgetUploadFlags); f != "" && f != "--method" {
			uploadFlag = f
		}

		if token == "--method" {
			if i+1 < len(tokens) {
				explicitMethod = strings.ToUpper(tokens[i+1])
				i++
				continue
			}
		} else if rest, ok := strings.CutPrefix(token, "--method="); ok {
			explicitMethod = strings.ToUpper(rest)
		}

		if strings.HasPrefix(token, "-") && skipFlags[token] {
			i++
		}
	}

	// wget usually puts the URL last.
	var rawURL string
	for i := len(tokens) - 1; i >= 1; i-- {
		if !strings.HasPrefix(tokens[i], "-") && hasURLScheme(tokens[i]) {
			rawURL = tokens[i]
			break
		}
	}

	if rawURL != "" && isLocalhost(rawURL) {
		return nil
	}

	if uploadFlag != "" {
		return fmt.Errorf("wget with %q blocked in strict mode (potential data exfiltration); only GET requests are allowed to external hosts, localhost is unrestricted", uploadFlag)
	}
	if uploadMethods[explicitMethod] {
		return fmt.Errorf("wget --method=%s blocked in strict mode (potential data exfiltration); only GET requests are allowed to external hosts, localhost is unrestricted", explicitMethod)
	}
	return nil
}

// matchFlag reports which flag from set the token is, accepting both
// "--flag value" and "--flag=value" spellings.
func matchFlag(token string, set map[string]bool) string {
	if set[token] {
		return token
	}
	if eq := strings.IndexByte(token, '='); eq > 0 && set[token[:eq]] {
		return token[:eq]
	}
	return ""
}

// extractURL finds the request URL among tokens, skipping flags and
// their arguments. Bare hostnames (curl accepts them) get an http://
// prefix.
func extractURL(tokens []string, skipFlags map[string]bool) string {
	skipNext := false
	for _, token := range tokens[1:] {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.HasPrefix(token, "-") {
			if skipFlags[token] {
				skipNext = true
			}
			continue
		}
		if hasURLScheme(token) {
			return token
		}
		if strings.Contains(token, ".") || allowedHosts[token] {
			return "http://" + token
		}
	}
	return ""
}

func hasURLScheme(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "ftp://")
}

// isLocalhost reports whether the URL's host is in the allowed set.
func isLocalhost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return allowedHosts[strings.ToLower(u.Hostname())]
}

func union(sets ...map[string]bool) map[string]bool {
	out := map[string]bool{}
	for _, s := range sets {
		for k := range s {
			out[k] = true
		}
	}
	return out
}
