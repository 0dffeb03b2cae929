// Package recon implements the enumeration and probing stages of the
// takeover scanner.
package recon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"sort"
	"strings"

	"github.com/firaterror/makina404/internal/engine"
)

// ToolEnumerator implements engine.Enumerator by running an external
// subdomain-discovery tool (rapiddns by default) as a subprocess, once per
// root domain. The tool contract: exit 0 with newline-delimited hostnames
// on stdout, or non-zero exit with diagnostic text on stderr.
type ToolEnumerator struct {
	// Path is the tool binary, resolved from PATH when not absolute.
	Path string
}

// Enumerate runs `<tool> -s <domain>` and parses its output into a
// deduplicated, sorted hostname list. A missing binary returns an error
// wrapping engine.ErrToolNotFound, which aborts the whole run; a non-zero
// exit returns an error carrying the tool's stderr, which costs only this
// domain. Enumeration is idempotent and cheap, so no retry is attempted.
func (e *ToolEnumerator) Enumerate(ctx context.Context, domain string) ([]string, error) {
	cmd := exec.CommandContext(ctx, e.Path, "-s", domain)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// A bare name missing from PATH surfaces as exec.ErrNotFound, an
		// explicit path to a missing binary as fs.ErrNotExist.
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", engine.ErrToolNotFound, e.Path)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = exitErr.String()
			}
			return nil, fmt.Errorf("%s exited with %d for %s: %s", e.Path, exitErr.ExitCode(), domain, msg)
		}
		return nil, fmt.Errorf("running %s for %s: %w", e.Path, domain, err)
	}

	return parseToolOutput(stdout.String()), nil
}

// parseToolOutput splits newline-delimited tool output into trimmed,
// deduplicated, sorted hostnames. Empty lines are dropped.
func parseToolOutput(out string) []string {
	seen := make(map[string]bool)
	var hosts []string

	for _, line := range strings.Split(out, "\n") {
		host := strings.ToLower(strings.TrimSpace(line))
		if host == "" {
			continue
		}
		if !seen[host] {
			seen[host] = true
			hosts = append(hosts, host)
		}
	}

	sort.Strings(hosts)
	return hosts
}
