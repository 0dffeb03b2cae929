// Package domainlist loads the root-domain input file.
package domainlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads a newline-delimited list of root domains from path.
// Blank lines and lines starting with '#' are ignored, surrounding
// whitespace is trimmed, and duplicates are dropped. An unreadable file
// or a list that is empty after filtering is an error; the caller treats
// both as fatal.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open domain list: %w", err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	var domains []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domain := strings.ToLower(line)
		if !seen[domain] {
			seen[domain] = true
			domains = append(domains, domain)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read domain list: %w", err)
	}

	if len(domains) == 0 {
		return nil, fmt.Errorf("no domains found in %s", path)
	}
	return domains, nil
}
