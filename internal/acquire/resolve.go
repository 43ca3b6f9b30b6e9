// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/pdiddy/ontoextract/pkg/types"
)

// pmidPattern matches PubMed IDs: "12345", "PMID:12345", "pmid 12345".
var pmidPattern = regexp.MustCompile(`^(?i:pmid)?[:\s]*(\d{1,9})$`)

// NormalizePMID strips an optional PMID prefix and checks the ID is numeric.
func NormalizePMID(id string) (string, error) {
	m := pmidPattern.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return "", fmt.Errorf("%q is not a PubMed ID: %w", id, types.ErrInvalidArgument)
	}
	return m[1], nil
}

// NormalizeURL checks that raw is an absolute http(s) URL.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%q is not an http(s) URL: %w", raw, types.ErrInvalidArgument)
	}
	return u.String(), nil
}

// ResolveCandidate returns the single line of the candidates file that
// contains needle. Zero or several matches are ErrInvalidArgument.
func ResolveCandidate(candidatesFile, needle string) (string, error) {
	f, err := os.Open(candidatesFile)
	if err != nil {
		return "", fmt.Errorf("opening candidates file: %w", err)
	}
	defer f.Close()

	var matches []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && strings.Contains(line, needle) {
			matches = append(matches, line)
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("reading candidates file: %w", err)
	}
	if len(matches) != 1 {
		return "", fmt.Errorf("found %d URLs matching %q in %s: %w", len(matches), needle, candidatesFile, types.ErrInvalidArgument)
	}
	return matches[0], nil
}
