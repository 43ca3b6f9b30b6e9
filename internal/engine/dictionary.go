// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Dictionary maps normalized terms to identifiers.
type Dictionary map[string]string

// dictionaryEntry is the list form of a YAML dictionary.
type dictionaryEntry struct {
	ID       string   `yaml:"id"`
	Label    string   `yaml:"label"`
	Synonyms []string `yaml:"synonyms"`
}

// ParseDictionary reads a dictionary file. YAML files hold either a term to
// id mapping or a list of {id, label, synonyms}; anything else is read as
// tab-separated "term<TAB>id" lines.
func ParseDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}

	d := make(Dictionary)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		if err := d.parseYAML(data); err != nil {
			return nil, fmt.Errorf("parsing dictionary %s: %w", path, err)
		}
	default:
		if err := d.parseTSV(data); err != nil {
			return nil, fmt.Errorf("parsing dictionary %s: %w", path, err)
		}
	}
	return d, nil
}

// Lookup returns the identifier for term.
func (d Dictionary) Lookup(term string) (string, bool) {
	id, ok := d[normalizeTerm(term)]
	return id, ok
}

func (d Dictionary) add(term, id string) {
	term, id = normalizeTerm(term), strings.TrimSpace(id)
	if term != "" && id != "" {
		d[term] = id
	}
}

func (d Dictionary) parseYAML(data []byte) error {
	var mapping map[string]string
	if err := yaml.Unmarshal(data, &mapping); err == nil {
		for term, id := range mapping {
			d.add(term, id)
		}
		return nil
	}

	var entries []dictionaryEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return err
	}
	for _, e := range entries {
		d.add(e.Label, e.ID)
		for _, s := range e.Synonyms {
			d.add(s, e.ID)
		}
	}
	return nil
}

func (d Dictionary) parseTSV(data []byte) error {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		term, id, ok := strings.Cut(line, "\t")
		if !ok {
			return fmt.Errorf("line %d: expected term<TAB>id", n)
		}
		d.add(term, id)
	}
	return sc.Err()
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
