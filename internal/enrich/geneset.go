// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich summarizes what a set of genes has in common.
package enrich

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ontoextract/pkg/types"
)

// NewGeneSet builds a gene set from explicit symbols or from a file, never
// both. Supplying neither is also an error.
func NewGeneSet(genes []string, inputFile, name string) (types.GeneSet, error) {
	switch {
	case len(genes) > 0 && inputFile != "":
		return types.GeneSet{}, fmt.Errorf("gene symbols and --input-file are mutually exclusive: %w", types.ErrInvalidArgument)
	case len(genes) == 0 && inputFile == "":
		return types.GeneSet{}, fmt.Errorf("supply gene symbols or --input-file: %w", types.ErrInvalidArgument)
	case inputFile != "":
		gs, err := ParseGeneSet(inputFile)
		if err != nil {
			return types.GeneSet{}, err
		}
		if name != "" {
			gs.Name = name
		}
		return gs, nil
	}

	if name == "" {
		name = "TEMP"
	}
	symbols := make([]string, 0, len(genes))
	for _, g := range genes {
		if g = strings.TrimSpace(g); g != "" {
			symbols = append(symbols, g)
		}
	}
	return types.GeneSet{Name: name, GeneSymbols: symbols}, nil
}

// ParseGeneSet reads a gene set file. YAML and JSON files hold
// {name, gene_symbols}; other files list one symbol per line, skipping blank
// lines and # comments, and take their name from the file stem.
func ParseGeneSet(path string) (types.GeneSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.GeneSet{}, fmt.Errorf("gene set file %s: %w", path, types.ErrNotFound)
		}
		return types.GeneSet{}, fmt.Errorf("reading gene set: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		var gs types.GeneSet
		if err := yaml.Unmarshal(data, &gs); err != nil {
			return types.GeneSet{}, fmt.Errorf("parsing gene set %s: %w", path, err)
		}
		if gs.Name == "" {
			gs.Name = stem
		}
		return gs, nil
	}

	gs := types.GeneSet{Name: stem}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gs.GeneSymbols = append(gs.GeneSymbols, line)
	}
	if err := sc.Err(); err != nil {
		return types.GeneSet{}, fmt.Errorf("reading gene set %s: %w", path, err)
	}
	return gs, nil
}

// ParseDescriptions reads gene descriptions as "SYMBOL<TAB>description"
// lines or a YAML mapping.
func ParseDescriptions(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gene descriptions: %w", err)
	}
	out := make(map[string]string)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parsing gene descriptions %s: %w", path, err)
		}
		return out, nil
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		sym, desc, ok := strings.Cut(sc.Text(), "\t")
		if !ok || strings.TrimSpace(sym) == "" {
			continue
		}
		out[strings.TrimSpace(sym)] = strings.TrimSpace(desc)
	}
	return out, sc.Err()
}
