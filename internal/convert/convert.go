// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns binary input documents into plain text before they
// are handed to an extraction engine.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdiddy/ontoextract/internal/container"
)

// Converter transforms a document on disk into text.
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// NeedsConversion reports whether a file must be converted rather than read
// as text.
func NeedsConversion(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".pptx", ".xlsx":
		return true
	}
	return false
}

// detectFunc locates a container runtime. Tests substitute it.
var detectFunc = container.DetectRuntime

// Detecting is a Converter that locates a container runtime on first use and
// then delegates to a MarkitdownConverter. The zero value is ready to use.
type Detecting struct {
	once  sync.Once
	inner *MarkitdownConverter
	err   error
}

// Convert implements Converter.
func (d *Detecting) Convert(ctx context.Context, path string) (string, error) {
	d.once.Do(func() {
		rt, err := detectFunc(ctx)
		if err != nil {
			d.err = fmt.Errorf("converting %s: %w", filepath.Base(path), err)
			return
		}
		d.inner, d.err = NewMarkitdownConverter(ctx, rt)
	})
	if d.err != nil {
		return "", d.err
	}
	return d.inner.Convert(ctx, path)
}
