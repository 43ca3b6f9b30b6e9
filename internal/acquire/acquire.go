// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire produces the text an extraction runs on. Each source kind
// (local file, literal, stdin, PubMed, Wikipedia, web page, recipe page)
// implements Source; a command picks exactly one and Acquire runs it once.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/ontoextract/internal/convert"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// Source produces one text blob.
type Source interface {
	Name() string
	Text(ctx context.Context) (string, error)
}

// Acquire runs src once and returns its text unchanged.
func Acquire(ctx context.Context, src Source) (string, error) {
	text, err := src.Text(ctx)
	if err != nil {
		return "", err
	}
	log.Info().
		Str("source", src.Name()).
		Int("chars", utf8.RuneCountInString(text)).
		Msg("acquired input text")
	return text, nil
}

// Local picks the source for a command that takes an optional input file
// and an optional positional argument: the file when one is named (missing
// files fail with ErrNotFound), else the argument as literal text, else
// stdin when the argument is empty or "-".
func Local(inputFile, arg string, stdin io.Reader, conv convert.Converter) Source {
	switch {
	case inputFile != "":
		return &File{Path: inputFile, Converter: conv}
	case arg != "" && arg != "-":
		return Literal(arg)
	default:
		return &Stdin{R: stdin}
	}
}

// File reads a local file. Office and PDF documents go through Converter.
type File struct {
	Path      string
	Converter convert.Converter
}

// Name implements Source.
func (f *File) Name() string { return "file" }

// Text implements Source.
func (f *File) Text(ctx context.Context) (string, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("cannot find input file %s: %w", f.Path, types.ErrNotFound)
		}
		return "", fmt.Errorf("checking input file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("input file %s is a directory: %w", f.Path, types.ErrInvalidArgument)
	}

	if convert.NeedsConversion(f.Path) {
		conv := f.Converter
		if conv == nil {
			conv = &convert.Detecting{}
		}
		return conv.Convert(ctx, f.Path)
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("reading input file: %w", err)
	}
	return string(data), nil
}

// Literal is text given on the command line.
type Literal string

// Name implements Source.
func (Literal) Name() string { return "literal" }

// Text implements Source.
func (l Literal) Text(context.Context) (string, error) { return string(l), nil }

// Stdin reads until end of stream.
type Stdin struct {
	R io.Reader
}

// Name implements Source.
func (*Stdin) Name() string { return "stdin" }

// Text implements Source.
func (s *Stdin) Text(context.Context) (string, error) {
	r := s.R
	if r == nil {
		r = os.Stdin
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading standard input: %w", err)
	}
	return string(data), nil
}

// Func adapts a function to Source.
type Func struct {
	Label string
	Fn    func(ctx context.Context) (string, error)
}

// Name implements Source.
func (f Func) Name() string { return f.Label }

// Text implements Source.
func (f Func) Text(ctx context.Context) (string, error) { return f.Fn(ctx) }
