// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error kinds surfaced by the pipeline. Callers wrap them with context via
// fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// ErrNotFound reports a missing input file, template, class or page.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument reports conflicting, missing or malformed user input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTypeMismatch reports an engine that lacks a capability the command needs.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrNoResults reports a search that matched nothing.
	ErrNoResults = errors.New("no results")

	// ErrNoSchemaView reports a renderer that needs schema semantics but got none.
	ErrNoSchemaView = errors.New("no schema view available")
)
