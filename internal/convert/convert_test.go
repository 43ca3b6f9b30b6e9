// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ontoextract/internal/container"
)

// stubRuntime implements container.Runtime with canned behavior.
type stubRuntime struct {
	imageErr error
	output   string
	runs     int
}

func (s *stubRuntime) Name() string                              { return "stub" }
func (s *stubRuntime) Available(context.Context) bool            { return true }
func (s *stubRuntime) ImageExists(context.Context, string) error { return s.imageErr }

func (s *stubRuntime) Run(_ context.Context, _ string, stdin io.Reader, stdout io.Writer) error {
	s.runs++
	io.Copy(io.Discard, stdin)
	_, err := io.WriteString(stdout, s.output)
	return err
}

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o644))
	return path
}

func TestNeedsConversion(t *testing.T) {
	assert.True(t, NeedsConversion("paper.PDF"))
	assert.True(t, NeedsConversion("/tmp/slides.pptx"))
	assert.False(t, NeedsConversion("notes.txt"))
	assert.False(t, NeedsConversion("README"))
}

func TestMarkitdownConverter(t *testing.T) {
	rt := &stubRuntime{output: "# Title\n\nBody text."}
	c, err := NewMarkitdownConverter(context.Background(), rt)
	require.NoError(t, err)

	text, err := c.Convert(context.Background(), writeDoc(t))
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody text.", text)
}

func TestMarkitdownConverterMissingImage(t *testing.T) {
	_, err := NewMarkitdownConverter(context.Background(), &stubRuntime{imageErr: errors.New("no such image")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markitdown image not available")
}

func TestMarkitdownConverterEmptyOutput(t *testing.T) {
	c, err := NewMarkitdownConverter(context.Background(), &stubRuntime{})
	require.NoError(t, err)
	_, err = c.Convert(context.Background(), writeDoc(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty output")
}

func TestDetectingResolvesRuntimeOnce(t *testing.T) {
	rt := &stubRuntime{output: "converted"}
	detections := 0
	old := detectFunc
	detectFunc = func(context.Context) (container.Runtime, error) {
		detections++
		return rt, nil
	}
	defer func() { detectFunc = old }()

	var d Detecting
	path := writeDoc(t)
	for i := 0; i < 2; i++ {
		text, err := d.Convert(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "converted", text)
	}
	assert.Equal(t, 1, detections)
	assert.Equal(t, 2, rt.runs)
}

func TestDetectingNoRuntime(t *testing.T) {
	old := detectFunc
	detectFunc = func(context.Context) (container.Runtime, error) {
		return nil, errors.New("no container runtime available")
	}
	defer func() { detectFunc = old }()

	var d Detecting
	_, err := d.Convert(context.Background(), writeDoc(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no container runtime available")
}
