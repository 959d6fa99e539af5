package compiler_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/internal/compiler"
	"github.com/aretw0/espalier/pkg/document"
)

// TestCorpus_Valid compiles every definition under testdata/valid.
func TestCorpus_Valid(t *testing.T) {
	for _, path := range corpus(t, "valid") {
		t.Run(fixtureName(path), func(t *testing.T) {
			root, err := document.Parse(read(t, path))
			require.NoError(t, err)

			model, err := compiler.Compile(root)
			require.NoError(t, err)
			assert.NotEmpty(t, model.StartState)
			assert.NotEmpty(t, model.States)
		})
	}
}

// TestCorpus_Invalid rejects every definition under testdata/invalid. Each
// fixture opens with a "# want:" comment naming the expected diagnostic.
func TestCorpus_Invalid(t *testing.T) {
	for _, path := range corpus(t, "invalid") {
		t.Run(fixtureName(path), func(t *testing.T) {
			src := read(t, path)
			want := wantDiagnostic(t, src)

			root, err := document.Parse(src)
			require.NoError(t, err, "fixtures must parse; rejecting them is the compiler's job")

			_, err = compiler.Compile(root)
			require.Error(t, err)

			var docErr *document.Error
			require.ErrorAs(t, err, &docErr)
			assert.Contains(t, docErr.Msg, want)
			assert.Positive(t, docErr.Pos.Line, "diagnostic must point into the document")
		})
	}
}

func corpus(t *testing.T, dir string) []string {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join("testdata", dir, "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "corpus directory %q must not be empty", dir)
	return paths
}

func fixtureName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".yaml")
}

func read(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func wantDiagnostic(t *testing.T, src []byte) string {
	t.Helper()
	line, _, _ := strings.Cut(string(src), "\n")
	const prefix = "# want:"
	require.True(t, strings.HasPrefix(line, prefix), "fixture must open with a %q comment", prefix)
	return strings.TrimSpace(strings.TrimPrefix(line, prefix))
}
