package sources_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/records"
	"github.com/agentstation/apidrift/pkg/sources"
)

// lineSource emits one symbol per non-empty line.
type lineSource struct {
	lang sources.Language
	exts []string
}

func (s lineSource) Language() sources.Language { return s.lang }
func (s lineSource) Extensions() []string       { return s.exts }

func (s lineSource) Symbols(_ context.Context, path string, content []byte) ([]records.RawCodeSymbol, error) {
	if strings.Contains(string(content), "syntax error") {
		return nil, stderrors.New("parse failed")
	}
	var out []records.RawCodeSymbol
	for i, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		out = append(out, records.RawCodeSymbol{QualifiedName: line, FilePath: path, Line: i + 1})
	}
	return out, nil
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRegistry(t *testing.T) {
	goSrc := lineSource{lang: sources.LanguageGo, exts: []string{".go"}}
	pySrc := lineSource{lang: sources.LanguagePython, exts: []string{".py", ".pyi"}}
	reg := sources.NewRegistry(pySrc, goSrc)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []sources.Language{sources.LanguageGo, sources.LanguagePython}, reg.Languages())

	src, ok := reg.ForPath("pkg/node.PYI")
	require.True(t, ok)
	assert.Equal(t, sources.LanguagePython, src.Language())

	_, ok = reg.ForPath("README")
	assert.False(t, ok)

	reg.Delete(sources.LanguagePython)
	_, ok = reg.Get(sources.LanguagePython)
	assert.False(t, ok)

	assert.True(t, sources.LanguageGo.IsValid())
	assert.False(t, sources.Language("cobol").IsValid())
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "b.py"), "Node.b")
	write(t, filepath.Join(root, "a.go"), "pkg.A\npkg.B")
	write(t, filepath.Join(root, "bad.go"), "syntax error")
	write(t, filepath.Join(root, "notes.txt"), "ignored")
	write(t, filepath.Join(root, "vendor", "v.go"), "vendored.V")
	write(t, filepath.Join(root, ".hidden", "h.go"), "hidden.H")

	reg := sources.NewRegistry(
		lineSource{lang: sources.LanguageGo, exts: []string{".go"}},
		lineSource{lang: sources.LanguagePython, exts: []string{".py"}},
	)
	files, err := sources.Walk(context.Background(), reg, root, 2)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, "pkg.A", files[0][0].QualifiedName)
	assert.Equal(t, "a.go", files[0][0].FilePath)
	assert.Equal(t, 2, files[0][1].Line)
	assert.Nil(t, files[1])
	assert.Equal(t, "Node.b", files[2][0].QualifiedName)

	single, err := sources.Walk(context.Background(), reg, filepath.Join(root, "b.py"), 0)
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, "b.py", single[0][0].FilePath)

	_, err = sources.Walk(context.Background(), reg, filepath.Join(root, "notes.txt"), 1)
	assert.True(t, errors.IsUnsupportedFormat(err))

	_, err = sources.Walk(context.Background(), reg, filepath.Join(root, "missing"), 1)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sources.Walk(ctx, reg, root, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
