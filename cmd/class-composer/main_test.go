package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"class-composer/internal/export"
)

const goodYAML = `
metaclasses:
  - name: ABCMeta
types:
  - name: Base
    attrs: {last_name: Base Last}
  - name: Person
    items:
      - include: Base
      - metaclass: ABCMeta
    attrs: {first_name: Steve}
`

const badYAML = `
types:
  - name: Base
  - name: Person
    items: [Basee]
`

type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := filepath.Join(dir, "composer.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[output]\ncolor = \"never\"\n\n[log]\nlevel = \"error\"\n"), 0o644))

	return &testEnv{dir: dir, config: cfg}
}

func (e *testEnv) file(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func (e *testEnv) run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer

	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", e.config}, args...))

	err := root.Execute()

	return stdout.String(), stderr.String(), err
}

func TestResolveCmd(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	path := env.file(t, "good.yaml", goodYAML)

	stdout, stderr, err := env.run("resolve", "-f", "json", path)
	require.NoError(t, err, stderr)

	doc, err := export.Unmarshal([]byte(stdout), export.FormatJSON)
	require.NoError(t, err)
	require.Len(t, doc.Types, 2)

	person := doc.Types[1]
	assert.Equal(t, "Person", person.Binding)
	assert.Equal(t, "ABCMeta", person.Meta)
	assert.Equal(t, []string{"Person", "object"}, person.MRO)
}

func TestResolveCmd_WritesFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	path := env.file(t, "good.yaml", goodYAML)
	out := filepath.Join(env.dir, "types.mp")

	stdout, _, err := env.run("resolve", "-f", "msgpack", "-o", out, path)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	doc, err := export.Unmarshal(data, export.FormatMsgpack)
	require.NoError(t, err)
	assert.Len(t, doc.Types, 2)
}

func TestResolveCmd_ReportsDiagnostics(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	path := env.file(t, "bad.yaml", badYAML)

	_, stderr, err := env.run("resolve", path)
	require.ErrorIs(t, err, errDeclarationsFailed)
	assert.Contains(t, stderr, "unknown_type")
	assert.Contains(t, stderr, "did you mean Base?")

	_, _, err = env.run("resolve", "--strict", path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errDeclarationsFailed)
}

func TestCheckCmd(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	good := env.file(t, "good.yaml", goodYAML)
	bad := env.file(t, "bad.yaml", badYAML)
	missing := filepath.Join(env.dir, "missing.yaml")

	stdout, _, err := env.run("check", "-j", "2", good, bad, missing)
	require.ErrorIs(t, err, errDeclarationsFailed)

	assert.Contains(t, stdout, bad+": error: [Person] items[0]: [unknown_type]")
	assert.Contains(t, stdout, missing+": error: [load_failed]")
	assert.NotContains(t, stdout, good+":")
	assert.Contains(t, stdout, "failed: 3 file(s), 2 error(s), 0 warning(s)")

	stdout, _, err = env.run("check", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "ok: 1 file(s), 0 error(s), 0 warning(s)")
}

func TestInspectCmd(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	stdout, _, err := env.run("inspect", "-f", "json", "class-composer/fixtures/zoo")
	require.NoError(t, err)

	doc, err := export.Unmarshal([]byte(stdout), export.FormatJSON)
	require.NoError(t, err)

	var bindings []string
	for _, v := range doc.Types {
		bindings = append(bindings, v.Binding)
	}

	assert.Contains(t, bindings, "zoo.Duck")

	stdout, _, err = env.run("inspect", "--raw", "class-composer/fixtures/zoo")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Binding: (string) (len=8) \"zoo.Duck\"")
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	stdout, _, err := env.run("version", "--format", "json")
	require.NoError(t, err)

	var payload versionPayload
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, "class-composer", payload.Tool)
	assert.Equal(t, Version, payload.Version)

	_, _, err = env.run("version", "--format", "xml")
	require.Error(t, err)
}

func TestBadConfigFails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.config, []byte("[output]\ncolor = \"sometimes\"\n"), 0o644))

	_, _, err := env.run("version")
	require.Error(t, err)
}
