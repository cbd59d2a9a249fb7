package syntax

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript creates an executable shell script standing in for an external parser.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "parser.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestNewCommand(t *testing.T) {
	cmd, err := NewCommand(`node "my parser.js" --json`)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"node", "my parser.js", "--json", "--source-type", "tsx", "--filename", "a.tsx"},
		cmd.Argv("a.tsx", SourceTSX),
	)

	_, err = NewCommand("   ")
	require.Error(t, err)

	_, err = NewCommand(`node "unterminated`)
	require.Error(t, err)
}

func TestCommandParse(t *testing.T) {
	script := writeScript(t, `cat >/dev/null
echo '{"program": {"type": "Program", "body": [{"type": "ExportDefaultDeclaration", "declaration": {"type": "Identifier", "name": "schema"}}]}}'`)

	cmd, err := NewCommand(script)
	require.NoError(t, err)

	f, err := cmd.Parse("schema.ts", []byte("export default schema"), SourceTS)
	require.NoError(t, err)
	assert.Equal(t, "schema", DefaultExport(f).(*Identifier).Name)
}

func TestCommandParseDiagnostics(t *testing.T) {
	script := writeScript(t, `cat >/dev/null
echo '{"errors": [{"message": "Expected a semicolon", "start": 2}]}'
exit 1`)

	cmd, err := NewCommand(script)
	require.NoError(t, err)

	_, err = cmd.Parse("a.ts", []byte("a b"), SourceTS)
	var errs SyntaxErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "Expected a semicolon", errs.First().Message)
	assert.Equal(t, 3, errs.First().Pos.Column)
}

func TestCommandParseFailure(t *testing.T) {
	script := writeScript(t, `echo "boom" >&2
exit 3`)

	cmd, err := NewCommand(script)
	require.NoError(t, err)

	_, err = cmd.Parse("a.ts", nil, SourceTS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestCommandParseTimeout(t *testing.T) {
	script := writeScript(t, `sleep 5`)

	cmd, err := NewCommand(script)
	require.NoError(t, err)

	_, err = cmd.WithTimeout(50*time.Millisecond).Parse("a.ts", nil, SourceTS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}
