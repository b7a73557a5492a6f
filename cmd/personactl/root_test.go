package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-service/internal/models"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	root := newRootCmd()

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "missing.yml"),
		"--files-dir", dir,
		"--sample",
		"--log-level", "error",
	}, args...))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestNormalize(t *testing.T) {
	out, err := execute(t, "", "normalize", "C-1", "C001")
	require.NoError(t, err)
	assert.Equal(t, "C-1\tC001\nC001\tC001\n", out)
}

func TestPersonas(t *testing.T) {
	out, err := execute(t, "", "personas")
	require.NoError(t, err)

	var personas []models.ScammerProfile
	require.NoError(t, json.Unmarshal([]byte(out), &personas))
	assert.NotEmpty(t, personas)
}

func TestPersona(t *testing.T) {
	out, err := execute(t, "", "persona", "C000")
	require.NoError(t, err)

	var p models.ScammerProfile
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "Barrister James Okoro", p.Name)

	_, err = execute(t, "", "persona", "C999")
	assert.Error(t, err)
}

func TestAnalyzeFromStdin(t *testing.T) {
	out, err := execute(t, `[{"sender":"scammer","text":"URGENT act now immediately"}]`, "analyze")
	require.NoError(t, err)

	var a models.ConversationAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, 32, a.Scores.UrgencyScore)

	_, err = execute(t, "not json", "analyze")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	out, err := execute(t, "", "classify", "--keywords", "job,salary")
	require.NoError(t, err)
	assert.Equal(t, "Job Scam\n", out)
}

func TestAskHelp(t *testing.T) {
	out, err := execute(t, "", "ask", "hello there")
	require.NoError(t, err)
	assert.Contains(t, out, "Try asking")
}

func TestArgsValidation(t *testing.T) {
	_, err := execute(t, "", "persona")
	assert.Error(t, err)
}
