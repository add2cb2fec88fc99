package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = `
description: cli scenario
sort: rank
state:
  - {id: b, rank: 2}
operations:
  - op: addOne
    records:
      - {id: a, rank: 1}
  - op: addOne
    records:
      - {id: a, rank: 1}
  - op: addOne
    records:
      - {rank: 3}
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(strings.NewReader(""), &stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))
	return path
}

func TestReplay(t *testing.T) {
	stdout, stderr, err := execute(t, "replay", writeScenario(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 6)
	assert.Regexp(t, `^0\s+addOne\s+Both\s+\[a b\]$`, lines[1])
	assert.Regexp(t, `^1\s+addOne\s+NoChange\s+\[a b\]$`, lines[2])
	assert.Regexp(t, `^2\s+addOne\s+NoChange\s+\[a b\]$`, lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "fingerprint bafy"), lines[4])
	assert.Regexp(t, `^blocks [1-9][0-9]*$`, lines[5])
	assert.Contains(t, stderr, "entity usage error")
}

func TestReplayFingerprintStable(t *testing.T) {
	path := writeScenario(t)
	first, _, err := execute(t, "replay", path)
	require.NoError(t, err)
	second, _, err := execute(t, "replay", path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReplayJSON(t *testing.T) {
	stdout, _, err := execute(t, "replay", "--json", writeScenario(t))
	require.NoError(t, err)
	assert.Contains(t, stdout, `{"entities":{"a":{"id":"a","rank":1},"b":{"id":"b","rank":2}},"ids":["a","b"]}`)
}

func TestReplayEmbedded(t *testing.T) {
	stdout, _, err := execute(t, "replay", "--embedded", "cases/merge_insert.yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[a b c d e]")
}

func TestReplayMissingFile(t *testing.T) {
	_, _, err := execute(t, "replay", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCases(t *testing.T) {
	stdout, _, err := execute(t, "cases")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cases/rekey.yaml")
	assert.Contains(t, stdout, "sorted merge insert keeps records ordered")
}
