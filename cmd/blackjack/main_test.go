package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func TestParseSimFlags(t *testing.T) {
	cli, kctx := parse(t, "sim", "-n", "25", "--policy", "stand", "--seed", "9", "--tables", "#a,#b")

	assert.Equal(t, "sim", kctx.Command())
	assert.Equal(t, 25, cli.Sim.Rounds)
	assert.Equal(t, "stand", cli.Sim.Policy)
	require.NotNil(t, cli.Sim.Seed)
	assert.Equal(t, int64(9), *cli.Sim.Seed)
	assert.Equal(t, []string{"#a", "#b"}, cli.Sim.Tables)
}

func TestParsePlayDefaults(t *testing.T) {
	cli, kctx := parse(t, "play")

	assert.Equal(t, "play", kctx.Command())
	assert.Equal(t, "player", cli.Play.Player)
	assert.Nil(t, cli.Play.Seed)
	assert.Empty(t, cli.Play.Table)
}

func TestSimWritesReport(t *testing.T) {
	dir := t.TempDir()
	seed := int64(42)
	report := filepath.Join(dir, "out", "sim.json")
	var buf bytes.Buffer

	cmd := SimCmd{
		Config: filepath.Join(dir, "missing.hcl"),
		Rounds: 30,
		Tables: []string{"#a", "#b"},
		Policy: "default",
		Seed:   &seed,
		Output: report,
		Out:    &buf,
	}
	require.NoError(t, cmd.Run())
	assert.Contains(t, buf.String(), "Rounds played: 60")

	data, err := os.ReadFile(report)
	require.NoError(t, err)

	var rep struct {
		Seed   int64 `json:"seed"`
		Policy string
		Total  struct {
			Rounds int `json:"rounds"`
		} `json:"total"`
		Tables map[string]json.RawMessage `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, int64(42), rep.Seed)
	assert.Equal(t, "default", rep.Policy)
	assert.Equal(t, 60, rep.Total.Rounds)
	assert.Len(t, rep.Tables, 2)
}

func TestSimRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`log { level = "shouty" }`), 0o644))

	cmd := SimCmd{Config: path, Rounds: 1, Out: &bytes.Buffer{}}
	assert.ErrorContains(t, cmd.Run(), "invalid config")
}
