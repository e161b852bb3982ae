package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefaults(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Params{DataPath: "/tmp/lookup.tsv", NumPeers: 4})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "set terminal svg size 1200,800\n")
	assert.Contains(t, out, `set output "/tmp/lookup.svg"`)
	assert.Contains(t, out, `set title "DHT lookup"`)
	assert.Contains(t, out, "set yrange [0:5]")
	assert.Contains(t, out, `data = "/tmp/lookup.tsv"`)
	for _, idx := range []string{"index 0", "index 1", "index 2", "index 3"} {
		assert.Contains(t, out, "data "+idx)
	}
}

func TestWriteCustom(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Params{
		DataPath:   "run.tsv",
		OutputPath: "run.png",
		Terminal:   "pngcairo",
		Title:      "lookup 42",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "set terminal pngcairo\n")
	assert.Contains(t, out, `set output "run.png"`)
	assert.Contains(t, out, `set title "lookup 42"`)
	assert.Contains(t, out, "set yrange [0:1]")
}

func TestWriteRequiresDataPath(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, Params{}))
	assert.Zero(t, buf.Len())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookup.gp")
	require.NoError(t, WriteFile(path, Params{DataPath: "lookup.tsv", NumPeers: 2}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "set yrange [0:3]")
}

func TestWriteFileBadPath(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "lookup.gp"), Params{DataPath: "x"})
	assert.Error(t, err)
}
