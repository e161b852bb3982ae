package commands

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/penwyp/go-kadlog/internal/core/peerid"
	"github.com/penwyp/go-kadlog/internal/testing/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMult2Kad(t *testing.T) {
	a, b := fixtures.QmID("a"), fixtures.KeyID("b")
	ka, _ := peerid.Canonicalize(a)
	kb, _ := peerid.Canonicalize(b)

	out, err := execute(t, a+"\n\n  "+b+"  \n", "mult2kad")
	require.NoError(t, err)
	assert.Equal(t, ka.String()+"\n"+kb.String()+"\n", out)
}

func TestHashes(t *testing.T) {
	a := fixtures.QmID("a")
	ka, _ := peerid.Canonicalize(a)

	out, err := execute(t, a+"\n", "hashes")
	require.NoError(t, err)
	assert.Equal(t, ka.String()+" ("+a+")\n", out)
}

func TestHexAndMultihashRoundTrip(t *testing.T) {
	sum := sha256.Sum256([]byte("digest"))
	digest := hex.EncodeToString(sum[:])

	id, err := execute(t, digest+"\n", "hex2mult")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "Qm"))

	back, err := execute(t, id, "mult2hex")
	require.NoError(t, err)
	assert.Equal(t, digest+"\n", back)
}

func TestConvertLinesStopsAtFirstError(t *testing.T) {
	var out bytes.Buffer
	err := convertLines(strings.NewReader("ab\nnot-hex\ncd\n"), &out, peerid.FromDigestHex)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}

func TestShrinkLines(t *testing.T) {
	a := fixtures.QmID("a")
	b := fixtures.KeyID("b")
	ka, _ := peerid.Canonicalize(a)
	kb, _ := peerid.Canonicalize(b)

	in := "00:00:01.000: * " + a + " says use " + b + "\n" +
		"\n" +
		"error: failed to dial " + b + ":   all dials failed\n"

	var out bytes.Buffer
	require.NoError(t, shrinkLines(strings.NewReader(in), &out, 6))

	want := "00:00:01.000: * <" + ka.Short(6) + "> says use <" + kb.Short(6) + "> \n" +
		"\n" +
		"error: failed to dial <" + kb.Short(6) + "> all dials failed \n"
	assert.Equal(t, want, out.String())
}

func TestShrinkCommandLabelLength(t *testing.T) {
	a := fixtures.QmID("a")
	ka, _ := peerid.Canonicalize(a)

	out, err := execute(t, a+"\n", "shrink", "--label-len", "12")
	require.NoError(t, err)
	assert.Equal(t, "<"+ka.Short(12)+"> \n", out)
}
