package fixtures

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multihash"
	"github.com/penwyp/go-kadlog/internal/core/peerid"
)

// QmID returns a deterministic sha2-256 multihash peer identifier (Qm...) for seed.
func QmID(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	id, err := peerid.FromDigestHex(hex.EncodeToString(sum[:]))
	if err != nil {
		panic(err)
	}
	return id
}

// KeyID returns a deterministic identity multihash peer identifier
// (12D3KooW...) wrapping a protobuf-encoded ed25519 public key derived from seed.
func KeyID(seed string) string {
	pub := sha256.Sum256([]byte(seed))
	// protobuf PublicKey{Type: Ed25519, Data: pub}
	key := append([]byte{0x08, 0x01, 0x12, 0x20}, pub[:]...)
	mh, err := multihash.Encode(key, multihash.IDENTITY)
	if err != nil {
		panic(err)
	}
	return base58.Encode(mh)
}

// LookupLog builds a DHT lookup log line by line.
type LookupLog struct {
	lines []string
}

// NewLookupLog creates an empty log
func NewLookupLog() *LookupLog {
	return &LookupLog{}
}

func (l *LookupLog) Querying(ts, id string) *LookupLog {
	return l.Raw(fmt.Sprintf("%s: * querying %s", ts, id))
}

func (l *LookupLog) Dialing(ts, id string) *LookupLog {
	return l.Raw(fmt.Sprintf("%s: dialing peer: %s", ts, id))
}

func (l *LookupLog) SaysUse(ts, id string, closer ...string) *LookupLog {
	line := fmt.Sprintf("%s: * %s says use", ts, id)
	for _, c := range closer {
		line += " " + c
	}
	return l.Raw(line)
}

func (l *LookupLog) DialFailed(ts, id string) *LookupLog {
	return l.Raw(fmt.Sprintf("%s: error: failed to dial %s: all dials failed", ts, id))
}

func (l *LookupLog) ContextCanceled(ts string) *LookupLog {
	return l.Raw(fmt.Sprintf("%s: error: context canceled", ts))
}

func (l *LookupLog) Target(ts, id string) *LookupLog {
	return l.Raw(fmt.Sprintf("%s: %s", ts, id))
}

// Raw appends a line verbatim
func (l *LookupLog) Raw(line string) *LookupLog {
	l.lines = append(l.lines, line)
	return l
}

func (l *LookupLog) String() string {
	return strings.Join(l.lines, "\n") + "\n"
}

// WriteFile writes the log to dir/name and returns the full path.
func (l *LookupLog) WriteFile(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(l.String()), 0644); err != nil {
		return "", err
	}
	return path, nil
}
