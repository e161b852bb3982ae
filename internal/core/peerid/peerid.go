package peerid

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multihash"
)

// KeyLength is the size of a Kademlia ID in bytes (SHA-256 digest).
const KeyLength = sha256.Size

// DefaultLabelLength is the number of hex characters used for short peer labels.
const DefaultLabelLength = 6

// ErrInvalidIdentifier is returned when an identifier cannot be base-58 decoded.
var ErrInvalidIdentifier = errors.New("invalid peer identifier")

// Pattern matches the two identifier shapes seen in lookup logs:
// sha2-256 multihashes (Qm...) and identity multihashes of ed25519 keys (12D3KooW...).
const Pattern = `(Qm\w{44}|12D3KooW\w{44})`

var identifierRe = regexp.MustCompile(`^` + Pattern + `$`)

// Key is the Kademlia ID of a peer: the SHA-256 digest of its raw multihash bytes.
type Key [KeyLength]byte

// String hex-encodes the key
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Short returns the first n hex characters of the key, used as a display label.
func (k Key) Short(n int) string {
	s := k.String()
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[:n]
}

// IsIdentifier reports whether s has the shape of a peer identifier.
func IsIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// Canonicalize converts a base-58 peer identifier to its Kademlia ID.
func Canonicalize(id string) (Key, error) {
	raw, err := decode(id)
	if err != nil {
		return Key{}, err
	}
	return sha256.Sum256(raw), nil
}

// DigestHex returns the multihash digest carried by id, hex-encoded,
// i.e. the raw bytes after the code/length prefix.
func DigestHex(id string) (string, error) {
	raw, err := decode(id)
	if err != nil {
		return "", err
	}
	decoded, err := multihash.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a multihash: %v", ErrInvalidIdentifier, id, err)
	}
	return hex.EncodeToString(decoded.Digest), nil
}

// FromDigestHex builds a sha2-256 multihash identifier from a hex digest,
// left-padding the digest with zeros to 32 bytes.
func FromDigestHex(h string) (string, error) {
	digest, err := hex.DecodeString(strings.TrimSpace(h))
	if err != nil {
		return "", fmt.Errorf("invalid hex digest %q: %w", h, err)
	}
	if len(digest) > KeyLength {
		return "", fmt.Errorf("hex digest %q is %d bytes, at most %d allowed", h, len(digest), KeyLength)
	}

	padded := make([]byte, KeyLength)
	copy(padded[KeyLength-len(digest):], digest)

	mh, err := multihash.Encode(padded, multihash.SHA2_256)
	if err != nil {
		return "", fmt.Errorf("failed to encode multihash: %w", err)
	}
	return base58.Encode(mh), nil
}

// ShortenToken replaces an identifier-looking word with <label>, where label is
// the first n hex characters of its Kademlia ID. A single trailing colon is
// dropped. Other words, and words that fail to decode, are returned unchanged.
func ShortenToken(word string, n int) string {
	if !strings.HasPrefix(word, "Qm") && !strings.HasPrefix(word, "12D3Koo") {
		return word
	}
	key, err := Canonicalize(strings.TrimSuffix(word, ":"))
	if err != nil {
		return word
	}
	return "<" + key.Short(n) + ">"
}

func decode(id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidIdentifier)
	}
	raw, err := base58.Decode(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidIdentifier, id, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %q decodes to no bytes", ErrInvalidIdentifier, id)
	}
	return raw, nil
}
