// Package identifier generates the per-request path segment appended to upload URLs.
package identifier

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/xid"
)

// Generator produces a fresh identifier on every call.
type Generator interface {
	Next() string
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func() string

// Next calls f.
func (f GeneratorFunc) Next() string { return f() }

const (
	FormatPattern = "pattern"
	FormatUUID    = "uuid"
	FormatXID     = "xid"
)

// template is the layout filled in by Pattern. 'x' is any hex digit,
// 'y' is a hex digit with its two high bits fixed to 10.
const template = "xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx"

const hexDigits = "0123456789abcdef"

// Pattern fills the version-4 layout with non-cryptographic random hex digits.
// Not suitable as a security token.
type Pattern struct{}

// Next returns a 36-character dashed hex identifier.
func (Pattern) Next() string {
	var b strings.Builder
	b.Grow(len(template))
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case 'x':
			b.WriteByte(hexDigits[rand.Intn(16)])
		case 'y':
			b.WriteByte(hexDigits[rand.Intn(16)&0x3|0x8])
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// UUID produces RFC 4122 version 4 identifiers.
type UUID struct{}

// Next returns a random UUID string.
func (UUID) Next() string {
	return uuid.NewString()
}

// XID produces 20-character sortable identifiers.
type XID struct{}

// Next returns a new xid string.
func (XID) Next() string {
	return xid.New().String()
}

// ByName resolves a generator from its configured format name.
// An empty name selects Pattern.
func ByName(format string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatPattern:
		return Pattern{}, nil
	case FormatUUID:
		return UUID{}, nil
	case FormatXID:
		return XID{}, nil
	default:
		return nil, fmt.Errorf("unknown identifier format %q (must be one of: pattern, uuid, xid)", format)
	}
}

// Fixed always returns the same identifier.
type Fixed string

// Next returns f.
func (f Fixed) Next() string { return string(f) }

// Sequence hands out the given identifiers in order, then repeats the last one.
type Sequence struct {
	mu  sync.Mutex
	ids []string
	pos int
}

// NewSequence creates a Sequence over ids.
func NewSequence(ids ...string) *Sequence {
	return &Sequence{ids: ids}
}

// Next returns the next identifier in the sequence.
func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ids) == 0 {
		return ""
	}
	id := s.ids[s.pos]
	if s.pos < len(s.ids)-1 {
		s.pos++
	}
	return id
}
