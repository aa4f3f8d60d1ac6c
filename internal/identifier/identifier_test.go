package identifier

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var patternRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestPatternShape(t *testing.T) {
	var g Pattern
	for i := 0; i < 2000; i++ {
		id := g.Next()
		require.Len(t, id, 36)
		require.Regexp(t, patternRe, id)
		assert.Equal(t, byte('4'), id[14])
		assert.Contains(t, "89ab", string(id[19]))
	}
}

func TestPatternVariantCoversAllDigits(t *testing.T) {
	var g Pattern
	seen := map[byte]bool{}
	for i := 0; i < 2000 && len(seen) < 4; i++ {
		seen[g.Next()[19]] = true
	}
	assert.Len(t, seen, 4, "variant digit should range over 8, 9, a, b")
}

func TestPatternDiffers(t *testing.T) {
	var g Pattern
	assert.NotEqual(t, g.Next(), g.Next())
}

func TestByName(t *testing.T) {
	tests := []struct {
		format string
		check  func(t *testing.T, id string)
	}{
		{"", func(t *testing.T, id string) { assert.Regexp(t, patternRe, id) }},
		{"pattern", func(t *testing.T, id string) { assert.Regexp(t, patternRe, id) }},
		{"UUID", func(t *testing.T, id string) {
			u, err := uuid.Parse(id)
			require.NoError(t, err)
			assert.Equal(t, uuid.Version(4), u.Version())
		}},
		{"xid", func(t *testing.T, id string) {
			_, err := xid.FromString(id)
			assert.NoError(t, err)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			g, err := ByName(tt.format)
			require.NoError(t, err)
			tt.check(t, g.Next())
		})
	}
}

func TestByNameUnknown(t *testing.T) {
	_, err := ByName("snowflake")
	assert.ErrorContains(t, err, "snowflake")
}

func TestSequence(t *testing.T) {
	s := NewSequence("a", "b")
	assert.Equal(t, "a", s.Next())
	assert.Equal(t, "b", s.Next())
	assert.Equal(t, "b", s.Next())

	assert.Equal(t, "", NewSequence().Next())
	assert.Equal(t, "id-1", Fixed("id-1").Next())
	assert.Equal(t, "fn", GeneratorFunc(func() string { return "fn" }).Next())
}
