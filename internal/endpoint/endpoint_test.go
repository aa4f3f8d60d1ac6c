package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radif/uploader/internal/identifier"
)

func TestBuildWithFixedIdentifier(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "default",
			cfg:  Default(),
			want: "http://localhost:3000/backend/upload/abc",
		},
		{
			name: "api prefix without trailing slash",
			cfg:  Config{Host: "example.com", Port: 8080, PathPrefix: "/api/vi"},
			want: "http://example.com:8080/api/vi/abc",
		},
		{
			name: "backend prefix, https",
			cfg:  Config{Scheme: "https", Host: "10.0.0.1", Port: 443, PathPrefix: "backend/"},
			want: "https://10.0.0.1:443/backend/abc",
		},
		{
			name: "empty prefix",
			cfg:  Config{Host: "localhost", Port: 3000},
			want: "http://localhost:3000/abc",
		},
		{
			name: "ipv6 host",
			cfg:  Config{Host: "::1", Port: 3000, PathPrefix: "/backend/"},
			want: "http://[::1]:3000/backend/abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuilder(tt.cfg, identifier.Fixed("abc"))
			require.NoError(t, err)

			url, id := b.Build()
			assert.Equal(t, tt.want, url)
			assert.Equal(t, "abc", id)
		})
	}
}

func TestBuildDrawsFreshIdentifier(t *testing.T) {
	b, err := NewBuilder(Default(), nil)
	require.NoError(t, err)

	first, firstID := b.Build()
	second, secondID := b.Build()
	assert.NotEqual(t, first, second)
	assert.NotEqual(t, firstID, secondID)
	assert.Equal(t, b.Base()+firstID, first)
}

func TestBuildUsesInjectedSequence(t *testing.T) {
	b, err := NewBuilder(Default(), identifier.NewSequence("one", "two"))
	require.NoError(t, err)

	url, _ := b.Build()
	assert.Equal(t, "http://localhost:3000/backend/upload/one", url)
	url, _ = b.Build()
	assert.Equal(t, "http://localhost:3000/backend/upload/two", url)
}

func TestNewBuilderRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty host", Config{Port: 3000}},
		{"zero port", Config{Host: "localhost"}},
		{"port too large", Config{Host: "localhost", Port: 70000}},
		{"ftp scheme", Config{Scheme: "ftp", Host: "localhost", Port: 21}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder(tt.cfg, nil)
			assert.ErrorContains(t, err, "invalid endpoint config")
		})
	}
}
