// Package dataurl converts binary content to and from base64 data URLs.
package dataurl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMIME is used when neither the content nor the name identify a type.
const DefaultMIME = "application/octet-stream"

const (
	scheme = "data:"
	marker = ";base64,"
)

// ErrMalformed is returned by Decode for strings that are not base64 data URLs.
var ErrMalformed = errors.New("malformed data URL")

// Encode reads r to the end and returns "data:<mime>;base64,<payload>".
// The MIME type is sniffed from the content, falling back to name's extension.
func Encode(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return EncodeBytes(name, data), nil
}

// EncodeBytes is Encode for content already in memory.
func EncodeBytes(name string, data []byte) string {
	var b strings.Builder
	mt := DetectMIME(name, data)
	b.Grow(len(scheme) + len(mt) + len(marker) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(scheme)
	b.WriteString(mt)
	b.WriteString(marker)
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// DetectMIME returns the bare media type (no parameters) for data.
func DetectMIME(name string, data []byte) string {
	if len(data) > 0 {
		if mt := stripParams(mimetype.Detect(data).String()); mt != DefaultMIME {
			return mt
		}
	}
	if ext := filepath.Ext(name); ext != "" {
		if mt := stripParams(mime.TypeByExtension(ext)); mt != "" {
			return mt
		}
	}
	return DefaultMIME
}

// Decode splits a base64 data URL into its media type and decoded bytes.
func Decode(s string) (string, []byte, error) {
	if !strings.HasPrefix(s, scheme) {
		return "", nil, fmt.Errorf("%w: missing %q prefix", ErrMalformed, scheme)
	}
	header, payload, ok := strings.Cut(s[len(scheme):], marker)
	if !ok {
		return "", nil, fmt.Errorf("%w: missing %q marker", ErrMalformed, marker)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return header, data, nil
}

func stripParams(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}
