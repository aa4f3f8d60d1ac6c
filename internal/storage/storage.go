// Package storage defines where received uploads are kept.
// The test receiver injects a Memory store; the interface leaves room for
// other implementations behind the same calls.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

// Object is a stored upload.
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// Storage is the interface for storing and retrieving uploaded objects.
type Storage interface {
	// Put stores the content of reader under key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Get returns the object stored under key.
	Get(ctx context.Context, key string) (*Object, error)
	// PublicURL constructs the URL under which key is served.
	PublicURL(key string) string
}

// Memory keeps objects in a map. Safe for concurrent use.
type Memory struct {
	mu         sync.RWMutex
	objects    map[string]*Object
	publicBase string
}

// NewMemory creates an empty store whose PublicURL is publicBase + "/" + key.
func NewMemory(publicBase string) *Memory {
	return &Memory{
		objects:    make(map[string]*Object),
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// Put copies reader into memory under key, replacing any previous object.
func (m *Memory) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = &Object{Key: key, ContentType: contentType, Data: buf.Bytes()}
	return nil
}

// Get returns a copy of the object stored under key.
func (m *Memory) Get(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("get object %q: %w", key, ErrNotFound)
	}
	cp := *obj
	cp.Data = bytes.Clone(obj.Data)
	return &cp, nil
}

// Keys lists stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PublicURL returns the URL for the given key.
func (m *Memory) PublicURL(key string) string {
	return m.publicBase + "/" + key
}
