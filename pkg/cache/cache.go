// Package cache stores rendered Liberty text between runs. Cell fragments
// rarely change, so re-rendering a whole library is mostly repeated work;
// entries are keyed by fragment content hashes and render options, never
// by paths or timestamps.
package cache

import (
	"context"
	"time"
)

// Default TTLs. Cell entries are content-addressed and could live forever;
// the expirations keep abandoned corners from accumulating in shared
// backends.
const (
	DefaultCellTTL     = 30 * 24 * time.Hour
	DefaultDocumentTTL = 24 * time.Hour
)

// Cache is the storage backend for rendered text.
type Cache interface {
	// Get returns the data stored under key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any backend resources.
	Close() error
}

// RenderKeyOpts distinguishes renders of the same fragment bytes. Input
// and Output are characterization variant names; Version ties entries to
// the serializer release that produced them, so an upgrade never reuses
// stale layouts.
type RenderKeyOpts struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	Version string `json:"version"`
}

// DocumentKeyOpts identifies an assembled corner document. The content
// hash passed alongside covers every input fragment, so the options only
// need to say what was rendered, not when.
type DocumentKeyOpts struct {
	Library string `json:"library"`
	Corner  string `json:"corner"`
	Input   string `json:"input"`
	Output  string `json:"output"`
	Version string `json:"version"`
}

// Keyer builds cache keys. Implementations have to be deterministic:
// equal inputs produce equal keys across processes and machines.
type Keyer interface {
	// CellKey identifies one cell fragment rendered with the given options.
	CellKey(contentHash string, opts RenderKeyOpts) string

	// DocumentKey identifies a fully assembled corner document by the
	// combined hash of its input fragments.
	DocumentKey(contentHash string, opts DocumentKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// CellKey generates a key for one rendered cell group.
func (k *DefaultKeyer) CellKey(contentHash string, opts RenderKeyOpts) string {
	return hashKey("cell", contentHash, opts)
}

// DocumentKey generates a key for an assembled corner document.
func (k *DefaultKeyer) DocumentKey(contentHash string, opts DocumentKeyOpts) string {
	return hashKey("doc", contentHash, opts)
}
