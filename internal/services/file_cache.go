package services

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/deploymenttheory/go-a2fs/internal/types"
	"github.com/dgryski/go-tinylfu"
)

// fileKey identifies a resolved file by the image it came from and the
// byte offset of its directory entry
type fileKey struct {
	image  uint64
	offset int
}

func hashFileKey(k fileKey) uint64 {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:], k.image)
	binary.LittleEndian.PutUint64(b[8:], uint64(k.offset))
	return xxhash.Sum64(b[:])
}

// fileCache keeps recently resolved files. A nil cache never hits.
type fileCache struct {
	mu          sync.Mutex
	fingerprint uint64
	lfu         *tinylfu.T[fileKey, *types.ResolvedFile]

	hits   int64
	misses int64
}

func newFileCache(size int, fingerprint uint64) *fileCache {
	if size <= 0 {
		return nil
	}
	return &fileCache{
		fingerprint: fingerprint,
		lfu:         tinylfu.New[fileKey, *types.ResolvedFile](size, size*10, hashFileKey),
	}
}

func (c *fileCache) get(offset int) (*types.ResolvedFile, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.lfu.Get(fileKey{c.fingerprint, offset})
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return f, ok
}

func (c *fileCache) add(offset int, f *types.ResolvedFile) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lfu.Add(fileKey{c.fingerprint, offset}, f)
}

// stats returns the hit and miss counts
func (c *fileCache) stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
