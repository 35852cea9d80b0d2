package provider

import (
	"errors"
	"fmt"
	"sync"

	"github.com/wombatlabs/picomgr"
)

var (
	ErrNegativeSize = errors.New("provider: negative block size")
	ErrUnknownBlock = errors.New("provider: unknown or already released block")
)

// Heap is an in-process Provider backed by ordinary Go allocation. It hands
// out distinct byte blocks and tracks them by base address until released.
//
// Protection is recorded but not enforced: Go memory is never executable,
// so Heap is suited to in-process managers, tests, and tooling rather than
// to actually running native module code. Implement picomgr.Provider over an
// OS pager for that.
//
// Heap is safe for use by multiple managers concurrently.
type Heap struct {
	mu     sync.RWMutex
	blocks map[*byte]blockInfo
}

type blockInfo struct {
	size int
	prot picomgr.Protection
}

// NewHeap creates an empty heap provider.
func NewHeap() *Heap {
	return &Heap{
		blocks: make(map[*byte]blockInfo, 16),
	}
}

// Commit reserves a zeroed block of the given size. Zero-size commits return
// an empty, non-nil block that carries no backing store and needs no release.
func (h *Heap) Commit(size int, prot picomgr.Protection) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeSize, size)
	}
	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)

	h.mu.Lock()
	h.blocks[&buf[0]] = blockInfo{size: size, prot: prot}
	h.mu.Unlock()

	return buf, nil
}

// Release returns a block obtained from Commit. Nil and empty blocks are
// no-ops. Releasing a block twice, or a slice that is not a committed block,
// is an error.
func (h *Heap) Release(block []byte) error {
	if len(block) == 0 {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	key := &block[0]
	if _, ok := h.blocks[key]; !ok {
		return ErrUnknownBlock
	}
	delete(h.blocks, key)
	return nil
}

// Live returns the number of committed blocks not yet released.
func (h *Heap) Live() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.blocks)
}

// LiveBytes returns the total size of committed blocks not yet released.
func (h *Heap) LiveBytes() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, b := range h.blocks {
		total += b.size
	}
	return total
}

// Protection reports the protection a live block was committed with.
func (h *Heap) Protection(block []byte) (picomgr.Protection, bool) {
	if len(block) == 0 {
		return 0, false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	b, ok := h.blocks[&block[0]]
	if !ok {
		return 0, false
	}
	return b.prot, true
}
