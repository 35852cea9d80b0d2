package manager

import (
	"go.uber.org/zap"

	"github.com/wombatlabs/picomgr"
	"github.com/wombatlabs/picomgr/errors"
)

// Manager tracks registered PICO modules and owns the shared executable
// region their code sections are packed into.
//
// The registry is a caller-supplied fixed-capacity array; the manager never
// reallocates it. Entry identifiers are always exactly the entries' positions
// in the array: removal shifts subsequent entries left and renumbers them,
// so callers can enumerate 0..Count() with no tombstone checks.
type Manager struct {
	loader   picomgr.Loader
	provider picomgr.Provider
	entries  []Entry
	count    int
	padding  int

	region     []byte
	regionSize int
	usedSize   int
}

// Option configures a Manager.
type Option func(*Manager)

// WithPadding sets the padding inserted between consecutively packed code
// sections in the shared region.
func WithPadding(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.padding = n
		}
	}
}

// New creates a manager over the given backing array. The array's length is
// the registry capacity. The loader interprets vault buffers; the provider
// supplies the shared region and per-entry data blocks.
func New(loader picomgr.Loader, provider picomgr.Provider, entries []Entry, opts ...Option) *Manager {
	m := &Manager{
		loader:   loader,
		provider: provider,
		entries:  entries,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Count returns the number of registered entries.
func (m *Manager) Count() int {
	return m.count
}

// Capacity returns the maximum number of entries the registry can hold.
func (m *Manager) Capacity() int {
	return len(m.entries)
}

// Padding returns the configured inter-module padding.
func (m *Manager) Padding() int {
	return m.padding
}

// Region returns the shared region block, or nil if none is allocated.
func (m *Manager) Region() []byte {
	return m.region
}

// RegionSize returns the total size of the shared region.
func (m *Manager) RegionSize() int {
	return m.regionSize
}

// UsedSize returns the extent of the shared region consumed by placements.
func (m *Manager) UsedSize() int {
	return m.usedSize
}

// Add registers a module without loading it. The name is truncated to NameMax
// bytes; code and data sizes are queried from the vault now so the region can
// be sized before any loading occurs. Fails if the registry is full or the
// name or vault is absent.
func (m *Manager) Add(name string, vault []byte) error {
	if m.loader == nil || m.provider == nil {
		return errors.InvalidInput(errors.PhaseRegister, "manager has no loader or provider")
	}
	if name == "" {
		return errors.InvalidInput(errors.PhaseRegister, "empty module name")
	}
	if len(vault) == 0 {
		return errors.InvalidInput(errors.PhaseRegister, "empty vault")
	}
	if m.count >= len(m.entries) {
		return errors.Capacity(errors.PhaseRegister, "registry full (%d entries)", len(m.entries))
	}

	codeSize, err := m.loader.CodeSize(vault)
	if err != nil {
		return errors.Wrap(errors.PhaseRegister, errors.KindInvalidData, err, "query code size")
	}
	dataSize, err := m.loader.DataSize(vault)
	if err != nil {
		return errors.Wrap(errors.PhaseRegister, errors.KindInvalidData, err, "query data size")
	}

	m.entries[m.count] = Entry{
		ID:       m.count,
		Name:     truncateName(name),
		CodeSize: codeSize,
		DataSize: dataSize,
		Vault:    vault,
	}
	m.count++

	Logger().Debug("registered module",
		zap.Int("id", m.count-1),
		zap.String("name", truncateName(name)),
		zap.Int("codeSize", codeSize),
		zap.Int("dataSize", dataSize))
	return nil
}

// ByID returns the entry with the given identifier.
func (m *Manager) ByID(id int) (*Entry, bool) {
	if id < 0 || id >= m.count {
		return nil, false
	}
	return &m.entries[id], true
}

// ByName returns the first entry whose name matches under exact, full-length
// comparison. A name that is a prefix of another never matches. The query is
// truncated to NameMax bytes, mirroring the truncation applied at Add time.
func (m *Manager) ByName(name string) (*Entry, bool) {
	if name == "" {
		return nil, false
	}
	q := truncateName(name)
	for i := 0; i < m.count; i++ {
		if m.entries[i].Name == q {
			return &m.entries[i], true
		}
	}
	return nil, false
}

// RemoveByID removes the entry with the given identifier. The entry's data
// block is released; its code placement stays in the shared region (code is
// reclaimed only when the region is destroyed) and its vault stays with the
// caller. Subsequent entries shift one position left and are renumbered so
// identifiers remain dense.
func (m *Manager) RemoveByID(id int) error {
	if id < 0 || id >= m.count {
		return errors.New(errors.PhaseRegister, errors.KindNotFound).
			Detail("entry %d not found (count %d)", id, m.count).Build()
	}

	e := &m.entries[id]
	if e.Data != nil {
		if err := m.provider.Release(e.Data); err != nil {
			Logger().Warn("release data block failed",
				zap.Int("id", id), zap.String("name", e.Name), zap.Error(err))
		}
		e.Data = nil
	}

	Logger().Debug("removing module", zap.Int("id", id), zap.String("name", e.Name))

	for i := id; i < m.count-1; i++ {
		m.entries[i] = m.entries[i+1]
		m.entries[i].ID = i
	}
	m.entries[m.count-1] = Entry{}
	m.count--
	return nil
}

// RemoveByName resolves the entry by name, then removes it by identifier.
func (m *Manager) RemoveByName(name string) error {
	e, ok := m.ByName(name)
	if !ok {
		return errors.NotFound(errors.PhaseRegister, "entry", name)
	}
	return m.RemoveByID(e.ID)
}

// TotalCodeSize returns the bytes needed to pack every registered module's
// code section: the sum of code sizes plus inter-module padding for each
// adjacent pair, with no trailing padding. It only uses sizes captured at
// Add time, so it is valid before any region exists.
func (m *Manager) TotalCodeSize() int {
	total := 0
	eligible := 0
	for i := 0; i < m.count; i++ {
		if m.entries[i].Vault == nil {
			continue
		}
		total += m.entries[i].CodeSize
		eligible++
	}
	if eligible > 1 {
		total += m.padding * (eligible - 1)
	}
	return total
}
