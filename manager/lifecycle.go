package manager

import (
	"go.uber.org/zap"

	"github.com/wombatlabs/picomgr/errors"
)

// Duplicate creates a fresh manager over dst holding the same modules as m,
// unloaded. Vault references are shared with the source (vaults are
// caller-owned, so this is cheap); sizes are re-queried through the loader
// rather than copied. A new shared region is allocated for the copy, sized
// with one inter-module padding per source entry as spare room for the load
// phase that follows. The source manager is not mutated.
//
// Returns the new manager and the base of its region. The usual pattern:
// when a region proves too small, duplicate into a larger one, re-run phased
// loading on the copy, transfer control, then Close the old manager.
func (m *Manager) Duplicate(dst []Entry) (*Manager, []byte, error) {
	if m.loader == nil || m.provider == nil {
		return nil, nil, errors.InvalidInput(errors.PhaseLifecycle, "manager has no loader or provider")
	}
	if dst == nil {
		return nil, nil, errors.InvalidInput(errors.PhaseLifecycle, "no backing storage for duplicate")
	}

	nm := New(m.loader, m.provider, dst, WithPadding(m.padding))

	for i := 0; i < m.count; i++ {
		e := &m.entries[i]
		if e.Vault == nil {
			continue
		}
		if err := nm.Add(e.Name, e.Vault); err != nil {
			return nil, nil, errors.Wrap(errors.PhaseLifecycle, errors.KindCapacity, err,
				"re-add "+e.Name)
		}
	}

	if err := nm.AllocRegion(m.count * m.padding); err != nil {
		return nil, nil, err
	}

	Logger().Debug("duplicated manager",
		zap.Int("entries", nm.count),
		zap.Int("regionSize", nm.regionSize))
	return nm, nm.region, nil
}

// Close destroys the manager: the shared region is released back to the
// provider and the registry is emptied. Per-entry data blocks are NOT
// released (they are owned by their entries and freed on removal, or
// abandoned here) and vaults are untouched, so they can be reused by a
// manager produced with Duplicate. A manager with no region closes as a
// no-op release.
func (m *Manager) Close() error {
	if m.provider == nil {
		return errors.InvalidInput(errors.PhaseLifecycle, "manager has no provider")
	}

	if m.region != nil {
		if err := m.provider.Release(m.region); err != nil {
			Logger().Warn("release shared region failed", zap.Error(err))
		}
	}

	m.region = nil
	m.regionSize = 0
	m.usedSize = 0
	m.count = 0
	return nil
}
