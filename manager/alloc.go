package manager

import (
	"go.uber.org/zap"

	"github.com/wombatlabs/picomgr"
	"github.com/wombatlabs/picomgr/errors"
)

// AllocRegion obtains the shared executable region from the provider, sized
// for every currently registered module plus finalPadding spare bytes at the
// end. On provider failure the manager's existing region fields are left
// untouched.
//
// Each call obtains an entirely new region; an existing region is never grown
// in place. Growing requires Duplicate. The previous region, if any, remains
// the caller's to destroy via the manager that still references it.
func (m *Manager) AllocRegion(finalPadding int) error {
	if m.loader == nil || m.provider == nil {
		return errors.InvalidInput(errors.PhaseAlloc, "manager has no loader or provider")
	}
	if finalPadding < 0 {
		return errors.InvalidInput(errors.PhaseAlloc, "negative final padding")
	}

	required := m.TotalCodeSize() + finalPadding

	block, err := m.provider.Commit(required, picomgr.ProtExecuteReadWrite)
	if err != nil {
		return errors.AllocationFailed(errors.PhaseAlloc, required, err)
	}

	m.region = block
	m.regionSize = required
	m.usedSize = 0

	Logger().Debug("allocated shared region",
		zap.Int("size", required),
		zap.Int("entries", m.count),
		zap.Int("finalPadding", finalPadding))
	return nil
}
