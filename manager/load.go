package manager

import (
	"go.uber.org/zap"

	"github.com/wombatlabs/picomgr"
	"github.com/wombatlabs/picomgr/errors"
)

// LoadAll is the upTo sentinel meaning "every currently registered entry".
const LoadAll = -1

// Load places and loads unloaded entries 0..upTo (or all entries with the
// LoadAll sentinel) into the shared region, in ascending identifier order.
//
// Already-loaded entries are skipped but still advance the running placement
// offset, so later entries keep stable positions relative to them; calling
// Load again over a loaded range is a no-op for those entries. This is what
// enables phased loading: load entry 0 alone to run bootstrap logic, then
// load the remainder once import state is resolved.
//
// Load is NOT atomic across entries. If an entry does not fit, or its data
// block cannot be allocated, the call aborts and reports failure while
// entries processed earlier in the same call remain loaded. Callers must
// treat Load as best-effort and remedy space (typically via Duplicate)
// before retrying.
func (m *Manager) Load(upTo int, finalPadding int, imports picomgr.Resolver) error {
	if m.region == nil || m.regionSize == 0 {
		return errors.InvalidInput(errors.PhaseLoad, "no region allocated")
	}
	if finalPadding < 0 {
		return errors.InvalidInput(errors.PhaseLoad, "negative final padding")
	}
	if upTo < LoadAll {
		return errors.InvalidInput(errors.PhaseLoad, "negative entry id")
	}

	limit := m.count
	if upTo != LoadAll && upTo+1 < limit {
		limit = upTo + 1
	}

	offset := 0
	for i := 0; i < limit; i++ {
		e := &m.entries[i]

		// Already loaded: keep its placement, advance past it.
		if e.Code != nil {
			offset += e.CodeSize + m.padding
			continue
		}

		// Empty slot: no placement, no offset.
		if e.Vault == nil {
			continue
		}

		// Fit check charges the code bytes plus the final padding reserve,
		// but not the inter-module padding that follows: a region sized to
		// TotalCodeSize()+finalPadding must hold its own last entry.
		if offset+e.CodeSize+finalPadding > m.regionSize {
			Logger().Warn("load aborted: region exhausted",
				zap.Int("id", i),
				zap.String("name", e.Name),
				zap.Int("offset", offset),
				zap.Int("required", e.CodeSize+finalPadding),
				zap.Int("regionSize", m.regionSize))
			return errors.New(errors.PhaseLoad, errors.KindCapacity).
				Path(e.Name).
				Detail("entry %d needs %d bytes at offset %d, region holds %d",
					i, e.CodeSize+finalPadding, offset, m.regionSize).
				Build()
		}

		e.Code = m.region[offset : offset+e.CodeSize : offset+e.CodeSize]

		data, err := m.provider.Commit(e.DataSize, picomgr.ProtReadWrite)
		if err != nil {
			return errors.AllocationFailed(errors.PhaseLoad, e.DataSize, err)
		}
		e.Data = data

		if err := m.loader.Load(imports, e.Vault, e.Code, e.Data); err != nil {
			return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "load "+e.Name)
		}

		ep, err := m.loader.EntryPoint(e.Vault, e.Code)
		if err != nil {
			return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "entry point of "+e.Name)
		}
		e.EntryPoint = ep

		Logger().Debug("loaded module",
			zap.Int("id", i),
			zap.String("name", e.Name),
			zap.Int("offset", offset),
			zap.Int("codeSize", e.CodeSize),
			zap.Int("dataSize", e.DataSize))

		offset += e.CodeSize + m.padding
	}

	// Watermark, not a byte count of placements: it includes the padding
	// after the final entry, so it can exceed the region size by up to one
	// inter-module padding. Code ranges never do.
	m.usedSize = offset
	return nil
}
