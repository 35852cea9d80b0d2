package manager

// ExportByID resolves a tagged export inside a loaded entry's code placement.
// The entry must be registered and loaded; otherwise the export is absent.
func (m *Manager) ExportByID(id, tag int) ([]byte, bool) {
	e, ok := m.ByID(id)
	if !ok || e.Vault == nil || e.Code == nil {
		return nil, false
	}
	return m.loader.Export(e.Vault, e.Code, tag)
}

// ExportByName resolves a tagged export by entry name.
func (m *Manager) ExportByName(name string, tag int) ([]byte, bool) {
	e, ok := m.ByName(name)
	if !ok || e.Vault == nil || e.Code == nil {
		return nil, false
	}
	return m.loader.Export(e.Vault, e.Code, tag)
}
