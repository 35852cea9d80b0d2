package picofile

import (
	"fmt"

	"github.com/wombatlabs/picomgr"
	"github.com/wombatlabs/picomgr/errors"
)

// Loader implements picomgr.Loader over the vault format in this package.
// It is stateless; one Loader can serve any number of managers.
type Loader struct{}

// NewLoader creates a vault format loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ picomgr.Loader = (*Loader)(nil)

// CodeSize reports the vault's code section size.
func (l *Loader) CodeSize(vault []byte) (int, error) {
	info, err := Parse(vault)
	if err != nil {
		return 0, err
	}
	return info.CodeSize, nil
}

// DataSize reports the vault's total writable data size.
func (l *Loader) DataSize(vault []byte) (int, error) {
	info, err := Parse(vault)
	if err != nil {
		return 0, err
	}
	return info.DataSize, nil
}

// Load copies the code section into code and materializes the writable data
// section into data (initialized image first, zeroes after). Every import
// symbol must resolve through imports; unresolved symbols fail the load with
// a MissingImportsError before anything is copied.
//
// The format carries no relocation records: the code section is position
// independent by construction, so loading is a straight copy.
func (l *Loader) Load(imports picomgr.Resolver, vault []byte, code, data []byte) error {
	info, err := Parse(vault)
	if err != nil {
		return err
	}

	if len(code) < info.CodeSize {
		return errors.OutOfBounds(errors.PhaseLoad, []string{"code"}, info.CodeSize, len(code))
	}
	if len(data) < info.DataSize {
		return errors.OutOfBounds(errors.PhaseLoad, []string{"data"}, info.DataSize, len(data))
	}

	var missing []string
	for _, sym := range info.Imports {
		if imports == nil {
			missing = append(missing, sym)
			continue
		}
		if _, ok := imports.Resolve(sym); !ok {
			missing = append(missing, sym)
		}
	}
	if len(missing) > 0 {
		return errors.NewMissingImportsError(missing)
	}

	copy(code, info.Code)
	n := copy(data, info.DataInit)
	clear(data[n:info.DataSize])

	return nil
}

// EntryPoint locates the entry point inside a placed code window.
func (l *Loader) EntryPoint(vault []byte, code []byte) ([]byte, error) {
	info, err := Parse(vault)
	if err != nil {
		return nil, err
	}
	if info.EntryOffset > len(code) {
		return nil, errors.OutOfBounds(errors.PhaseLoad, []string{"entry"}, info.EntryOffset, len(code))
	}
	return code[info.EntryOffset:], nil
}

// Export locates a tagged export inside a placed code window.
func (l *Loader) Export(vault []byte, code []byte, tag int) ([]byte, bool) {
	info, err := Parse(vault)
	if err != nil {
		return nil, false
	}
	off, ok := info.Export(tag)
	if !ok || off > len(code) {
		return nil, false
	}
	return code[off:], true
}

// ImportMap is a Resolver over a plain map. Convenient for callers whose
// import table is assembled ahead of time.
type ImportMap map[string]any

// Resolve implements picomgr.Resolver.
func (m ImportMap) Resolve(symbol string) (any, bool) {
	v, ok := m[symbol]
	return v, ok
}

// String returns a short description for logs.
func (m ImportMap) String() string {
	return fmt.Sprintf("import map (%d symbols)", len(m))
}
