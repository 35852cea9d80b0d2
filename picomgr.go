package picomgr

// Protection describes the page protection requested for a committed block.
type Protection uint8

const (
	// ProtReadWrite is writable, non-executable memory. Used for the
	// per-module data blocks.
	ProtReadWrite Protection = iota

	// ProtExecuteReadWrite is writable and executable memory. Used for the
	// shared code region.
	ProtExecuteReadWrite
)

// String returns the conventional short form of the protection.
func (p Protection) String() string {
	switch p {
	case ProtReadWrite:
		return "rw"
	case ProtExecuteReadWrite:
		return "rwx"
	default:
		return "unknown"
	}
}

// Provider reserves and releases committed memory blocks on behalf of a
// manager. A returned block is exactly the committed extent; its base is
// &block[0]. Implementations must hand out non-overlapping blocks.
type Provider interface {
	// Commit reserves and commits a block of the given size with the given
	// protection. A zero size yields an empty, non-nil block.
	Commit(size int, prot Protection) ([]byte, error)

	// Release returns a block previously obtained from Commit. A nil block
	// is a no-op. Releasing an unknown or already-released block is an error.
	Release(block []byte) error
}

// Resolver resolves import symbols during module loading. The manager never
// inspects it; it is passed through to the Loader opaquely. A nil Resolver
// resolves nothing.
type Resolver interface {
	Resolve(symbol string) (any, bool)
}

// Loader understands a vault's binary form: it reports section sizes, copies
// module code and data into caller-chosen destinations, and locates the entry
// point and tagged exports inside a placed code window.
//
// Vaults are caller-owned, read-only buffers. A Loader must never retain or
// mutate them.
type Loader interface {
	// CodeSize reports the size of the vault's code section.
	CodeSize(vault []byte) (int, error)

	// DataSize reports the size of the vault's writable data section.
	DataSize(vault []byte) (int, error)

	// Load copies and prepares the vault's code into code and initializes
	// its data section into data. Both destinations are sized by the
	// queries above. Import symbols are resolved through imports.
	Load(imports Resolver, vault []byte, code, data []byte) error

	// EntryPoint locates the module's entry point inside a placed code
	// window. The result is a sub-slice of code.
	EntryPoint(vault []byte, code []byte) ([]byte, error)

	// Export locates a tagged export inside a placed code window, or
	// reports that the tag is absent.
	Export(vault []byte, code []byte, tag int) ([]byte, bool)
}
