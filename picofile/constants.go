package picofile

// Vault binary format magic number and version.
const (
	// Magic identifies a vault buffer ("PIC0" in little-endian).
	Magic uint32 = 0x30434950

	// Version is the supported vault format version.
	Version uint32 = 0x01
)

// HeaderSize is the fixed portion of a vault, before the variable-length
// import, export, code and data sections.
const HeaderSize = 32

// Fixed header field offsets. All fields are little-endian uint32.
const (
	offMagic       = 0  // magic number
	offVersion     = 4  // format version
	offCodeSize    = 8  // code section size
	offDataSize    = 12 // total writable data size (zero-filled past the image)
	offDataInit    = 16 // initialized data image length present in the vault
	offEntryOffset = 20 // entry point offset within the code section
	offImportCount = 24 // number of import symbols
	offExportCount = 28 // number of tagged exports
)
