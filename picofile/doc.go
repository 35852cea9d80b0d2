// Package picofile implements the reference vault binary format and a
// picomgr.Loader over it.
//
// A vault is the caller-owned, read-only packed form of a PICO module. The
// format is a fixed little-endian header followed by variable sections:
//
//	offset  field
//	0       magic        u32   "PIC0"
//	4       version      u32   1
//	8       codeSize     u32   code section size
//	12      dataSize     u32   total writable data size
//	16      dataInit     u32   initialized image length (<= dataSize)
//	20      entryOffset  u32   entry point offset within code
//	24      importCount  u32
//	28      exportCount  u32
//	32      imports      importCount x { len u32, name bytes }
//	...     exports      exportCount x { tag u32, offset u32 }
//	...     code         codeSize bytes
//	...     data         dataInit bytes
//
// Code is position independent by construction, so there are no relocation
// records; loading copies the code section verbatim and materializes the
// data section as the initialized image followed by zeroes. Import symbols
// are resolved against the caller's picomgr.Resolver at load time and any
// unresolved symbol aborts the load.
//
// Parse returns windows into the vault buffer rather than copies; the vault
// must outlive the returned Info.
package picofile
