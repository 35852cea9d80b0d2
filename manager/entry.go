package manager

// NameMax is the maximum stored length of an entry name in bytes.
// Names longer than this are truncated when the entry is added, and lookup
// queries are truncated the same way so comparisons stay symmetric.
const NameMax = 31

// Entry is one registered PICO module.
//
// Code, Data and EntryPoint are nil until the entry is loaded. Code is a
// window into the manager's shared region; Data is a private writable block
// owned by this entry alone; EntryPoint is a sub-slice of Code. Vault is the
// caller-owned binary form of the module and is never copied or released by
// the manager. An Entry with a nil Vault is an empty slot.
type Entry struct {
	ID         int
	Name       string
	Code       []byte
	CodeSize   int
	Data       []byte
	DataSize   int
	EntryPoint []byte
	Vault      []byte
}

// Loaded reports whether the entry's code has been placed in the shared region.
func (e *Entry) Loaded() bool {
	return e.Code != nil
}

func truncateName(name string) string {
	if len(name) > NameMax {
		return name[:NameMax]
	}
	return name
}
