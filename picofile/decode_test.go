package picofile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func testModule() *Module {
	return &Module{
		Code:        []byte{0x90, 0x90, 0x48, 0xC3, 0x55, 0xC3},
		Data:        []byte{1, 2, 3},
		DataSize:    8,
		EntryOffset: 2,
		Imports:     []string{"sys.alloc", "sys.log"},
		Exports:     map[int]int{1: 0, 7: 4},
	}
}

func mustEncode(t *testing.T, m *Module) []byte {
	t.Helper()
	vault, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return vault
}

func TestParse_RoundTrip(t *testing.T) {
	m := testModule()
	vault := mustEncode(t, m)

	info, err := Parse(vault)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if info.CodeSize != len(m.Code) {
		t.Errorf("CodeSize = %d, want %d", info.CodeSize, len(m.Code))
	}
	if info.DataSize != 8 {
		t.Errorf("DataSize = %d, want 8", info.DataSize)
	}
	if info.EntryOffset != 2 {
		t.Errorf("EntryOffset = %d, want 2", info.EntryOffset)
	}
	if !bytes.Equal(info.Code, m.Code) {
		t.Errorf("Code = %x, want %x", info.Code, m.Code)
	}
	if !bytes.Equal(info.DataInit, m.Data) {
		t.Errorf("DataInit = %x, want %x", info.DataInit, m.Data)
	}
	if len(info.Imports) != 2 || info.Imports[0] != "sys.alloc" || info.Imports[1] != "sys.log" {
		t.Errorf("Imports = %v", info.Imports)
	}

	if off, ok := info.Export(7); !ok || off != 4 {
		t.Errorf("Export(7) = (%d, %v), want (4, true)", off, ok)
	}
	if _, ok := info.Export(2); ok {
		t.Error("Export(2) resolved an absent tag")
	}

	// Windows, not copies.
	if &info.Code[0] != &vault[len(vault)-len(m.Code)-len(m.Data)] {
		t.Error("Code is not a window into the vault")
	}
}

func TestParse_MinimalModule(t *testing.T) {
	vault := mustEncode(t, &Module{Code: []byte{0xC3}})

	info, err := Parse(vault)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if info.CodeSize != 1 || info.DataSize != 0 || len(info.Imports) != 0 || len(info.Exports) != 0 {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestParse_Invalid(t *testing.T) {
	base := mustEncode(t, testModule())

	patch := func(off int, v uint32) []byte {
		vault := bytes.Clone(base)
		binary.LittleEndian.PutUint32(vault[off:], v)
		return vault
	}

	tests := []struct {
		name  string
		vault []byte
	}{
		{"empty", nil},
		{"short header", base[:HeaderSize-1]},
		{"bad magic", patch(offMagic, 0xDEADBEEF)},
		{"bad version", patch(offVersion, 99)},
		{"data image exceeds data size", patch(offDataSize, 2)},
		{"entry offset outside code", patch(offEntryOffset, 6)},
		{"truncated code", base[:len(base)-4]},
		{"trailing bytes", append(bytes.Clone(base), 0)},
		{"import table overruns", patch(offImportCount, 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.vault); err == nil {
				t.Error("Parse accepted a corrupt vault")
			}
		})
	}
}

func TestParse_MagicAndVersionSentinels(t *testing.T) {
	base := mustEncode(t, testModule())

	bad := bytes.Clone(base)
	binary.LittleEndian.PutUint32(bad[offMagic:], 0)
	if _, err := Parse(bad); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("err = %v, want ErrInvalidMagic", err)
	}

	bad = bytes.Clone(base)
	binary.LittleEndian.PutUint32(bad[offVersion:], 2)
	if _, err := Parse(bad); !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("err = %v, want ErrInvalidVersion", err)
	}
}

func TestEncode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		mod  *Module
	}{
		{"entry outside code", &Module{Code: []byte{1, 2}, EntryOffset: 2}},
		{"entry without code", &Module{EntryOffset: 1}},
		{"image exceeds data size", &Module{Code: []byte{1}, Data: []byte{1, 2, 3}, DataSize: 2}},
		{"export outside code", &Module{Code: []byte{1, 2}, Exports: map[int]int{1: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.mod.Encode(); err == nil {
				t.Error("Encode accepted an invalid module")
			}
		})
	}
}
