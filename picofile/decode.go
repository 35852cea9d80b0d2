package picofile

import (
	"encoding/binary"
	goerrors "errors"
	"fmt"

	"github.com/wombatlabs/picomgr/errors"
)

// Parsing errors returned by Parse.
var (
	ErrInvalidMagic   = goerrors.New("invalid vault magic number")
	ErrInvalidVersion = goerrors.New("invalid vault version")
)

// Export is one tagged export: an offset inside the code section addressed
// by an integer tag.
type Export struct {
	Tag    int
	Offset int
}

// Info is the decoded view of a vault. Code and DataInit are windows into
// the original buffer, not copies; the vault stays caller-owned and
// read-only.
type Info struct {
	CodeSize    int
	DataSize    int
	EntryOffset int
	Imports     []string
	Exports     []Export
	Code        []byte
	DataInit    []byte
}

// Export returns the offset for a tag, or false if the tag is absent.
func (i *Info) Export(tag int) (int, bool) {
	for _, e := range i.Exports {
		if e.Tag == tag {
			return e.Offset, true
		}
	}
	return 0, false
}

type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) u32(field string) (int, error) {
	if c.pos+4 > len(c.buf) {
		return 0, errors.OutOfBounds(errors.PhaseParse, []string{field}, c.pos, len(c.buf))
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return int(v), nil
}

func (c *cursor) bytes(field string, n int) ([]byte, error) {
	if c.pos+n > len(c.buf) {
		return nil, errors.OutOfBounds(errors.PhaseParse, []string{field}, c.pos+n, len(c.buf))
	}
	b := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return b, nil
}

// Parse decodes and validates a vault buffer.
func Parse(vault []byte) (*Info, error) {
	if len(vault) < HeaderSize {
		return nil, errors.InvalidData(errors.PhaseParse, []string{"header"},
			fmt.Sprintf("vault too short: %d bytes", len(vault)))
	}

	if binary.LittleEndian.Uint32(vault[offMagic:]) != Magic {
		return nil, ErrInvalidMagic
	}
	if binary.LittleEndian.Uint32(vault[offVersion:]) != Version {
		return nil, ErrInvalidVersion
	}

	info := &Info{
		CodeSize:    int(binary.LittleEndian.Uint32(vault[offCodeSize:])),
		DataSize:    int(binary.LittleEndian.Uint32(vault[offDataSize:])),
		EntryOffset: int(binary.LittleEndian.Uint32(vault[offEntryOffset:])),
	}
	dataInit := int(binary.LittleEndian.Uint32(vault[offDataInit:]))
	importCount := int(binary.LittleEndian.Uint32(vault[offImportCount:]))
	exportCount := int(binary.LittleEndian.Uint32(vault[offExportCount:]))

	if dataInit > info.DataSize {
		return nil, errors.InvalidData(errors.PhaseParse, []string{"header"},
			fmt.Sprintf("initialized image %d exceeds data size %d", dataInit, info.DataSize))
	}
	if info.CodeSize > 0 && info.EntryOffset >= info.CodeSize {
		return nil, errors.InvalidData(errors.PhaseParse, []string{"header"},
			fmt.Sprintf("entry offset %d outside code section of %d", info.EntryOffset, info.CodeSize))
	}
	if info.CodeSize == 0 && info.EntryOffset != 0 {
		return nil, errors.InvalidData(errors.PhaseParse, []string{"header"},
			"entry offset without code section")
	}

	c := &cursor{buf: vault, pos: HeaderSize}

	for i := 0; i < importCount; i++ {
		n, err := c.u32("imports")
		if err != nil {
			return nil, err
		}
		name, err := c.bytes("imports", n)
		if err != nil {
			return nil, err
		}
		if len(name) == 0 {
			return nil, errors.InvalidData(errors.PhaseParse, []string{"imports"}, "empty import symbol")
		}
		info.Imports = append(info.Imports, string(name))
	}

	for i := 0; i < exportCount; i++ {
		tag, err := c.u32("exports")
		if err != nil {
			return nil, err
		}
		off, err := c.u32("exports")
		if err != nil {
			return nil, err
		}
		if off >= info.CodeSize {
			return nil, errors.InvalidData(errors.PhaseParse, []string{"exports"},
				fmt.Sprintf("export tag %d offset %d outside code section of %d", tag, off, info.CodeSize))
		}
		info.Exports = append(info.Exports, Export{Tag: int(int32(uint32(tag))), Offset: off})
	}

	var err error
	if info.Code, err = c.bytes("code", info.CodeSize); err != nil {
		return nil, err
	}
	if info.DataInit, err = c.bytes("data", dataInit); err != nil {
		return nil, err
	}

	if c.pos != len(vault) {
		return nil, errors.InvalidData(errors.PhaseParse, []string{"trailer"},
			fmt.Sprintf("%d trailing bytes", len(vault)-c.pos))
	}

	return info, nil
}
