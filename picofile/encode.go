package picofile

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/wombatlabs/picomgr/errors"
)

// Module describes a module to be packed into a vault. Used by build tooling
// and tests; the manager core only ever consumes the encoded form.
type Module struct {
	// Code is the position-independent code section.
	Code []byte

	// Data is the initialized data image. The writable section a loader
	// prepares is DataSize bytes with Data at the front and zeroes after.
	Data []byte

	// DataSize is the total writable data size. Zero means exactly len(Data).
	DataSize int

	// EntryOffset is the entry point's offset within Code.
	EntryOffset int

	// Imports lists symbols the module expects the host to resolve.
	Imports []string

	// Exports maps integer tags to offsets within Code.
	Exports map[int]int
}

// Encode packs the module into vault form.
func (m *Module) Encode() ([]byte, error) {
	dataSize := m.DataSize
	if dataSize == 0 {
		dataSize = len(m.Data)
	}
	if len(m.Data) > dataSize {
		return nil, errors.InvalidData(errors.PhaseParse, []string{"data"},
			fmt.Sprintf("image %d exceeds data size %d", len(m.Data), dataSize))
	}
	if len(m.Code) > 0 && m.EntryOffset >= len(m.Code) {
		return nil, errors.InvalidData(errors.PhaseParse, []string{"entry"},
			fmt.Sprintf("entry offset %d outside code section of %d", m.EntryOffset, len(m.Code)))
	}
	if len(m.Code) == 0 && m.EntryOffset != 0 {
		return nil, errors.InvalidData(errors.PhaseParse, []string{"entry"},
			"entry offset without code section")
	}

	// Deterministic export order.
	tags := make([]int, 0, len(m.Exports))
	for tag, off := range m.Exports {
		if off >= len(m.Code) {
			return nil, errors.InvalidData(errors.PhaseParse, []string{"exports"},
				fmt.Sprintf("export tag %d offset %d outside code section of %d", tag, off, len(m.Code)))
		}
		tags = append(tags, tag)
	}
	sort.Ints(tags)

	size := HeaderSize
	for _, s := range m.Imports {
		size += 4 + len(s)
	}
	size += 8 * len(tags)
	size += len(m.Code) + len(m.Data)

	buf := make([]byte, 0, size)
	buf = appendU32(buf, Magic)
	buf = appendU32(buf, Version)
	buf = appendU32(buf, uint32(len(m.Code)))
	buf = appendU32(buf, uint32(dataSize))
	buf = appendU32(buf, uint32(len(m.Data)))
	buf = appendU32(buf, uint32(m.EntryOffset))
	buf = appendU32(buf, uint32(len(m.Imports)))
	buf = appendU32(buf, uint32(len(tags)))

	for _, s := range m.Imports {
		buf = appendU32(buf, uint32(len(s)))
		buf = append(buf, s...)
	}
	for _, tag := range tags {
		buf = appendU32(buf, uint32(int32(tag)))
		buf = appendU32(buf, uint32(m.Exports[tag]))
	}
	buf = append(buf, m.Code...)
	buf = append(buf, m.Data...)

	return buf, nil
}

func appendU32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}
