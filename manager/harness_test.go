package manager

import (
	"fmt"

	"github.com/wombatlabs/picomgr"
)

// fakeVault builds the two-byte vault the fake loader understands:
// byte 0 is the code size, byte 1 the data size.
func fakeVault(codeSize, dataSize byte) []byte {
	return []byte{codeSize, dataSize}
}

type fakeLoader struct {
	exports map[int]int
	loadErr error
	loads   int
}

func (l *fakeLoader) CodeSize(vault []byte) (int, error) {
	if len(vault) != 2 {
		return 0, fmt.Errorf("malformed vault: %d bytes", len(vault))
	}
	return int(vault[0]), nil
}

func (l *fakeLoader) DataSize(vault []byte) (int, error) {
	if len(vault) != 2 {
		return 0, fmt.Errorf("malformed vault: %d bytes", len(vault))
	}
	return int(vault[1]), nil
}

func (l *fakeLoader) Load(_ picomgr.Resolver, _ []byte, code, _ []byte) error {
	if l.loadErr != nil {
		return l.loadErr
	}
	for i := range code {
		code[i] = 0xCC
	}
	l.loads++
	return nil
}

func (l *fakeLoader) EntryPoint(_ []byte, code []byte) ([]byte, error) {
	return code, nil
}

func (l *fakeLoader) Export(_ []byte, code []byte, tag int) ([]byte, bool) {
	off, ok := l.exports[tag]
	if !ok || off > len(code) {
		return nil, false
	}
	return code[off:], true
}

type testProvider struct {
	released [][]byte
	prots    []picomgr.Protection
	commits  int
	failAt   int // 1-based commit index that fails; 0 means never
}

func (p *testProvider) Commit(size int, prot picomgr.Protection) ([]byte, error) {
	p.commits++
	if p.failAt != 0 && p.commits == p.failAt {
		return nil, fmt.Errorf("provider refused %d bytes", size)
	}
	p.prots = append(p.prots, prot)
	if size == 0 {
		return []byte{}, nil
	}
	return make([]byte, size), nil
}

func (p *testProvider) Release(block []byte) error {
	p.released = append(p.released, block)
	return nil
}

func (p *testProvider) didRelease(block []byte) bool {
	for _, r := range p.released {
		if sameBase(r, block) {
			return true
		}
	}
	return false
}

func sameBase(a, b []byte) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}

func newTestManager(capacity int, opts ...Option) (*Manager, *fakeLoader, *testProvider) {
	ld := &fakeLoader{exports: make(map[int]int)}
	p := &testProvider{}
	return New(ld, p, make([]Entry, capacity), opts...), ld, p
}
