package manager

import (
	goerrors "errors"
	"testing"

	"github.com/wombatlabs/picomgr"
	"github.com/wombatlabs/picomgr/errors"
)

func TestAllocRegion_SizesAndProtection(t *testing.T) {
	m, _, p := newTestManager(4, WithPadding(5))

	m.Add("A", fakeVault(10, 0))
	m.Add("B", fakeVault(20, 0))
	m.Add("C", fakeVault(30, 0))

	if err := m.AllocRegion(16); err != nil {
		t.Fatalf("AllocRegion failed: %v", err)
	}

	if m.RegionSize() != 86 {
		t.Errorf("RegionSize() = %d, want 86 (70 code+padding, 16 final)", m.RegionSize())
	}
	if len(m.Region()) != 86 {
		t.Errorf("region block length = %d, want 86", len(m.Region()))
	}
	if m.UsedSize() != 0 {
		t.Errorf("UsedSize() = %d, want 0 after alloc", m.UsedSize())
	}
	if len(p.prots) != 1 || p.prots[0] != picomgr.ProtExecuteReadWrite {
		t.Errorf("region committed with %v, want rwx", p.prots)
	}
}

func TestAllocRegion_ProviderFailureLeavesState(t *testing.T) {
	m, _, p := newTestManager(4)

	m.Add("A", fakeVault(10, 0))
	if err := m.AllocRegion(8); err != nil {
		t.Fatalf("first AllocRegion failed: %v", err)
	}
	oldRegion := m.Region()
	oldSize := m.RegionSize()

	p.failAt = p.commits + 1
	err := m.AllocRegion(8)
	if err == nil {
		t.Fatal("expected allocation failure")
	}
	if !goerrors.Is(err, &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindAllocation}) {
		t.Fatalf("wrong error: %v", err)
	}

	if !sameBase(m.Region(), oldRegion) || m.RegionSize() != oldSize {
		t.Error("failed alloc disturbed the existing region")
	}
}

func TestLoad_RequiresRegion(t *testing.T) {
	m, _, _ := newTestManager(2)
	m.Add("A", fakeVault(10, 0))

	err := m.Load(LoadAll, 0, nil)
	if err == nil {
		t.Fatal("Load without a region succeeded")
	}
	if !goerrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidInput}) {
		t.Fatalf("wrong error: %v", err)
	}
}

func TestLoad_PhasedAndIdempotent(t *testing.T) {
	m, ld, _ := newTestManager(4, WithPadding(5))

	m.Add("boot", fakeVault(10, 4))
	m.Add("transport", fakeVault(20, 4))
	m.Add("crypto", fakeVault(30, 4))

	if err := m.AllocRegion(0); err != nil {
		t.Fatalf("AllocRegion failed: %v", err)
	}
	region := m.Region()

	// Phase one: bootstrap entry only.
	if err := m.Load(0, 0, nil); err != nil {
		t.Fatalf("Load(0) failed: %v", err)
	}

	e0, _ := m.ByID(0)
	if !e0.Loaded() {
		t.Fatal("entry 0 not loaded")
	}
	if !sameBase(e0.Code, region[0:10]) || len(e0.Code) != 10 {
		t.Error("entry 0 placed wrong")
	}
	if !sameBase(e0.EntryPoint, e0.Code) {
		t.Error("entry 0 entry point wrong")
	}
	if e1, _ := m.ByID(1); e1.Loaded() {
		t.Fatal("Load(0) loaded entry 1")
	}
	if m.UsedSize() != 15 {
		t.Errorf("UsedSize() = %d, want 15", m.UsedSize())
	}
	if ld.loads != 1 {
		t.Errorf("loader invoked %d times, want 1", ld.loads)
	}

	boot := e0.Code

	// Phase two: the rest. Entry 0 must be a no-op with a stable placement.
	if err := m.Load(LoadAll, 0, nil); err != nil {
		t.Fatalf("Load(all) failed: %v", err)
	}

	e0, _ = m.ByID(0)
	if !sameBase(e0.Code, boot) {
		t.Error("reloading moved entry 0")
	}
	e1, _ := m.ByID(1)
	if !sameBase(e1.Code, region[15:35]) {
		t.Error("entry 1 placed wrong")
	}
	e2, _ := m.ByID(2)
	if !sameBase(e2.Code, region[40:70]) {
		t.Error("entry 2 placed wrong")
	}
	if ld.loads != 3 {
		t.Errorf("loader invoked %d times, want 3", ld.loads)
	}
	if m.UsedSize() != 75 {
		t.Errorf("UsedSize() = %d, want 75", m.UsedSize())
	}

	// Third pass is a complete no-op.
	if err := m.Load(LoadAll, 0, nil); err != nil {
		t.Fatalf("idempotent Load failed: %v", err)
	}
	if ld.loads != 3 {
		t.Errorf("no-op pass invoked loader %d times, want 3", ld.loads)
	}
}

func TestLoad_DataBlockProtection(t *testing.T) {
	m, _, p := newTestManager(2, WithPadding(5))

	m.Add("A", fakeVault(10, 4))
	if err := m.AllocRegion(0); err != nil {
		t.Fatalf("AllocRegion failed: %v", err)
	}
	if err := m.Load(LoadAll, 0, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Commit 1 is the region (rwx); commit 2 is the data block (rw).
	if len(p.prots) != 2 || p.prots[1] != picomgr.ProtReadWrite {
		t.Errorf("data block committed with %v, want rw", p.prots)
	}

	e, _ := m.ByID(0)
	if len(e.Data) != 4 {
		t.Errorf("data block length = %d, want 4", len(e.Data))
	}
}

func TestLoad_ExactFitSucceeds(t *testing.T) {
	m, _, _ := newTestManager(4, WithPadding(5))

	m.Add("A", fakeVault(10, 0))
	m.Add("B", fakeVault(20, 0))
	m.Add("C", fakeVault(30, 0))

	if err := m.AllocRegion(4); err != nil {
		t.Fatalf("AllocRegion failed: %v", err)
	}
	if err := m.Load(LoadAll, 4, nil); err != nil {
		t.Fatalf("Load into exactly sized region failed: %v", err)
	}

	// The used watermark counts the padding after the last entry.
	if m.UsedSize() != 75 {
		t.Errorf("UsedSize() = %d, want 75", m.UsedSize())
	}
}

func TestLoad_InsufficientSpacePartialProgress(t *testing.T) {
	m, _, _ := newTestManager(4, WithPadding(5))

	m.Add("A", fakeVault(10, 0))
	m.Add("B", fakeVault(20, 0))
	m.Add("C", fakeVault(30, 0))

	// Region holds exactly TotalCodeSize; asking for one extra final byte
	// makes the last entry miss by one.
	if err := m.AllocRegion(0); err != nil {
		t.Fatalf("AllocRegion failed: %v", err)
	}

	err := m.Load(LoadAll, 1, nil)
	if err == nil {
		t.Fatal("expected capacity failure on last entry")
	}
	if !goerrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindCapacity}) {
		t.Fatalf("wrong error: %v", err)
	}

	// Entries processed before the failure stay loaded; no rollback.
	for i := 0; i < 2; i++ {
		if e, _ := m.ByID(i); !e.Loaded() {
			t.Errorf("entry %d rolled back", i)
		}
	}
	if e, _ := m.ByID(2); e.Loaded() {
		t.Error("failing entry reported loaded")
	}
}

func TestLoad_DataAllocFailureAborts(t *testing.T) {
	m, _, p := newTestManager(4, WithPadding(5))

	m.Add("A", fakeVault(10, 4))
	m.Add("B", fakeVault(20, 4))

	if err := m.AllocRegion(0); err != nil {
		t.Fatalf("AllocRegion failed: %v", err)
	}

	// Commit 1 was the region; 2 is A's data; 3 is B's data.
	p.failAt = 3
	err := m.Load(LoadAll, 0, nil)
	if err == nil {
		t.Fatal("expected data allocation failure")
	}
	if !goerrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindAllocation}) {
		t.Fatalf("wrong error: %v", err)
	}

	if e0, _ := m.ByID(0); !e0.Loaded() {
		t.Error("entry 0 rolled back")
	}
	if e1, _ := m.ByID(1); e1.Data != nil {
		t.Error("failed entry has a data block")
	}
}

func TestLoad_SkipsEmptySlotsWithoutAdvancing(t *testing.T) {
	m, _, _ := newTestManager(4, WithPadding(5))

	m.Add("A", fakeVault(10, 0))
	m.Add("B", fakeVault(20, 0))
	m.Add("C", fakeVault(30, 0))

	// Tombstone the middle slot directly; in normal operation this state is
	// only transient during compaction.
	m.entries[1] = Entry{ID: 1}

	if err := m.AllocRegion(0); err != nil {
		t.Fatalf("AllocRegion failed: %v", err)
	}
	region := m.Region()

	if err := m.Load(LoadAll, 0, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	e2, _ := m.ByID(2)
	if !sameBase(e2.Code, region[15:45]) {
		t.Error("empty slot advanced the placement offset")
	}
	if e1, _ := m.ByID(1); e1.Loaded() {
		t.Error("empty slot got a placement")
	}
}

func TestLoad_UpToBeyondCountLoadsAll(t *testing.T) {
	m, _, _ := newTestManager(4, WithPadding(5))

	m.Add("A", fakeVault(10, 0))
	m.Add("B", fakeVault(20, 0))

	if err := m.AllocRegion(0); err != nil {
		t.Fatalf("AllocRegion failed: %v", err)
	}
	if err := m.Load(7, 0, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if e, _ := m.ByID(i); !e.Loaded() {
			t.Errorf("entry %d not loaded", i)
		}
	}
}
