// Package picomgr manages position-independent code objects (PICOs) packed
// into a single shared executable region.
//
// A PICO is a relocatable module distributed as an opaque binary buffer (a
// "vault"). The manager registers vaults, packs their code sections into one
// contiguous region with configurable inter-module padding, gives each module
// a private writable data block, and keeps module identifiers dense across
// removals.
//
// # Architecture Overview
//
// The library is organized into a small root package of interfaces plus
// focused subpackages:
//
//	picomgr/             Root package with Provider, Loader and Resolver interfaces
//	├── manager/         The core: registry, region packing, load scheduling, lifecycle
//	├── provider/        In-process heap-backed memory Provider
//	├── picofile/        Reference vault binary format and its Loader
//	├── errors/          Structured error types for debugging
//	└── cmd/picorun      CLI and interactive inspector
//
// # Quick Start
//
// Register modules, size the region, and load:
//
//	ld := picofile.NewLoader()
//	prov := provider.NewHeap()
//
//	entries := make([]manager.Entry, 16)
//	mgr := manager.New(ld, prov, entries, manager.WithPadding(16))
//
//	mgr.Add("hooks", hooksVault)
//	mgr.Add("transport", transportVault)
//
//	mgr.AllocRegion(64)
//	mgr.Load(manager.LoadAll, 64, nil)
//
//	e, _ := mgr.ByName("transport")
//	fmt.Printf("code at %p\n", e.Code)
//
// # Addresses
//
// Placements are expressed as byte-slice windows rather than raw pointers:
// an entry's Code field is a sub-slice of the shared region, its Data field
// is the private block, and the entry point and exports are sub-slices of
// Code. A nil slice means "not loaded".
//
// # Ownership
//
// The shared region belongs to the manager and is released only by Close.
// Each data block belongs to its entry and is released on removal. Vaults
// always belong to the caller; the manager never copies or frees them,
// which is what makes duplicating a manager into a larger region cheap.
//
// # Thread Safety
//
// A Manager is not safe for concurrent use. Callers must serialize access;
// see the manager package documentation for the reasoning.
package picomgr
