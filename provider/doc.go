// Package provider supplies picomgr.Provider implementations.
//
// Heap is the in-process provider: blocks come from the Go allocator and are
// tracked by base address so double releases and foreign blocks are caught.
// It records the requested protection without enforcing it, which is exactly
// what the manager core, its tests, and the inspector tooling need.
package provider
