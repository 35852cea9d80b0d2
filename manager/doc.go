// Package manager implements the PICO manager core: a fixed-capacity module
// registry, a bump-pointer packer for the shared executable region, a phased
// load scheduler, and manager duplication for region growth.
//
// # Registry
//
// Entries live in a caller-supplied array. Identifiers equal positions:
// removing an entry shifts everything after it one slot left and renumbers
// the shifted entries. The O(n) shift buys dense, predictable identifiers —
// callers can iterate 0..Count() and "the last entry" is always Count()-1.
// Registries hold tens of modules and removal is rare next to lookup and
// load, so the trade is cheap.
//
// # Packing
//
// Code sections are placed sequentially in one shared region, each followed
// by the configured inter-module padding. A single contiguous region lets
// callers treat the whole code area as one unit for later bulk transforms;
// the price is that growth requires allocating a fresh region and migrating
// via Duplicate.
//
// # Loading
//
// Load is idempotent per entry and explicitly non-atomic across entries: a
// failure partway leaves earlier placements intact. See Load for the
// contract; this behavior is deliberate and load is meant to be retried
// after the caller remedies space.
//
// # Concurrency
//
// All operations are synchronous and run to completion on the calling
// goroutine. A Manager has no internal locking; concurrent use must be
// serialized by the caller. Note the shared region stays execute+write for
// the manager's lifetime, so nothing stops code already running out of the
// region while the scheduler writes a later module into it — callers must
// guarantee no execution happens inside not-yet-loaded placements.
package manager
