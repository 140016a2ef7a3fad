// Package pagebuf manages page-aligned memory regions that live outside
// the Go heap and hold secret material.
//
// A Region is allocated with memcall (anonymous mmap or the platform
// equivalent), immediately pinned against swap with mlock, and set to
// no-access protection. Callers widen and re-tighten protection through
// Protect and tear the region down with Destroy, which wipes every byte
// before the pages are unpinned and unmapped.
//
// Allocation failures are reported as errors so callers can decide how
// loudly to fail. Protection and teardown failures after a Region exists
// always panic: once secret bytes are in the pages there is no safe way
// to continue with weaker protection than was promised.
package pagebuf
