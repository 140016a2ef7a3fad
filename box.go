package secretbox

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/awnumar/memcall"
	"github.com/awnumar/memguard/core"

	"github.com/systmms/secretbox/internal/pagebuf"
)

// Box holds one value of type T in pinned, protection-managed memory.
// See the package documentation for the constraints on T and the guard
// discipline.
type Box[T any] struct {
	region *pagebuf.Region

	// mu guards the access accounting below, not the value itself.
	mu        sync.Mutex
	readers   int
	writing   bool
	destroyed bool
}

// sizeOf is the in-memory footprint of a T value.
func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// wipeValue zeroes the bytes of a value held in ordinary Go memory,
// typically a constructor's transient copy of the secret.
func wipeValue[T any](v *T) {
	n := sizeOf[T]()
	if n == 0 {
		return
	}
	core.Wipe(unsafe.Slice((*byte)(unsafe.Pointer(v)), n))
}

// newBox allocates the pinned, no-access region for a T. Allocation or
// pinning failure is fatal: the secret must never land in swappable or
// unprotected memory.
func newBox[T any]() *Box[T] {
	region, err := pagebuf.Alloc(sizeOf[T]())
	if err != nil {
		panic(fmt.Sprintf("secretbox: %v", err))
	}

	b := &Box[T]{region: region}

	// Backstop for leaked boxes. A reachable guard keeps its Box
	// reachable, so a finalizing Box has no outstanding access.
	runtime.SetFinalizer(b, (*Box[T]).finalize)

	return b
}

// value returns a pointer to the boxed T. Dereferenceable only while the
// region's protection allows it.
func (b *Box[T]) value() *T {
	return (*T)(unsafe.Pointer(&b.region.Bytes()[0]))
}

// Init builds a Box whose value is written in place: the region is
// allocated, pinned, and protected first, and init then fills the value
// through a write guard. The secret bytes never exist outside the pinned
// pages, which makes this the preferred constructor.
//
// The value passed to init starts out zeroed.
func Init[T any](init func(*T)) *Box[T] {
	b := newBox[T]()
	b.WithMut(init)
	return b
}

// TryInit is Init with a fallible initializer. If init returns an error
// the Box is destroyed — whatever init wrote is zeroed and the pages are
// unpinned and released — before the error is returned.
func TryInit[T any](init func(*T) error) (*Box[T], error) {
	b := newBox[T]()

	g := b.ExposeMut()
	err := func() error {
		defer g.Release()
		return init(g.Value())
	}()
	if err != nil {
		b.Destroy()
		return nil, err
	}

	return b, nil
}

// FromValue builds a Box by copying *v into protected memory and then
// zeroing *v. The value necessarily existed in ordinary memory before the
// call, so unlike Init this is best-effort: the runtime may have made
// intermediate copies the library cannot reach.
func FromValue[T any](v *T) *Box[T] {
	b := newBox[T]()
	b.WithMut(func(dst *T) {
		*dst = *v
	})
	wipeValue(v)
	return b
}

// FromFunc builds a Box from a constructor function. The transient value
// the constructor returns is zeroed after it is copied in. The same
// best-effort caveat as FromValue applies; prefer Init when the value can
// be produced in place.
func FromFunc[T any](ctor func() T) *Box[T] {
	v := ctor()
	return FromValue(&v)
}

// TryFromFunc is FromFunc with a fallible constructor. On error the
// partially built transient is zeroed before the error is returned, so
// the failure path never leaks the secret.
func TryFromFunc[T any](ctor func() (T, error)) (*Box[T], error) {
	v, err := ctor()
	if err != nil {
		wipeValue(&v)
		return nil, err
	}
	return FromValue(&v), nil
}

// Expose grants read access and returns the guard that scopes it. The
// region moves to read-only if this is the first guard; additional read
// guards share the already-widened protection. Panics if a write guard is
// active or the Box is destroyed.
func (b *Box[T]) Expose() *Guard[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		panic("secretbox: use of destroyed Box")
	}
	if b.writing {
		panic("secretbox: read access requested while a write guard is active")
	}

	b.readers++
	if b.readers == 1 {
		b.region.Protect(pagebuf.ReadOnly)
	}

	return &Guard[T]{box: b}
}

// ExposeMut grants exclusive write access and returns the guard that
// scopes it. Panics if any guard — read or write — is active, or if the
// Box is destroyed.
func (b *Box[T]) ExposeMut() *MutGuard[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		panic("secretbox: use of destroyed Box")
	}
	if b.writing {
		panic("secretbox: second write guard requested")
	}
	if b.readers > 0 {
		panic(fmt.Sprintf("secretbox: write access requested while %d read guard(s) active", b.readers))
	}

	b.writing = true
	b.region.Protect(pagebuf.ReadWrite)

	return &MutGuard[T]{box: b}
}

// With exposes the value read-only for the duration of fn. The guard is
// released on every exit path, including a panic in fn.
func (b *Box[T]) With(fn func(*T)) {
	g := b.Expose()
	defer g.Release()
	fn(g.Value())
}

// WithMut exposes the value read-write for the duration of fn. The guard
// is released on every exit path, including a panic in fn.
func (b *Box[T]) WithMut(fn func(*T)) {
	g := b.ExposeMut()
	defer g.Release()
	fn(g.Value())
}

// Destroy zeroes the value, unpins the pages, and releases them. It is
// idempotent. Panics if any guard is still outstanding: destroying memory
// a guard can still reach is aliasing, and the strict policy fails loudly.
func (b *Box[T]) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyLocked()
}

func (b *Box[T]) destroyLocked() {
	if b.destroyed {
		return
	}
	if b.readers > 0 || b.writing {
		panic("secretbox: Destroy called with outstanding guards")
	}

	b.region.Destroy()
	b.destroyed = true
	runtime.SetFinalizer(b, nil)
}

// finalize destroys a Box the caller leaked. Outstanding guards keep the
// Box reachable, so the accounting is necessarily clear here.
func (b *Box[T]) finalize() {
	b.Destroy()
}

// endRead retires one read guard, re-tightening to no-access when it was
// the last one.
func (b *Box[T]) endRead() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.readers--
	if b.readers == 0 && !b.destroyed {
		b.region.Protect(pagebuf.NoAccess)
	}
}

// endWrite retires the write guard and re-tightens to no-access.
func (b *Box[T]) endWrite() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.writing = false
	if !b.destroyed {
		b.region.Protect(pagebuf.NoAccess)
	}
}

// DisableCoreDumps asks the OS to exclude the whole process from core
// dumps. Opt-in process hardening that complements per-Box protection;
// call it once at startup if wanted.
func DisableCoreDumps() error {
	return memcall.DisableCoreDumps()
}
