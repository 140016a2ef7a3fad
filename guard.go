package secretbox

// Guard scopes read-only access to a Box's value. Any number of read
// guards may be live at once; none may coexist with a write guard. The
// holder must call Release when done — the last release is what returns
// the pages to no-access.
//
// A Guard is not safe for concurrent use by multiple goroutines.
type Guard[T any] struct {
	box      *Box[T]
	released bool
}

// Value returns the guarded value. The pointer is valid only until
// Release; panics if the guard has already been released.
func (g *Guard[T]) Value() *T {
	if g.released {
		panic("secretbox: use of released guard")
	}
	return g.box.value()
}

// Release retires the guard. Idempotent, so it is always safe to defer.
func (g *Guard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.box.endRead()
}

// MutGuard scopes exclusive read-write access to a Box's value. Exactly
// one may be live at a time, and never alongside read guards. The holder
// must call Release when done, which returns the pages to no-access.
//
// A MutGuard is not safe for concurrent use by multiple goroutines.
type MutGuard[T any] struct {
	box      *Box[T]
	released bool
}

// Value returns the guarded value for reading and writing. The pointer is
// valid only until Release; panics if the guard has already been released.
func (g *MutGuard[T]) Value() *T {
	if g.released {
		panic("secretbox: use of released guard")
	}
	return g.box.value()
}

// Release retires the guard. Idempotent, so it is always safe to defer.
func (g *MutGuard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.box.endWrite()
}
