package pagebuf

import (
	"fmt"

	"github.com/awnumar/memcall"
	"github.com/awnumar/memguard/core"
)

// Protection is the access level currently applied to a Region's pages.
type Protection int

const (
	// NoAccess forbids all reads and writes, including by the owning process.
	NoAccess Protection = iota
	// ReadOnly permits reads only.
	ReadOnly
	// ReadWrite permits reads and writes.
	ReadWrite
)

func (p Protection) String() string {
	switch p {
	case NoAccess:
		return "no-access"
	case ReadOnly:
		return "read-only"
	case ReadWrite:
		return "read-write"
	default:
		return fmt.Sprintf("protection(%d)", int(p))
	}
}

func (p Protection) flag() memcall.MemoryProtectionFlag {
	switch p {
	case NoAccess:
		return memcall.NoAccess()
	case ReadOnly:
		return memcall.ReadOnly()
	case ReadWrite:
		return memcall.ReadWrite()
	default:
		panic(fmt.Sprintf("pagebuf: invalid protection level %d", int(p)))
	}
}

// Region is a pinned, protection-managed memory range outside the Go heap.
// It is not safe for concurrent use; callers serialize access.
type Region struct {
	buf       []byte
	prot      Protection
	destroyed bool
}

// Alloc maps a new region of at least size bytes, pins it against swap,
// and sets it to no-access. The mapping starts out zero-filled. If any
// step fails the steps that succeeded are undone and an error is returned;
// nothing sensitive has been written yet, so this failure is recoverable
// by the caller.
func Alloc(size int) (*Region, error) {
	if size < 1 {
		size = 1
	}

	buf, err := memcall.Alloc(size)
	if err != nil {
		return nil, fmt.Errorf("allocating %d byte region: %w", size, err)
	}

	if err := memcall.Lock(buf); err != nil {
		// The region holds no secret yet; unmapping without a wipe is fine.
		_ = memcall.Free(buf)
		return nil, fmt.Errorf("pinning %d byte region against swap: %w", size, err)
	}

	if err := memcall.Protect(buf, memcall.NoAccess()); err != nil {
		_ = memcall.Unlock(buf)
		_ = memcall.Free(buf)
		return nil, fmt.Errorf("protecting %d byte region: %w", size, err)
	}

	return &Region{buf: buf, prot: NoAccess}, nil
}

// Bytes returns the region's backing bytes. The slice is only dereferenceable
// while the current protection permits it.
func (r *Region) Bytes() []byte {
	if r.destroyed {
		panic("pagebuf: use of destroyed region")
	}
	return r.buf
}

// Size returns the usable length of the region in bytes.
func (r *Region) Size() int {
	return len(r.buf)
}

// Protection returns the access level currently applied to the region.
func (r *Region) Protection() Protection {
	return r.prot
}

// Protect moves the region to the given access level. It is a no-op when
// the region is already there. A failed mprotect panics: the region holds
// secret bytes and its actual protection is now unknown.
func (r *Region) Protect(p Protection) {
	if r.destroyed {
		panic("pagebuf: use of destroyed region")
	}
	if p == r.prot {
		return
	}
	if err := memcall.Protect(r.buf, p.flag()); err != nil {
		panic(fmt.Sprintf("pagebuf: cannot set region protection to %s: %v", p, err))
	}
	r.prot = p
}

// Wipe widens the region to read-write and overwrites every byte with zero.
// The region stays read-write; callers re-tighten or destroy as appropriate.
func (r *Region) Wipe() {
	r.Protect(ReadWrite)
	core.Wipe(r.buf)
}

// Destroy wipes the region, unpins it, and unmaps it. It is idempotent.
// Unpin or unmap failures panic; a region that cannot be released cleanly
// must not be silently abandoned while pinned.
func (r *Region) Destroy() {
	if r.destroyed {
		return
	}

	r.Wipe()

	if err := memcall.Unlock(r.buf); err != nil {
		panic(fmt.Sprintf("pagebuf: cannot unpin region: %v", err))
	}
	if err := memcall.Free(r.buf); err != nil {
		panic(fmt.Sprintf("pagebuf: cannot unmap region: %v", err))
	}

	r.buf = nil
	r.destroyed = true
}

// Destroyed reports whether Destroy has completed on this region.
func (r *Region) Destroyed() bool {
	return r.destroyed
}
