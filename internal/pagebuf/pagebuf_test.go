package pagebuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlloc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		size     int
		wantSize int
	}{
		{"small_region", 16, 16},
		{"single_byte", 1, 1},
		{"zero_rounds_up", 0, 1},
		{"negative_rounds_up", -5, 1},
		{"page_sized", 4096, 4096},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := Alloc(tt.size)
			require.NoError(t, err)
			defer r.Destroy()

			assert.Equal(t, tt.wantSize, r.Size())
			assert.Equal(t, NoAccess, r.Protection())
		})
	}
}

func TestRegion_ProtectTransitions(t *testing.T) {
	t.Parallel()

	r, err := Alloc(32)
	require.NoError(t, err)
	defer r.Destroy()

	// New regions start out zero-filled and unreadable.
	require.Equal(t, NoAccess, r.Protection())

	r.Protect(ReadOnly)
	assert.Equal(t, ReadOnly, r.Protection())
	for _, b := range r.Bytes() {
		assert.Zero(t, b)
	}

	r.Protect(ReadWrite)
	assert.Equal(t, ReadWrite, r.Protection())
	copy(r.Bytes(), []byte("not a real secret"))

	r.Protect(NoAccess)
	assert.Equal(t, NoAccess, r.Protection())

	// Re-widen and confirm the write survived the no-access window.
	r.Protect(ReadOnly)
	assert.Equal(t, byte('n'), r.Bytes()[0])
}

func TestRegion_ProtectSameLevelIsNoop(t *testing.T) {
	t.Parallel()

	r, err := Alloc(8)
	require.NoError(t, err)
	defer r.Destroy()

	r.Protect(ReadOnly)
	r.Protect(ReadOnly)
	assert.Equal(t, ReadOnly, r.Protection())
}

func TestRegion_WipeZeroesEveryByte(t *testing.T) {
	t.Parallel()

	r, err := Alloc(64)
	require.NoError(t, err)
	defer r.Destroy()

	r.Protect(ReadWrite)
	for i := range r.Bytes() {
		r.Bytes()[i] = 0xAA
	}

	r.Wipe()

	// Wipe leaves the region read-write so the result is inspectable.
	assert.Equal(t, ReadWrite, r.Protection())
	for i, b := range r.Bytes() {
		require.Zerof(t, b, "byte %d not wiped", i)
	}
}

func TestRegion_DestroyIsIdempotent(t *testing.T) {
	t.Parallel()

	r, err := Alloc(16)
	require.NoError(t, err)

	r.Destroy()
	assert.True(t, r.Destroyed())

	// Second destroy must be a no-op, not a double unmap.
	r.Destroy()
	assert.True(t, r.Destroyed())
}

func TestRegion_UseAfterDestroyPanics(t *testing.T) {
	t.Parallel()

	r, err := Alloc(16)
	require.NoError(t, err)
	r.Destroy()

	assert.Panics(t, func() { r.Bytes() })
	assert.Panics(t, func() { r.Protect(ReadOnly) })
}

func TestProtection_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no-access", NoAccess.String())
	assert.Equal(t, "read-only", ReadOnly.String())
	assert.Equal(t, "read-write", ReadWrite.String())
}
