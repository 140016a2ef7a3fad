//go:build !linux && !darwin

package commands

const unlimited = ^uint64(0)

// memlockLimit is unavailable here; the doctor skips the limit check and
// relies on the allocation self-tests instead.
func memlockLimit() (soft, hard uint64, supported bool, err error) {
	return 0, 0, false, nil
}
