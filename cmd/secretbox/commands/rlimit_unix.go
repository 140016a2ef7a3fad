//go:build linux || darwin

package commands

import "golang.org/x/sys/unix"

const unlimited uint64 = unix.RLIM_INFINITY

// memlockLimit reports the soft and hard RLIMIT_MEMLOCK values.
func memlockLimit() (soft, hard uint64, supported bool, err error) {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_MEMLOCK, &rl); err != nil {
		return 0, 0, true, err
	}
	return rl.Cur, rl.Max, true, nil
}
