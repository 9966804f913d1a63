//go:build !linux

package capture

// setAffinity is a no-op on platforms with no SCHED_SETAFFINITY equivalent
// reachable from Go; core_affinity is advisory there.
func setAffinity(cpu int) error { return nil }
