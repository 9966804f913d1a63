//go:build linux

package capture

import "golang.org/x/sys/unix"

// setAffinity pins the calling OS thread to cpu, per §5's "pinned to
// core_affinity when ≥ 0". Go has no native thread-pinning API; this is the
// only OS-affinity-adjacent dependency anywhere in the retrieved corpus, so
// this module wires it in for exactly this purpose (see DESIGN.md).
func setAffinity(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
