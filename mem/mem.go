// Package mem implements the physical frame allocator and the raw
// page/page-table types shared by the tasking core. It is adapted
// from biscuit's mem package: the same free-list-of-indices allocator
// design, trimmed to what a non-demand-paged, non-COW kernel needs.
package mem

import "fmt"

// PGSHIFT is the base-2 exponent for the page size.
const PGSHIFT uint = 12

// PGSIZE is the size of a single page in bytes.
const PGSIZE int = 1 << PGSHIFT

// Pa_t represents a physical address (frame-granular).
type Pa_t uintptr

// Pg_t is a physical page's contents, addressed as bytes so that
// copy_page_physical can be expressed as a plain byte copy.
type Pg_t [PGSIZE]uint8

// Physpg_t tracks one physical frame.
type Physpg_t struct {
	refcnt int32
	nexti  uint32
	inuse  bool
}

// Physmem_t is the global physical frame allocator. It hands out
// frames backed by ordinary Go memory (there is no real physical
// address space to manage), but it tracks allocation/free counts
// precisely so that allocator balance across clone_directory and
// free_directory is meaningful to test.
type Physmem_t struct {
	pgs     []Physpg_t
	backing []*Pg_t
	freei   uint32
	freelen int32
}

// Physmem is the global frame allocator instance, sized generously
// for simulation/testing purposes.
var Physmem = NewPhysmem(1 << 16)

// NewPhysmem constructs a frame allocator with n simulated physical
// frames. Tests that need a tight allocator (to exercise allocation
// failure paths) construct their own instance rather than using the
// shared Physmem.
func NewPhysmem(n int) *Physmem_t {
	phys := &Physmem_t{
		pgs:     make([]Physpg_t, n),
		backing: make([]*Pg_t, n),
	}
	for i := range phys.pgs {
		phys.backing[i] = &Pg_t{}
		phys.pgs[i].nexti = uint32(i + 1)
	}
	phys.pgs[n-1].nexti = ^uint32(0)
	phys.freei = 0
	phys.freelen = int32(n)
	return phys
}

// AllocFrame binds a fresh, zero-filled physical frame and returns its
// address. It is the simulation's alloc_frame.
func (phys *Physmem_t) AllocFrame() (Pa_t, bool) {
	if phys.freei == ^uint32(0) {
		return 0, false
	}
	idx := phys.freei
	phys.freei = phys.pgs[idx].nexti
	phys.freelen--
	if phys.freelen < 0 {
		panic("negative free count")
	}
	phys.pgs[idx].inuse = true
	phys.pgs[idx].refcnt = 1
	for i := range phys.backing[idx] {
		phys.backing[idx][i] = 0
	}
	return Pa_t(idx + 1), true
}

// FreeFrame releases a previously allocated frame. It is the
// simulation's free_frame and panics on double-free, matching the
// teacher's habit of treating frame-accounting corruption as fatal.
func (phys *Physmem_t) FreeFrame(p Pa_t) {
	idx := uint32(p) - 1
	if !phys.pgs[idx].inuse {
		panic("double free of physical frame")
	}
	phys.pgs[idx].inuse = false
	phys.pgs[idx].refcnt = 0
	phys.pgs[idx].nexti = phys.freei
	phys.freei = idx
	phys.freelen++
}

// Page returns the byte contents backing a frame, for CopyPagePhysical
// and for tests that want to inspect/poke frame contents directly.
func (phys *Physmem_t) Page(p Pa_t) *Pg_t {
	idx := uint32(p) - 1
	return phys.backing[idx]
}

// CopyPagePhysical copies the full contents of one physical frame into
// another, bypassing any virtual mapping — required because a freshly
// allocated destination frame is not necessarily mapped in the active
// address space at cloning time.
func (phys *Physmem_t) CopyPagePhysical(src, dst Pa_t) {
	*phys.Page(dst) = *phys.Page(src)
}

// Free reports the number of unallocated frames, used by tests to
// assert allocator balance.
func (phys *Physmem_t) Free() int {
	return int(phys.freelen)
}

// Refcnt reports a frame's reference count (always 1 for frames
// managed by this non-COW allocator; kept for parity with the
// teacher's Physmem_t.Refcnt and for future extension).
func (phys *Physmem_t) Refcnt(p Pa_t) int {
	return int(phys.pgs[uint32(p)-1].refcnt)
}

func (phys *Physmem_t) String() string {
	return fmt.Sprintf("physmem: %d/%d frames free", phys.freelen, len(phys.pgs))
}
