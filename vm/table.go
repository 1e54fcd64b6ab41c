// Package vm implements a two-level x86-style page-table hierarchy:
// 1024-entry page directories and page tables, kernel/user sharing,
// and the eager (non-COW, non-demand-paged) cloning operations that
// are this package's centerpiece. It is adapted from biscuit's
// vm/as.go — the locking discipline and naming survive, but the
// page-fault/COW machinery does not, since this module has no fault
// handler to drive it.
package vm

import (
	"sync"

	"tasking/mem"
)

// NumSlots is the number of entries in a page directory or page table.
const NumSlots = 1024

// SlotKind classifies a page-directory entry.
type SlotKind int

const (
	// SlotAbsent marks an unused directory slot.
	SlotAbsent SlotKind = iota
	// SlotSentinel marks a reserved/forbidden slot (all-ones in the
	// original bit-packed representation) that must never be cloned
	// or freed.
	SlotSentinel
	// SlotKernel marks a slot whose table is shared, by reference,
	// with every address space's copy of the same slot.
	SlotKernel
	// SlotUser marks a slot whose table is private to one directory.
	SlotUser
)

// Pte_t is a single page-table entry.
type Pte_t struct {
	Frame    mem.Pa_t
	Present  bool
	RW       bool
	User     bool
	Accessed bool
	Dirty    bool
}

// Table_t is a page table: 1024 page entries plus the physical frame
// backing the table's own storage (freed along with its mappings).
type Table_t struct {
	Entries  [NumSlots]Pte_t
	physSelf mem.Pa_t
}

func newTable() *Table_t {
	p, ok := mem.Physmem.AllocFrame()
	if !ok {
		panic("out of physical memory allocating page table")
	}
	return &Table_t{physSelf: p}
}

// Slot_t is one entry of a page directory: either empty, a sentinel,
// or a reference to a page table plus the simulated physical address
// and permission bits that would live in the hardware-visible
// physical_tables array in the original design.
type Slot_t struct {
	Kind  SlotKind
	Table *Table_t
	Phys  mem.Pa_t
	Perm  Perm_t
}

// Perm_t packs the low permission bits stored alongside a directory
// slot's physical address (user | rw | present).
type Perm_t uint8

const (
	PermPresent Perm_t = 1 << 0
	PermRW      Perm_t = 1 << 1
	PermUser    Perm_t = 1 << 2
)

// Dir_t is a page directory: 1024 slots plus the physical address at
// which the slot array itself resides, as required by the MMU.
type Dir_t struct {
	sync.Mutex
	Slots           [NumSlots]Slot_t
	PhysicalAddress mem.Pa_t
}

func newDir() *Dir_t {
	p, ok := mem.Physmem.AllocFrame()
	if !ok {
		panic("out of physical memory allocating page directory")
	}
	return &Dir_t{PhysicalAddress: p}
}

// Kernel is the global kernel directory. Every other directory shares
// this directory's kernel-marked slots by reference: a kernel table
// is the *same* table object across all address spaces.
var Kernel = newKernelDirectory()

func newKernelDirectory() *Dir_t {
	d := newDir()
	// A handful of low slots model the kernel's own text/data/stack
	// mappings; one reserved slot models the sentinel convention used
	// to forbid a directory region from ever being mapped.
	for i := 0; i < 4; i++ {
		t := newTable()
		d.Slots[i] = Slot_t{Kind: SlotKernel, Table: t, Phys: t.physSelf,
			Perm: PermPresent | PermRW}
	}
	d.Slots[4] = Slot_t{Kind: SlotSentinel}
	return d
}

// NewAddressSpace returns a fresh directory sharing the kernel's
// slots by reference, with no user mappings — the starting point for
// a freshly spawned task's address space.
func NewAddressSpace() *Dir_t {
	d := newDir()
	for i, s := range Kernel.Slots {
		if s.Kind == SlotKernel || s.Kind == SlotSentinel {
			d.Slots[i] = s
		}
	}
	return d
}

// MapUserPage installs a single user mapping at (slot, entry),
// allocating a page table for the slot on first use. It exists for
// tests and for higher layers that populate a fresh address space —
// cloning and freeing only ever operate on spaces already populated
// this way.
func (d *Dir_t) MapUserPage(slot, entry int, frame mem.Pa_t, rw bool) {
	d.Lock()
	defer d.Unlock()
	s := &d.Slots[slot]
	if s.Kind == SlotAbsent {
		t := newTable()
		*s = Slot_t{Kind: SlotUser, Table: t, Phys: t.physSelf,
			Perm: PermPresent | PermRW | PermUser}
	}
	if s.Kind != SlotUser {
		panic("slot is not a user slot")
	}
	s.Table.Entries[entry] = Pte_t{Frame: frame, Present: true, RW: rw, User: true}
}
