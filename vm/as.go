package vm

import "tasking/mem"

// CloneTable deep-copies a user page table: a fresh table and fresh
// physical frame are allocated, access bits are mirrored, and page
// contents are copied frame-to-frame via CopyPagePhysical. Zero-frame
// (unmapped) entries are skipped. An allocation failure from the frame
// allocator is fatal: no partially-cloned table is ever returned.
func CloneTable(src *Table_t) *Table_t {
	dst := newTable()
	for i, pte := range src.Entries {
		if pte.Frame == 0 {
			continue
		}
		nf, ok := mem.Physmem.AllocFrame()
		if !ok {
			panic("out of physical memory cloning page table")
		}
		mem.Physmem.CopyPagePhysical(pte.Frame, nf)
		dst.Entries[i] = Pte_t{
			Frame:    nf,
			Present:  pte.Present,
			RW:       pte.RW,
			User:     pte.User,
			Accessed: pte.Accessed,
			Dirty:    pte.Dirty,
		}
	}
	return dst
}

// CloneDirectory deep-copies a page directory, delegating per-table
// work to CloneTable. Absent and sentinel slots are carried over
// unchanged (no table is cloned for them); kernel
// slots are shared by reference (same Table_t, verbatim Phys/Perm);
// user slots are deep-copied and installed with permission bits
// user|rw|present.
func CloneDirectory(src *Dir_t) *Dir_t {
	src.Lock()
	defer src.Unlock()
	dst := newDir()
	for i, s := range src.Slots {
		switch s.Kind {
		case SlotAbsent, SlotSentinel:
			dst.Slots[i] = s
		case SlotKernel:
			dst.Slots[i] = s
		case SlotUser:
			nt := CloneTable(s.Table)
			dst.Slots[i] = Slot_t{
				Kind:  SlotUser,
				Table: nt,
				Phys:  nt.physSelf,
				Perm:  PermUser | PermRW | PermPresent,
			}
		default:
			panic("unknown slot kind")
		}
	}
	return dst
}

// FreeDirectory is the dual of CloneDirectory: every non-kernel,
// non-sentinel table has its mapped frames and its own storage freed,
// then the directory itself is freed. Kernel tables are never freed
// here, since they are shared across every address space.
func FreeDirectory(d *Dir_t) {
	d.Lock()
	for _, s := range d.Slots {
		if s.Kind != SlotUser {
			continue
		}
		for _, pte := range s.Table.Entries {
			if pte.Frame != 0 {
				mem.Physmem.FreeFrame(pte.Frame)
			}
		}
		mem.Physmem.FreeFrame(s.Table.physSelf)
	}
	d.Unlock()
	mem.Physmem.FreeFrame(d.PhysicalAddress)
}
