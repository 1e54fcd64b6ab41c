package vm

import "tasking/mem"

// va layout: a 32-bit-style virtual address splits into a 10-bit
// directory slot, a 10-bit table entry, and a 12-bit page offset —
// the classic two-level x86 scheme.
const (
	pageOffsetBits = 12
	pageEntryBits  = 10
	pageOffsetMask = uintptr(1)<<pageOffsetBits - 1
	pageEntryMask  = uintptr(1)<<pageEntryBits - 1
)

func split(va uintptr) (slot, entry int, off uintptr) {
	off = va & pageOffsetMask
	entry = int((va >> pageOffsetBits) & pageEntryMask)
	slot = int((va >> (pageOffsetBits + pageEntryBits)) & pageEntryMask)
	return
}

// Lookup resolves a virtual address to its page-table entry. It
// returns false if no mapping exists; this module never demand-pages
// a fault in, so an unmapped address is always an error to the
// caller.
func (d *Dir_t) Lookup(va uintptr) (*Pte_t, bool) {
	d.Lock()
	defer d.Unlock()
	slot, entry, _ := split(va)
	s := &d.Slots[slot]
	if s.Kind != SlotUser && s.Kind != SlotKernel {
		return nil, false
	}
	pte := &s.Table.Entries[entry]
	if !pte.Present {
		return nil, false
	}
	return pte, true
}

// WriteUser copies src into the address space at va, a page at a
// time, grounded in the teacher's K2user_inner loop (vm/as.go) —
// adapted here to walk Dir_t/Table_t slots instead of a recursive
// pmap, since this module has no demand-paging fault handler to fall
// back on.
func (d *Dir_t) WriteUser(va uintptr, src []uint8) bool {
	for len(src) > 0 {
		pte, ok := d.Lookup(va)
		if !ok || !pte.RW {
			return false
		}
		_, _, off := split(va)
		page := mem.Physmem.Page(pte.Frame)
		n := copy(page[off:], src)
		src = src[n:]
		va += uintptr(n)
	}
	return true
}

// ReadUser is the read-side dual of WriteUser.
func (d *Dir_t) ReadUser(va uintptr, dst []uint8) bool {
	for len(dst) > 0 {
		pte, ok := d.Lookup(va)
		if !ok {
			return false
		}
		_, _, off := split(va)
		page := mem.Physmem.Page(pte.Frame)
		n := copy(dst, page[off:])
		dst = dst[n:]
		va += uintptr(n)
	}
	return true
}
