package vm

import (
	"testing"

	"tasking/mem"
)

// setupUserSpace builds a directory with one mapped user page carrying
// known content, for exercising clone_directory / free_directory.
func setupUserSpace(t *testing.T) *Dir_t {
	t.Helper()
	d := NewAddressSpace()
	frame, ok := mem.Physmem.AllocFrame()
	if !ok {
		t.Fatal("out of frames in test setup")
	}
	mem.Physmem.Page(frame)[0] = 0x42
	d.MapUserPage(10, 0, frame, true)
	return d
}

// directory isomorphism after clone.
func TestCloneDirectoryIsomorphism(t *testing.T) {
	src := setupUserSpace(t)
	dst := CloneDirectory(src)

	for i := range src.Slots {
		s, d := src.Slots[i], dst.Slots[i]
		switch s.Kind {
		case SlotAbsent, SlotSentinel:
			if d.Kind != s.Kind {
				t.Fatalf("slot %d: kind changed across clone", i)
			}
		case SlotKernel:
			if d.Table != s.Table {
				t.Fatalf("slot %d: kernel table not shared by reference", i)
			}
		case SlotUser:
			if d.Table == s.Table {
				t.Fatalf("slot %d: user table not deep-copied", i)
			}
			for e := range s.Table.Entries {
				sp, dp := s.Table.Entries[e], d.Table.Entries[e]
				if sp.Frame == 0 {
					continue
				}
				if dp.Present != sp.Present || dp.RW != sp.RW || dp.User != sp.User {
					t.Fatalf("slot %d entry %d: access bits diverged", i, e)
				}
				if *mem.Physmem.Page(dp.Frame) != *mem.Physmem.Page(sp.Frame) {
					t.Fatalf("slot %d entry %d: page contents diverged", i, e)
				}
			}
		}
	}
}

// no aliased user frames between two independently cloned spaces.
func TestCloneNoAliasedFrames(t *testing.T) {
	src := setupUserSpace(t)
	a := CloneDirectory(src)
	b := CloneDirectory(src)

	seen := map[mem.Pa_t]bool{}
	for _, d := range []*Dir_t{a, b} {
		for _, s := range d.Slots {
			if s.Kind != SlotUser {
				continue
			}
			for _, pte := range s.Table.Entries {
				if pte.Frame == 0 {
					continue
				}
				if seen[pte.Frame] {
					t.Fatalf("frame %d aliased across independently cloned spaces", pte.Frame)
				}
				seen[pte.Frame] = true
			}
		}
	}
}

// reaper dual: free_directory undoes clone_directory's allocator impact.
func TestCloneFreeBalance(t *testing.T) {
	src := setupUserSpace(t)
	before := mem.Physmem.Free()

	dst := CloneDirectory(src)
	if mem.Physmem.Free() >= before {
		t.Fatal("clone_directory did not consume any frames")
	}

	FreeDirectory(dst)
	if mem.Physmem.Free() != before {
		t.Fatalf("allocator balance after free_directory = %d, want %d", mem.Physmem.Free(), before)
	}
}

func TestKernelSlotsNeverFreed(t *testing.T) {
	before := mem.Physmem.Free()
	d := NewAddressSpace()
	FreeDirectory(d)
	if mem.Physmem.Free() != before {
		t.Fatalf("free_directory on an empty address space should only free its own frame: got %d, want %d", mem.Physmem.Free(), before)
	}
	if Kernel.Slots[0].Table == nil {
		t.Fatal("kernel directory corrupted by an unrelated free_directory")
	}
}
