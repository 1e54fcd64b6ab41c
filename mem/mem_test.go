package mem

import "testing"

func TestAllocFreeBalance(t *testing.T) {
	m := NewPhysmem(4)
	free0 := m.Free()

	a, ok := m.AllocFrame()
	if !ok {
		t.Fatal("alloc failed with frames available")
	}
	if m.Free() != free0-1 {
		t.Fatalf("free count = %d, want %d", m.Free(), free0-1)
	}
	m.FreeFrame(a)
	if m.Free() != free0 {
		t.Fatalf("free count after free = %d, want %d", m.Free(), free0)
	}
}

func TestAllocExhaustion(t *testing.T) {
	m := NewPhysmem(2)
	if _, ok := m.AllocFrame(); !ok {
		t.Fatal("first alloc should succeed")
	}
	if _, ok := m.AllocFrame(); !ok {
		t.Fatal("second alloc should succeed")
	}
	if _, ok := m.AllocFrame(); ok {
		t.Fatal("third alloc should fail: allocator exhausted")
	}
}

func TestDoubleFreePanics(t *testing.T) {
	m := NewPhysmem(2)
	p, _ := m.AllocFrame()
	m.FreeFrame(p)
	defer func() {
		if recover() == nil {
			t.Fatal("double free did not panic")
		}
	}()
	m.FreeFrame(p)
}

func TestCopyPagePhysical(t *testing.T) {
	m := NewPhysmem(4)
	src, _ := m.AllocFrame()
	dst, _ := m.AllocFrame()
	m.Page(src)[0] = 0xab
	m.Page(src)[PGSIZE-1] = 0xcd
	m.CopyPagePhysical(src, dst)
	if m.Page(dst)[0] != 0xab || m.Page(dst)[PGSIZE-1] != 0xcd {
		t.Fatal("copy_page_physical did not copy full frame contents")
	}
}
