package format

import "testing"

func TestPackUnpack(t *testing.T) {
	tests := []struct {
		size  uint32
		alloc bool
		word  uint32
	}{
		{0, true, 0x1},
		{8, true, 0x9},
		{16, false, 0x10},
		{4096, true, 0x1001},
		{1 << 20, false, 1 << 20},
	}
	for _, tt := range tests {
		w := Pack(tt.size, tt.alloc)
		if w != tt.word {
			t.Fatalf("Pack(%d, %v) = %#x, want %#x", tt.size, tt.alloc, w, tt.word)
		}
		got := Unpack(w)
		if got.Size != tt.size || got.Allocated != tt.alloc {
			t.Fatalf("Unpack(%#x) = %+v", w, got)
		}
	}
}

func TestPackDropsLowBits(t *testing.T) {
	if got := Unpack(Pack(23, false)); got.Size != 16 {
		t.Fatalf("size low bits should be masked, got %d", got.Size)
	}
}

func TestTagEpilogue(t *testing.T) {
	if !Unpack(Pack(0, true)).IsEpilogue() {
		t.Fatalf("zero/alloc should be the epilogue")
	}
	if Unpack(Pack(0, false)).IsEpilogue() {
		t.Fatalf("zero/free is not an epilogue")
	}
}

func TestReadWriteTag(t *testing.T) {
	b := make([]byte, 16)
	WriteTag(b, 4, Tag{Size: 24, Allocated: true})
	if got := ReadU32(b, 4); got != 25 {
		t.Fatalf("raw word = %d, want 25", got)
	}
	if got := ReadTag(b, 4); got != (Tag{Size: 24, Allocated: true}) {
		t.Fatalf("ReadTag = %+v", got)
	}
}
