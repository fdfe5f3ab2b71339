package vm

import "testing"

func TestDecodeIntBoolUnit(t *testing.T) {
	m := New(nil, 4, 4)
	tests := []struct {
		cell StackCell
		want string
	}{
		{mkInt(7), "7"},
		{mkBool(true), "true"},
		{mkUnit(), "()"},
	}
	for _, tt := range tests {
		got, err := m.Decode(tt.cell)
		if err != nil {
			t.Fatalf("Decode(%v): %v", tt.cell, err)
		}
		if got.String() != tt.want {
			t.Errorf("Decode(%v).String() = %q, want %q", tt.cell, got.String(), tt.want)
		}
	}
}

func TestDecodeRejectsFrameCells(t *testing.T) {
	m := New(nil, 4, 4)
	if _, err := m.Decode(mkRA(0)); err == nil {
		t.Error("expected an error decoding a bare RA cell")
	}
	if _, err := m.Decode(mkFP(0)); err == nil {
		t.Error("expected an error decoding a bare FP cell")
	}
}

func TestDecodePair(t *testing.T) {
	m := New(nil, 4, 8)
	idx, ok := m.allocate(3)
	if !ok {
		t.Fatal("allocate failed")
	}
	m.heap[idx] = heapHeader(2, HdrPair)
	m.heap[idx+1] = heapInt(1)
	m.heap[idx+2] = heapBool(false)

	got, err := m.Decode(mkHI(idx))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Kind != DecPair {
		t.Fatalf("Kind = %v, want DecPair", got.Kind)
	}
	if got.String() != "(1, false)" {
		t.Errorf("String() = %q, want %q", got.String(), "(1, false)")
	}
}

func TestDecodeInlInr(t *testing.T) {
	m := New(nil, 4, 8)
	idx, _ := m.allocate(2)
	m.heap[idx] = heapHeader(1, HdrInr)
	m.heap[idx+1] = heapInt(9)

	got, err := m.Decode(mkHI(idx))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Kind != DecInr {
		t.Fatalf("Kind = %v, want DecInr", got.Kind)
	}
	if got.String() != "inr(9)" {
		t.Errorf("String() = %q, want %q", got.String(), "inr(9)")
	}
}

func TestDecodeNestedPairFollowsHeapIndex(t *testing.T) {
	m := New(nil, 4, 16)
	inner, _ := m.allocate(2)
	m.heap[inner] = heapHeader(1, HdrInl)
	m.heap[inner+1] = heapInt(3)

	outer, _ := m.allocate(3)
	m.heap[outer] = heapHeader(2, HdrPair)
	m.heap[outer+1] = heapHI(inner)
	m.heap[outer+2] = heapUnit()

	got, err := m.Decode(mkHI(outer))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.String() != "(inl(3), ())" {
		t.Errorf("String() = %q, want %q", got.String(), "(inl(3), ())")
	}
}

func TestDecodeClosureIsOpaque(t *testing.T) {
	m := New(nil, 4, 8)
	idx, _ := m.allocate(2)
	m.heap[idx] = heapHeader(1, HdrClosure)
	m.heap[idx+1] = heapCI(0)

	got, err := m.Decode(mkHI(idx))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Kind != DecClosure || got.String() != "CLOSURE" {
		t.Errorf("Decode = %+v, want opaque CLOSURE", got)
	}
}

func TestDecodeHeapIndexOutOfBoundIsError(t *testing.T) {
	m := New(nil, 4, 4)
	if _, err := m.Decode(mkHI(99)); err == nil {
		t.Error("expected an error for an out-of-bound heap index")
	}
}

func TestDecodeNonHeaderAtHeapIndexIsError(t *testing.T) {
	m := New(nil, 4, 4)
	idx, _ := m.allocate(1)
	m.heap[idx] = heapInt(1)
	if _, err := m.Decode(mkHI(idx)); err == nil {
		t.Error("expected an error decoding a heap index that isn't a HEADER")
	}
}

func TestDecodedStringHandlesNil(t *testing.T) {
	var d *Decoded
	if got := d.String(); got != "<nil>" {
		t.Errorf("String() = %q, want %q", got, "<nil>")
	}
}
