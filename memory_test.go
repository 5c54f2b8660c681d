// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmcore

import "testing"

func TestLinearMemoryReadWriteRoundTrip(t *testing.T) {
	mem := NewLinearMemory(64)

	if err := mem.WriteU8(0, 0xAB); err != nil {
		t.Fatal(err)
	}
	if v, err := mem.ReadU8(0); err != nil || v != 0xAB {
		t.Errorf("ReadU8 = %d, %v, want 0xAB, nil", v, err)
	}

	if err := mem.WriteU16(2, 0x1234); err != nil {
		t.Fatal(err)
	}
	if v, err := mem.ReadU16(2); err != nil || v != 0x1234 {
		t.Errorf("ReadU16 = %x, %v, want 0x1234, nil", v, err)
	}

	if err := mem.WriteU32(4, 0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	if v, err := mem.ReadU32(4); err != nil || v != 0xDEADBEEF {
		t.Errorf("ReadU32 = %x, %v, want 0xDEADBEEF, nil", v, err)
	}

	if err := mem.WriteU64(8, 0x1122334455667788); err != nil {
		t.Fatal(err)
	}
	if v, err := mem.ReadU64(8); err != nil || v != 0x1122334455667788 {
		t.Errorf("ReadU64 = %x, %v, want 0x1122334455667788, nil", v, err)
	}
}

func TestLinearMemoryLittleEndian(t *testing.T) {
	mem := NewLinearMemory(8)
	if err := mem.WriteU32(0, 0x01020304); err != nil {
		t.Fatal(err)
	}
	raw, err := mem.ReadBytes(0, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x04, 0x03, 0x02, 0x01}
	for i := range want {
		if raw[i] != want[i] {
			t.Fatalf("bytes = %v, want %v", raw, want)
		}
	}
}

func TestLinearMemoryOutOfBounds(t *testing.T) {
	mem := NewLinearMemory(4)
	if _, err := mem.ReadU32(2); err == nil {
		t.Fatal("expected out-of-bounds error")
	}
	_, err := mem.ReadU32(100)
	if _, ok := err.(*ABIViolation); !ok {
		t.Errorf("expected *ABIViolation, got %T (%v)", err, err)
	}
}

func TestLinearMemoryAllocGrowsAndWatermarks(t *testing.T) {
	mem := NewLinearMemory(4)
	p1, err := mem.Alloc(4, 8)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := mem.Alloc(4, 8)
	if err != nil {
		t.Fatal(err)
	}
	if p2 < p1+8 {
		t.Errorf("second allocation %d overlaps first %d+8", p2, p1)
	}
	if err := mem.WriteBytes(p1, []byte{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteBytes(p2, []byte{9, 9, 9, 9, 9, 9, 9, 9}); err != nil {
		t.Fatal(err)
	}
	raw, err := mem.ReadBytes(p1, 8)
	if err != nil {
		t.Fatal(err)
	}
	if raw[0] != 1 || raw[7] != 8 {
		t.Errorf("allocation p2 clobbered p1's bytes: %v", raw)
	}
}

func TestLinearMemoryAllocRespectsAlignment(t *testing.T) {
	mem := NewLinearMemory(4)
	if _, err := mem.Alloc(1, 1); err != nil {
		t.Fatal(err)
	}
	p, err := mem.Alloc(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if p%8 != 0 {
		t.Errorf("Alloc(8, 8) returned unaligned pointer %d", p)
	}
}

func TestLinearMemoryRealloc(t *testing.T) {
	mem := NewLinearMemory(16)
	p, err := mem.Alloc(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteBytes(p, []byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	p2, err := mem.Realloc(p, 4, 4, 8)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := mem.ReadBytes(p2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if raw[0] != 1 || raw[3] != 4 {
		t.Errorf("Realloc did not preserve old contents: %v", raw)
	}

	// Shrinking returns the same pointer (spec: grow/shrink semantics,
	// and the core never frees, so a shrink is a no-op on the pointer).
	p3, err := mem.Realloc(p2, 8, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if p3 != p2 {
		t.Errorf("Realloc shrink returned new pointer %d, want %d", p3, p2)
	}
}
