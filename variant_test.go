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

// okErrVariant mirrors the spec §8 variant{ok:u32, err:f32} example.
func okErrVariant() Descriptor {
	return VariantType([]VariantCase{
		{Name: "ok", Type: U32},
		{Name: "err", Type: Float32},
	}, nil, nil)
}

func TestVariantStoreLoadRoundTripBothCases(t *testing.T) {
	mem := NewLinearMemory(32)
	vt := okErrVariant()

	ok := VariantValue{CaseIndex: 0, CaseName: "ok", Payload: uint32(7)}
	if err := vt.Store(mem, 0, ok, Options{}); err != nil {
		t.Fatalf("Store(ok) error: %v", err)
	}
	got, err := vt.Load(mem, 0, Options{})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	gv := got.(VariantValue)
	if gv.CaseIndex != 0 || gv.CaseName != "ok" || gv.Payload != uint32(7) {
		t.Errorf("got %+v, want ok(7)", gv)
	}

	errv := VariantValue{CaseIndex: 1, CaseName: "err", Payload: float32(1.5)}
	if err := vt.Store(mem, 0, errv, Options{}); err != nil {
		t.Fatalf("Store(err) error: %v", err)
	}
	got, err = vt.Load(mem, 0, Options{})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	gv = got.(VariantValue)
	if gv.CaseIndex != 1 || gv.CaseName != "err" || gv.Payload != float32(1.5) {
		t.Errorf("got %+v, want err(1.5)", gv)
	}
}

func TestVariantLowerLiftRoundTripJoinedSlot(t *testing.T) {
	vt := okErrVariant()
	// ok:u32 wants [i32], err:f32 wants [f32]; joined tail is [i32]
	// (spec §8: "joins to i32"), so the variant carries exactly 2 flat
	// slots total (discriminant + one joined payload slot).
	if len(vt.FlatTypes()) != 2 {
		t.Fatalf("FlatTypes() len = %d, want 2", len(vt.FlatTypes()))
	}

	sink := &SliceSink{}
	in := VariantValue{CaseIndex: 1, CaseName: "err", Payload: float32(-2.5)}
	if err := vt.Lower(sink, nil, in, Options{}); err != nil {
		t.Fatalf("Lower error: %v", err)
	}
	got, err := vt.Lift(nil, NewSliceIter(sink.Values), Options{})
	if err != nil {
		t.Fatalf("Lift error: %v", err)
	}
	gv := got.(VariantValue)
	if gv.CaseIndex != 1 || gv.Payload != float32(-2.5) {
		t.Errorf("got %+v, want err(-2.5)", gv)
	}
}

func TestVariantNoPayloadCaseRejectsPayload(t *testing.T) {
	mem := NewLinearMemory(16)
	vt := VariantType([]VariantCase{
		{Name: "none", Type: nil},
		{Name: "some", Type: U32},
	}, nil, nil)
	bad := VariantValue{CaseIndex: 0, CaseName: "none", Payload: uint32(1)}
	if err := vt.Store(mem, 0, bad, Options{}); err == nil {
		t.Error("expected payload on a no-payload case to fail Store")
	}
}

func TestVariantDiscriminantOutOfRangeFails(t *testing.T) {
	mem := NewLinearMemory(16)
	vt := okErrVariant()
	if err := mem.WriteU32(0, 99); err != nil {
		t.Fatal(err)
	}
	if _, err := vt.Load(mem, 0, Options{}); err == nil {
		t.Error("expected out-of-range discriminant to fail Load")
	}
}

func TestDiscriminantWidthByCaseCount(t *testing.T) {
	tests := []struct {
		n            int
		wantSize     int
		wantAlign    int
	}{
		{2, 1, 1},
		{256, 1, 1},
		{257, 2, 2},
		{65536, 2, 2},
		{65537, 4, 4},
	}
	for _, tt := range tests {
		size, align := discriminantWidth(tt.n)
		if size != tt.wantSize || align != tt.wantAlign {
			t.Errorf("discriminantWidth(%d) = (%d,%d), want (%d,%d)", tt.n, size, align, tt.wantSize, tt.wantAlign)
		}
	}
}

func TestVariantPayloadOffsetRespectsMaxCaseAlignment(t *testing.T) {
	// u8 discriminant (<=256 cases) but a u64 payload forces 8-byte
	// alignment for the payload offset.
	vt := VariantType([]VariantCase{
		{Name: "a", Type: nil},
		{Name: "b", Type: U64},
	}, nil, nil).(variantDescriptor)
	if vt.payloadOffset != 8 {
		t.Errorf("payloadOffset = %d, want 8", vt.payloadOffset)
	}
	if vt.align != 8 {
		t.Errorf("align = %d, want 8", vt.align)
	}
}

func TestVariantCustomCtorDtor(t *testing.T) {
	type wrapped struct {
		idx int
		val any
	}
	ctor := func(caseIndex int, _ string, payload any) any { return wrapped{idx: caseIndex, val: payload} }
	dtor := func(v any) (int, any, error) {
		w := v.(wrapped)
		return w.idx, w.val, nil
	}
	vt := VariantType([]VariantCase{
		{Name: "a", Type: U32},
		{Name: "b", Type: U32},
	}, ctor, dtor)

	mem := NewLinearMemory(16)
	if err := vt.Store(mem, 0, wrapped{idx: 1, val: uint32(5)}, Options{}); err != nil {
		t.Fatalf("Store error: %v", err)
	}
	got, err := vt.Load(mem, 0, Options{})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	w := got.(wrapped)
	if w.idx != 1 || w.val != uint32(5) {
		t.Errorf("got %+v, want idx=1 val=5", w)
	}
}
