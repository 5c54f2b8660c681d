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

import (
	"reflect"
	"testing"
)

func TestTupleStoreLoadRoundTrip(t *testing.T) {
	mem := NewLinearMemory(64)
	tt := TupleType([]Descriptor{U8, U32, String})
	v := []any{uint8(9), uint32(123), "pair"}
	if err := tt.Store(mem, 0, v, Options{}); err != nil {
		t.Fatalf("Store error: %v", err)
	}
	got, err := tt.Load(mem, 0, Options{})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(got, v) {
		t.Errorf("got %v, want %v", got, v)
	}
}

func TestTupleLowerLiftRoundTrip(t *testing.T) {
	mem := NewLinearMemory(64)
	tt := TupleType([]Descriptor{S32, Float64})
	v := []any{int32(-7), 3.5}
	sink := &SliceSink{}
	if err := tt.Lower(sink, mem, v, Options{}); err != nil {
		t.Fatalf("Lower error: %v", err)
	}
	got, err := tt.Lift(mem, NewSliceIter(sink.Values), Options{})
	if err != nil {
		t.Fatalf("Lift error: %v", err)
	}
	if !reflect.DeepEqual(got, v) {
		t.Errorf("got %v, want %v", got, v)
	}
}

func TestTupleWrongArityFails(t *testing.T) {
	mem := NewLinearMemory(64)
	tt := TupleType([]Descriptor{U8, U32})
	if err := tt.Store(mem, 0, []any{uint8(1)}, Options{}); err == nil {
		t.Error("expected wrong-arity value to fail Store")
	}
}

func TestTupleOffsetsRespectElementAlignment(t *testing.T) {
	// (bool, u64): bool at 0, u64 must land at offset 8.
	tt := TupleType([]Descriptor{Bool, U64})
	if tt.Size() != 16 {
		t.Errorf("Size() = %d, want 16", tt.Size())
	}
}

func TestTupleIsPositionalNotNamed(t *testing.T) {
	if TupleType([]Descriptor{U8}).Kind() != KindTuple {
		t.Error("expected KindTuple")
	}
}
