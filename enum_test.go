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

func colorEnum() Descriptor {
	return EnumType([]string{"red", "green", "blue"})
}

func TestEnumStoreLoadRoundTrip(t *testing.T) {
	mem := NewLinearMemory(8)
	et := colorEnum()
	if err := et.Store(mem, 0, "green", Options{}); err != nil {
		t.Fatalf("Store error: %v", err)
	}
	got, err := et.Load(mem, 0, Options{})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	ev := got.(EnumValue)
	if ev.Index != 1 || ev.Name != "green" {
		t.Errorf("got %+v, want {1 green}", ev)
	}
}

func TestEnumAcceptsEnumValueIntOrString(t *testing.T) {
	mem := NewLinearMemory(8)
	et := colorEnum()

	if err := et.Store(mem, 0, EnumValue{Index: 2, Name: "blue"}, Options{}); err != nil {
		t.Fatalf("Store(EnumValue) error: %v", err)
	}
	if err := et.Store(mem, 0, 0, Options{}); err != nil {
		t.Fatalf("Store(int) error: %v", err)
	}
	if err := et.Store(mem, 0, "red", Options{}); err != nil {
		t.Fatalf("Store(string) error: %v", err)
	}
}

func TestEnumUnknownNameFails(t *testing.T) {
	mem := NewLinearMemory(8)
	et := colorEnum()
	if err := et.Store(mem, 0, "purple", Options{}); err == nil {
		t.Error("expected unknown enum case name to fail Store")
	}
}

func TestEnumOutOfRangeIndexFails(t *testing.T) {
	mem := NewLinearMemory(8)
	et := colorEnum()
	if err := et.Store(mem, 0, 99, Options{}); err == nil {
		t.Error("expected out-of-range enum index to fail Store")
	}
}

func TestEnumLowerLiftRoundTrip(t *testing.T) {
	et := colorEnum()
	sink := &SliceSink{}
	if err := et.Lower(sink, nil, "blue", Options{}); err != nil {
		t.Fatalf("Lower error: %v", err)
	}
	got, err := et.Lift(nil, NewSliceIter(sink.Values), Options{})
	if err != nil {
		t.Fatalf("Lift error: %v", err)
	}
	if got.(EnumValue).Name != "blue" {
		t.Errorf("got %+v, want blue", got)
	}
}

func TestEnumSizeEqualsDiscriminantSize(t *testing.T) {
	et := colorEnum()
	if et.Size() != 1 {
		t.Errorf("Size() = %d, want 1 (3 cases fits u8 discriminant)", et.Size())
	}
	if len(et.FlatTypes()) != 1 || et.FlatTypes()[0] != FlatI32 {
		t.Errorf("FlatTypes() = %v, want [i32]", et.FlatTypes())
	}
}
