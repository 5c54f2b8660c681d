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

func TestFlagsU8StorageRoundTrip(t *testing.T) {
	mem := NewLinearMemory(16)
	ft := FlagsType([]string{"read", "write", "exec"})
	v := NewFlagsValue(ft)
	v.Set("write", true)
	if err := ft.Store(mem, 0, v, Options{}); err != nil {
		t.Fatalf("Store error: %v", err)
	}
	got, err := ft.Load(mem, 0, Options{})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	gv := got.(FlagsValue)
	if !gv.Equal(v) {
		t.Errorf("got %v, want %v", gv.Entries(), v.Entries())
	}
	if !gv.Get("write") || gv.Get("read") || gv.Get("exec") {
		t.Errorf("Entries() = %v, want only write set", gv.Entries())
	}
}

func TestFlagsU32StorageFor26Bools(t *testing.T) {
	names := make([]string, 26)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	ft := FlagsType(names)
	v := NewFlagsValue(ft)
	v.Set("a", true)
	v.Set("z", true)

	mem := NewLinearMemory(32)
	if err := ft.Store(mem, 0, v, Options{}); err != nil {
		t.Fatalf("Store error: %v", err)
	}
	got, err := ft.Load(mem, 0, Options{})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	gv := got.(FlagsValue)
	entries := gv.Entries()
	if !reflect.DeepEqual(entries, []string{"a", "z"}) {
		t.Errorf("Entries() = %v, want [a z]", entries)
	}
}

func TestFlagsOver32NeedsMultipleWords(t *testing.T) {
	names := make([]string, 40)
	for i := range names {
		names[i] = string(rune('A' + i))
	}
	ft := FlagsType(names)
	if len(ft.FlatTypes()) != 2 {
		t.Errorf("FlatTypes() len = %d, want 2 (40 flags needs two i32 words)", len(ft.FlatTypes()))
	}
}

func TestFlagsLowerLiftRoundTrip(t *testing.T) {
	ft := FlagsType([]string{"a", "b", "c", "d", "e"})
	v := NewFlagsValue(ft)
	v.Set("b", true)
	v.Set("d", true)

	sink := &SliceSink{}
	if err := ft.Lower(sink, nil, v, Options{}); err != nil {
		t.Fatalf("Lower error: %v", err)
	}
	got, err := ft.Lift(nil, NewSliceIter(sink.Values), Options{})
	if err != nil {
		t.Fatalf("Lift error: %v", err)
	}
	if !got.(FlagsValue).Equal(v) {
		t.Errorf("got %v, want %v", got.(FlagsValue).Entries(), v.Entries())
	}
}

func TestFlagsEqualRequiresSameDeclaredNames(t *testing.T) {
	a := FlagsType([]string{"x", "y"})
	b := FlagsType([]string{"x", "z"})
	va := NewFlagsValue(a)
	vb := NewFlagsValue(b)
	if va.Equal(vb) {
		t.Error("FlagsValues with different declared names should not be Equal, even with identical bits")
	}
}

func TestFlagsSetUnknownNameIsNoop(t *testing.T) {
	ft := FlagsType([]string{"x"})
	v := NewFlagsValue(ft)
	v.Set("not-a-flag", true)
	if len(v.Entries()) != 0 {
		t.Errorf("Entries() = %v, want none set after Set on unknown name", v.Entries())
	}
}

func TestFlagsStorageWidthBySize(t *testing.T) {
	tests := []struct {
		n        int
		wantSize int
	}{
		{0, 0},
		{8, 1},
		{16, 2},
		{32, 4},
		{33, 8},
	}
	for _, tt := range tests {
		names := make([]string, tt.n)
		for i := range names {
			names[i] = string(rune('a' + i%26))
		}
		got := FlagsType(names).Size()
		if got != tt.wantSize {
			t.Errorf("FlagsType(%d names).Size() = %d, want %d", tt.n, got, tt.wantSize)
		}
	}
}
