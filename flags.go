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

import "github.com/samber/lo"

// flagsStorage is the storage-width variant chosen at construction time
// from the flag count (spec §4.5, design note: "flag storage
// polymorphism... should become an explicit tagged variant").
type flagsStorage int

const (
	flagsStorageNone flagsStorage = iota
	flagsStorageU8
	flagsStorageU16
	flagsStorageU32
	flagsStorageArray
)

// flagsDescriptor implements a packed boolean bitfield (spec §4.5).
type flagsDescriptor struct {
	names   []string
	index   map[string]int
	storage flagsStorage
	words   int // number of 32-bit words, only meaningful for flagsStorageArray
}

// FlagsType builds a flags descriptor from flag names in declared
// order; that order is the descriptor's permanent bit assignment and
// its Entries() iteration order (spec §9 Open Question: "re-encoders
// should rely on the descriptor's stored order, not a hash-map
// iteration order").
func FlagsType(names []string) Descriptor {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	n := len(names)
	var storage flagsStorage
	switch {
	case n == 0:
		storage = flagsStorageNone
	case n <= 8:
		storage = flagsStorageU8
	case n <= 16:
		storage = flagsStorageU16
	case n <= 32:
		storage = flagsStorageU32
	default:
		storage = flagsStorageArray
	}
	words := (n + 31) / 32
	return flagsDescriptor{names: names, index: idx, storage: storage, words: words}
}

func (f flagsDescriptor) Kind() Kind { return KindFlags }

func (f flagsDescriptor) Size() int {
	switch f.storage {
	case flagsStorageNone:
		return 0
	case flagsStorageU8:
		return 1
	case flagsStorageU16:
		return 2
	case flagsStorageU32:
		return 4
	default:
		return f.words * 4
	}
}

func (f flagsDescriptor) Alignment() int {
	switch f.storage {
	case flagsStorageNone:
		return 1
	case flagsStorageU8:
		return 1
	case flagsStorageU16:
		return 2
	default:
		return 4
	}
}

func (f flagsDescriptor) FlatTypes() []FlatType {
	if f.storage == flagsStorageNone {
		return nil
	}
	n := f.words
	if f.storage != flagsStorageArray {
		n = 1
	}
	out := make([]FlatType, n)
	for i := range out {
		out[i] = FlatI32
	}
	return out
}

// FlagsValue is the native form of a flags<> value: a mutable bitset
// bound to the descriptor that produced it.
type FlagsValue struct {
	desc  flagsDescriptor
	words []uint32
}

// NewFlagsValue returns a zero-valued FlagsValue for d.
func NewFlagsValue(d Descriptor) FlagsValue {
	fd := d.(flagsDescriptor)
	return FlagsValue{desc: fd, words: make([]uint32, fd.words)}
}

// Get reports whether the named flag is set.
func (v FlagsValue) Get(name string) bool {
	i, ok := v.desc.index[name]
	if !ok {
		return false
	}
	return v.words[i>>5]&(1<<uint(i&31)) != 0
}

// Set mutates the named flag in place.
func (v FlagsValue) Set(name string, on bool) {
	i, ok := v.desc.index[name]
	if !ok {
		return
	}
	if on {
		v.words[i>>5] |= 1 << uint(i&31)
	} else {
		v.words[i>>5] &^= 1 << uint(i&31)
	}
}

// Entries returns the flags currently set, in declared-name order.
func (v FlagsValue) Entries() []string {
	return lo.Filter(v.desc.names, func(name string, _ int) bool {
		return v.Get(name)
	})
}

// Equal reports whether two FlagsValues share the same declared-name
// sequence and the same underlying bits (spec §9 Open Question: two
// flag values with the same bits but different declared fields are
// unequal).
func (v FlagsValue) Equal(other FlagsValue) bool {
	if len(v.desc.names) != len(other.desc.names) {
		return false
	}
	for i, n := range v.desc.names {
		if other.desc.names[i] != n {
			return false
		}
	}
	if len(v.words) != len(other.words) {
		return false
	}
	for i := range v.words {
		if v.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

func (f flagsDescriptor) Load(mem Memory, ptr uint32, _ Options) (any, error) {
	v := NewFlagsValue(f)
	for i := 0; i < f.words; i++ {
		var word uint32
		var err error
		switch f.storage {
		case flagsStorageU8:
			var b uint8
			b, err = mem.ReadU8(ptr)
			word = uint32(b)
		case flagsStorageU16:
			var h uint16
			h, err = mem.ReadU16(ptr)
			word = uint32(h)
		default:
			word, err = mem.ReadU32(ptr + uint32(i*4))
		}
		if err != nil {
			return nil, err
		}
		v.words[i] = word
	}
	return v, nil
}

func (f flagsDescriptor) Store(mem Memory, ptr uint32, val any, _ Options) error {
	v, ok := val.(FlagsValue)
	if !ok {
		return newValidationError(KindFlags, val, "expected FlagsValue")
	}
	for i := 0; i < f.words; i++ {
		var err error
		switch f.storage {
		case flagsStorageU8:
			err = mem.WriteU8(ptr, uint8(v.words[i]))
		case flagsStorageU16:
			err = mem.WriteU16(ptr, uint16(v.words[i]))
		default:
			err = mem.WriteU32(ptr+uint32(i*4), v.words[i])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (f flagsDescriptor) Lift(_ Memory, it FlatIter, _ Options) (any, error) {
	v := NewFlagsValue(f)
	n := f.words
	if f.storage != flagsStorageArray {
		n = 1
		if f.storage == flagsStorageNone {
			n = 0
		}
	}
	for i := 0; i < n; i++ {
		slot, ok := it.Next()
		if !ok {
			return nil, newABIViolation("flags.lift: expected %d flat slots", n)
		}
		if i < len(v.words) {
			v.words[i] = uint32(slot.I32)
		}
	}
	return v, nil
}

func (f flagsDescriptor) Lower(sink FlatSink, _ Memory, val any, _ Options) error {
	v, ok := val.(FlagsValue)
	if !ok {
		return newValidationError(KindFlags, val, "expected FlagsValue")
	}
	n := f.words
	if f.storage != flagsStorageArray {
		n = 1
		if f.storage == flagsStorageNone {
			n = 0
		}
	}
	for i := 0; i < n; i++ {
		var word uint32
		if i < len(v.words) {
			word = v.words[i]
		}
		sink.Push(FlatI32Value(int32(word)))
	}
	return nil
}
