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

// FlatType is one of the four primitive machine types a value occupies
// on the flat stack (spec §2, GLOSSARY).
type FlatType int

const (
	FlatI32 FlatType = iota
	FlatI64
	FlatF32
	FlatF64
)

func (f FlatType) String() string {
	switch f {
	case FlatI32:
		return "i32"
	case FlatI64:
		return "i64"
	case FlatF32:
		return "f32"
	case FlatF64:
		return "f64"
	default:
		return "unknown"
	}
}

// FlatValue is one slot on the flat stack: a tagged union over the four
// machine types. Only the field matching Type is meaningful.
type FlatValue struct {
	Type FlatType
	I32  int32
	I64  int64
	F32  float32
	F64  float64
}

func FlatI32Value(v int32) FlatValue   { return FlatValue{Type: FlatI32, I32: v} }
func FlatI64Value(v int64) FlatValue   { return FlatValue{Type: FlatI64, I64: v} }
func FlatF32Value(v float32) FlatValue { return FlatValue{Type: FlatF32, F32: v} }
func FlatF64Value(v float64) FlatValue { return FlatValue{Type: FlatF64, F64: v} }

// AsI32 returns the flat slot as an i32: an i32 slot as is, an i64
// slot truncated to its low 32 bits, an f32 slot bit-cast to i32. An
// f64 slot yields 0.
func (v FlatValue) AsI32() int32 {
	switch v.Type {
	case FlatI32:
		return v.I32
	case FlatI64:
		return int32(v.I64)
	case FlatF32:
		return int32(bitcastF32ToI32(v.F32))
	}
	return 0
}

// FlatSink is an append-only destination for lowered flat values (spec
// §3, §5: "a flat sink is append-only").
type FlatSink interface {
	Push(FlatValue)
}

// SliceSink is a FlatSink backed by a growable slice, the concrete sink
// used by Lower in tests and by call_wasm/call_service.
type SliceSink struct {
	Values []FlatValue
}

func (s *SliceSink) Push(v FlatValue) { s.Values = append(s.Values, v) }

// FlatIter is a single-pass, linear iterator over a flat value stream
// (spec §3, §5): each Next call consumes exactly one slot. Descriptors
// must consume exactly len(flat_types) slots from it.
type FlatIter interface {
	// Next returns the next slot and advances the iterator. ok is false
	// if the stream is exhausted.
	Next() (FlatValue, bool)
}

// SliceIter is a FlatIter over a fixed slice of already-produced flat
// values.
type SliceIter struct {
	values []FlatValue
	pos    int
}

// NewSliceIter wraps values as a single-pass FlatIter.
func NewSliceIter(values []FlatValue) *SliceIter {
	return &SliceIter{values: values}
}

func (it *SliceIter) Next() (FlatValue, bool) {
	if it.pos >= len(it.values) {
		return FlatValue{}, false
	}
	v := it.values[it.pos]
	it.pos++
	return v, true
}

// Remaining returns the slots not yet consumed, without advancing.
func (it *SliceIter) Remaining() []FlatValue {
	return it.values[it.pos:]
}

// Descriptor is the contract every Component Model type implements:
// fixed attributes (Kind, Size, Alignment, FlatTypes) plus the four
// load/store/lift/lower operations (spec §3).
//
// Descriptor values are immutable after construction and safe to share
// across goroutines (spec §5).
type Descriptor interface {
	Kind() Kind
	// Size is the footprint in linear memory, in bytes, including
	// internal alignment padding.
	Size() int
	// Alignment is one of {1,2,4,8}.
	Alignment() int
	// FlatTypes is the ordered machine-type signature this type takes
	// on the flat stack.
	FlatTypes() []FlatType

	// Load decodes a native value from linear memory at ptr. ptr must
	// be aligned to Alignment().
	Load(mem Memory, ptr uint32, opts Options) (any, error)
	// Store encodes v into linear memory at ptr.
	Store(mem Memory, ptr uint32, v any, opts Options) error
	// Lift decodes a native value from the flat stream, consuming
	// exactly len(FlatTypes()) slots.
	Lift(mem Memory, it FlatIter, opts Options) (any, error)
	// Lower encodes v into sink, appending exactly len(FlatTypes())
	// slots.
	Lower(sink FlatSink, mem Memory, v any, opts Options) error
}

// alignedPtr rounds ptr up to d's alignment, per "callers align by
// rounding up" (spec §3).
func alignedPtr(ptr uint32, d Descriptor) uint32 {
	return alignPtr(ptr, d.Alignment())
}
