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
	"encoding/binary"
	"math"
)

// BufferKind names one of the ten typed-buffer shapes (spec §4.3): a
// generic list<u8>/list<s8>/.../list<f64> with the same wire layout as
// the generic list but bulk-copied instead of element-at-a-time, and
// presented natively as a contiguous Go slice.
type BufferKind int

const (
	BufferI8 BufferKind = iota
	BufferI16
	BufferI32
	BufferI64
	BufferU8
	BufferU16
	BufferU32
	BufferU64
	BufferF32
	BufferF64
)

var bufferElemSize = map[BufferKind]int{
	BufferI8: 1, BufferU8: 1,
	BufferI16: 2, BufferU16: 2,
	BufferI32: 4, BufferU32: 4, BufferF32: 4,
	BufferI64: 8, BufferU64: 8, BufferF64: 8,
}

var bufferElemAlignment = bufferElemSize

// bufferDescriptor implements a typed-buffer shortcut. Wire-compatible
// with list<T> of the matching element kind: a generic list<u8> and a
// BufferU8-shaped buffer are wire-compatible (spec §4.3).
type bufferDescriptor struct {
	kind BufferKind
}

// BufferType returns the typed-buffer descriptor for kind.
func BufferType(kind BufferKind) Descriptor { return bufferDescriptor{kind: kind} }

var (
	Int8Buffer    = BufferType(BufferI8)
	Int16Buffer   = BufferType(BufferI16)
	Int32Buffer   = BufferType(BufferI32)
	Int64Buffer   = BufferType(BufferI64)
	Uint8Buffer   = BufferType(BufferU8)
	Uint16Buffer  = BufferType(BufferU16)
	Uint32Buffer  = BufferType(BufferU32)
	Uint64Buffer  = BufferType(BufferU64)
	Float32Buffer = BufferType(BufferF32)
	Float64Buffer = BufferType(BufferF64)
)

func (b bufferDescriptor) Kind() Kind     { return KindList }
func (b bufferDescriptor) Size() int      { return 8 }
func (b bufferDescriptor) Alignment() int { return 4 }
func (b bufferDescriptor) FlatTypes() []FlatType {
	return []FlatType{FlatI32, FlatI32}
}

func (b bufferDescriptor) elemSize() int { return bufferElemSize[b.kind] }

func (b bufferDescriptor) decodeBytes(raw []byte) (any, error) {
	n := len(raw) / b.elemSize()
	switch b.kind {
	case BufferI8:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(raw[i])
		}
		return out, nil
	case BufferU8:
		out := make([]uint8, n)
		copy(out, raw)
		return out, nil
	case BufferI16:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
		}
		return out, nil
	case BufferU16:
		out := make([]uint16, n)
		for i := range out {
			out[i] = binary.LittleEndian.Uint16(raw[i*2:])
		}
		return out, nil
	case BufferI32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out, nil
	case BufferU32:
		out := make([]uint32, n)
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
		return out, nil
	case BufferF32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(canonicalizeF32Bits(binary.LittleEndian.Uint32(raw[i*4:])))
		}
		return out, nil
	case BufferI64:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return out, nil
	case BufferU64:
		out := make([]uint64, n)
		for i := range out {
			out[i] = binary.LittleEndian.Uint64(raw[i*8:])
		}
		return out, nil
	case BufferF64:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(canonicalizeF64Bits(binary.LittleEndian.Uint64(raw[i*8:])))
		}
		return out, nil
	}
	return nil, newABIViolation("unknown buffer kind %v", b.kind)
}

func (b bufferDescriptor) encodeBytes(v any) ([]byte, int, error) {
	switch b.kind {
	case BufferI8:
		s, ok := v.([]int8)
		if !ok {
			return nil, 0, newValidationError(KindList, v, "expected []int8")
		}
		out := make([]byte, len(s))
		for i, x := range s {
			out[i] = byte(x)
		}
		return out, len(s), nil
	case BufferU8:
		s, ok := v.([]uint8)
		if !ok {
			return nil, 0, newValidationError(KindList, v, "expected []uint8")
		}
		return append([]byte(nil), s...), len(s), nil
	case BufferI16:
		s, ok := v.([]int16)
		if !ok {
			return nil, 0, newValidationError(KindList, v, "expected []int16")
		}
		out := make([]byte, len(s)*2)
		for i, x := range s {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(x))
		}
		return out, len(s), nil
	case BufferU16:
		s, ok := v.([]uint16)
		if !ok {
			return nil, 0, newValidationError(KindList, v, "expected []uint16")
		}
		out := make([]byte, len(s)*2)
		for i, x := range s {
			binary.LittleEndian.PutUint16(out[i*2:], x)
		}
		return out, len(s), nil
	case BufferI32:
		s, ok := v.([]int32)
		if !ok {
			return nil, 0, newValidationError(KindList, v, "expected []int32")
		}
		out := make([]byte, len(s)*4)
		for i, x := range s {
			binary.LittleEndian.PutUint32(out[i*4:], uint32(x))
		}
		return out, len(s), nil
	case BufferU32:
		s, ok := v.([]uint32)
		if !ok {
			return nil, 0, newValidationError(KindList, v, "expected []uint32")
		}
		out := make([]byte, len(s)*4)
		for i, x := range s {
			binary.LittleEndian.PutUint32(out[i*4:], x)
		}
		return out, len(s), nil
	case BufferF32:
		s, ok := v.([]float32)
		if !ok {
			return nil, 0, newValidationError(KindList, v, "expected []float32")
		}
		out := make([]byte, len(s)*4)
		for i, x := range s {
			binary.LittleEndian.PutUint32(out[i*4:], canonicalizeF32Bits(math.Float32bits(x)))
		}
		return out, len(s), nil
	case BufferI64:
		s, ok := v.([]int64)
		if !ok {
			return nil, 0, newValidationError(KindList, v, "expected []int64")
		}
		out := make([]byte, len(s)*8)
		for i, x := range s {
			binary.LittleEndian.PutUint64(out[i*8:], uint64(x))
		}
		return out, len(s), nil
	case BufferU64:
		s, ok := v.([]uint64)
		if !ok {
			return nil, 0, newValidationError(KindList, v, "expected []uint64")
		}
		out := make([]byte, len(s)*8)
		for i, x := range s {
			binary.LittleEndian.PutUint64(out[i*8:], x)
		}
		return out, len(s), nil
	case BufferF64:
		s, ok := v.([]float64)
		if !ok {
			return nil, 0, newValidationError(KindList, v, "expected []float64")
		}
		out := make([]byte, len(s)*8)
		for i, x := range s {
			binary.LittleEndian.PutUint64(out[i*8:], canonicalizeF64Bits(math.Float64bits(x)))
		}
		return out, len(s), nil
	}
	return nil, 0, newABIViolation("unknown buffer kind %v", b.kind)
}

func (b bufferDescriptor) Load(mem Memory, ptr uint32, _ Options) (any, error) {
	dataPtr, err := mem.ReadU32(ptr)
	if err != nil {
		return nil, err
	}
	length, err := mem.ReadU32(ptr + 4)
	if err != nil {
		return nil, err
	}
	raw, err := mem.ReadBytes(dataPtr, int(length)*b.elemSize())
	if err != nil {
		return nil, err
	}
	return b.decodeBytes(raw)
}

func (b bufferDescriptor) Store(mem Memory, ptr uint32, v any, _ Options) error {
	raw, n, err := b.encodeBytes(v)
	if err != nil {
		return err
	}
	dataPtr, err := mem.Alloc(bufferElemAlignment[b.kind], len(raw))
	if err != nil {
		return err
	}
	if len(raw) > 0 {
		if err := mem.WriteBytes(dataPtr, raw); err != nil {
			return err
		}
	}
	if err := mem.WriteU32(ptr, dataPtr); err != nil {
		return err
	}
	return mem.WriteU32(ptr+4, uint32(n))
}

func (b bufferDescriptor) Lift(mem Memory, it FlatIter, opts Options) (any, error) {
	dataSlot, ok := it.Next()
	if !ok {
		return nil, newABIViolation("buffer.lift: expected data_ptr slot")
	}
	lenSlot, ok := it.Next()
	if !ok {
		return nil, newABIViolation("buffer.lift: expected length slot")
	}
	raw, err := mem.ReadBytes(uint32(dataSlot.AsI32()), int(uint32(lenSlot.AsI32()))*b.elemSize())
	if err != nil {
		return nil, err
	}
	return b.decodeBytes(raw)
}

func (b bufferDescriptor) Lower(sink FlatSink, mem Memory, v any, opts Options) error {
	raw, n, err := b.encodeBytes(v)
	if err != nil {
		return err
	}
	dataPtr, err := mem.Alloc(bufferElemAlignment[b.kind], len(raw))
	if err != nil {
		return err
	}
	if len(raw) > 0 {
		if err := mem.WriteBytes(dataPtr, raw); err != nil {
			return err
		}
	}
	sink.Push(FlatI32Value(int32(dataPtr)))
	sink.Push(FlatI32Value(int32(n)))
	return nil
}
