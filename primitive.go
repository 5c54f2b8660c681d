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
	"math"
	"math/big"
)

// primitiveDescriptor implements every fixed-size scalar kind (spec
// §4.1): a single flat slot, size/alignment from the primitiveSizes/
// primitiveAlignments tables, and a Kind-dispatched load/store/lift/
// lower body.
type primitiveDescriptor struct {
	kind Kind
}

var (
	Bool    Descriptor = primitiveDescriptor{KindBool}
	U8      Descriptor = primitiveDescriptor{KindU8}
	U16     Descriptor = primitiveDescriptor{KindU16}
	U32     Descriptor = primitiveDescriptor{KindU32}
	U64     Descriptor = primitiveDescriptor{KindU64}
	S8      Descriptor = primitiveDescriptor{KindS8}
	S16     Descriptor = primitiveDescriptor{KindS16}
	S32     Descriptor = primitiveDescriptor{KindS32}
	S64     Descriptor = primitiveDescriptor{KindS64}
	Float32 Descriptor = primitiveDescriptor{KindFloat32}
	Float64 Descriptor = primitiveDescriptor{KindFloat64}
	Char    Descriptor = primitiveDescriptor{KindChar}
)

func (p primitiveDescriptor) Kind() Kind     { return p.kind }
func (p primitiveDescriptor) Size() int      { return primitiveSizes[p.kind] }
func (p primitiveDescriptor) Alignment() int { return primitiveAlignments[p.kind] }

func (p primitiveDescriptor) FlatTypes() []FlatType {
	switch p.kind {
	case KindU64, KindS64:
		return []FlatType{FlatI64}
	case KindFloat32:
		return []FlatType{FlatF32}
	case KindFloat64:
		return []FlatType{FlatF64}
	default:
		return []FlatType{FlatI32}
	}
}

// bitWidth returns the integer width in bits for the unsigned/signed
// kinds.
func bitWidth(k Kind) int {
	switch k {
	case KindU8, KindS8:
		return 8
	case KindU16, KindS16:
		return 16
	case KindU32, KindS32:
		return 32
	case KindU64, KindS64:
		return 64
	}
	return 0
}

// asUint64 converts a native Go numeric value into a uint64, rejecting
// negatives and non-integral floats. Supports the Go integer/float
// families so callers can pass int, int64, uint64, float64, etc.
func asUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int8:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int16:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int32:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case float32:
		if n < 0 || n != float32(math.Trunc(float64(n))) {
			return 0, false
		}
		return uint64(n), true
	case float64:
		if n < 0 || n != math.Trunc(n) {
			return 0, false
		}
		return uint64(n), true
	}
	return 0, false
}

// encodeUnsignedBigInt handles a *big.Int input to a u8/u16/u32/u64
// kind: a value whose bit length exceeds 64 cannot be held in the
// uint64 wire representation at all (BigIntOverflow); a value that
// fits in 64 bits but not in the narrower kind's range is an ordinary
// ValidationError.
func encodeUnsignedBigInt(bi *big.Int, kind Kind) (uint64, error) {
	if bi.Sign() < 0 {
		return 0, newValidationError(kind, bi.String(), "expected non-negative integer")
	}
	if bi.BitLen() > 64 {
		return 0, &BigIntOverflow{Value: bi.Uint64()}
	}
	u := bi.Uint64()
	if u > unsignedMax(bitWidth(kind)) {
		return 0, newValidationError(kind, bi.String(), "value exceeds unsigned range")
	}
	return u, nil
}

// encodeSignedBigInt is the signed-kind counterpart of
// encodeUnsignedBigInt: a *big.Int outside int64's range cannot be
// converted at all (BigIntOverflow), distinct from one that fits in
// int64 but not the narrower kind's signed range.
func encodeSignedBigInt(bi *big.Int, kind Kind) (uint64, error) {
	if !bi.IsInt64() {
		return 0, &BigIntOverflow{Value: bi.Uint64()}
	}
	s := bi.Int64()
	bits := bitWidth(kind)
	lo, hi := signedBounds(bits)
	if s < lo || s > hi {
		return 0, newValidationError(kind, bi.String(), "value exceeds signed range")
	}
	return signedToUnsigned(s, bits), nil
}

// asInt64 converts a native Go numeric value into an int64, rejecting
// non-integral floats.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		if n != float32(math.Trunc(float64(n))) {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func unsignedNative(k Kind, u uint64) any {
	switch k {
	case KindU8:
		return uint8(u)
	case KindU16:
		return uint16(u)
	case KindU32:
		return uint32(u)
	default:
		return u
	}
}

func signedNative(k Kind, s int64) any {
	switch k {
	case KindS8:
		return int8(s)
	case KindS16:
		return int16(s)
	case KindS32:
		return int32(s)
	default:
		return s
	}
}

func (p primitiveDescriptor) readWire(mem Memory, ptr uint32) (uint64, error) {
	switch p.kind {
	case KindBool, KindU8, KindS8:
		v, err := mem.ReadU8(ptr)
		return uint64(v), err
	case KindU16, KindS16:
		v, err := mem.ReadU16(ptr)
		return uint64(v), err
	case KindU32, KindS32, KindChar:
		v, err := mem.ReadU32(ptr)
		return uint64(v), err
	case KindU64, KindS64:
		return mem.ReadU64(ptr)
	case KindFloat32:
		bits, err := mem.ReadU32(ptr)
		return uint64(canonicalizeF32Bits(bits)), err
	case KindFloat64:
		bits, err := mem.ReadU64(ptr)
		return canonicalizeF64Bits(bits), err
	}
	return 0, newABIViolation("unknown primitive kind %v", p.kind)
}

func (p primitiveDescriptor) writeWire(mem Memory, ptr uint32, wire uint64) error {
	switch p.kind {
	case KindBool, KindU8, KindS8:
		return mem.WriteU8(ptr, uint8(wire))
	case KindU16, KindS16:
		return mem.WriteU16(ptr, uint16(wire))
	case KindU32, KindS32, KindChar:
		return mem.WriteU32(ptr, uint32(wire))
	case KindU64, KindS64:
		return mem.WriteU64(ptr, wire)
	case KindFloat32:
		return mem.WriteU32(ptr, canonicalizeF32Bits(uint32(wire)))
	case KindFloat64:
		return mem.WriteU64(ptr, canonicalizeF64Bits(wire))
	}
	return newABIViolation("unknown primitive kind %v", p.kind)
}

// decode turns a wire-format uint64 into a native value, per-kind.
func (p primitiveDescriptor) decode(wire uint64) (any, error) {
	switch p.kind {
	case KindBool:
		return wire != 0, nil
	case KindU8, KindU16, KindU32, KindU64:
		return unsignedNative(p.kind, wire), nil
	case KindS8, KindS16, KindS32, KindS64:
		return signedNative(p.kind, unsignedToSigned(wire, bitWidth(p.kind))), nil
	case KindFloat32:
		return math.Float32frombits(uint32(wire)), nil
	case KindFloat64:
		return math.Float64frombits(wire), nil
	case KindChar:
		r := rune(wire)
		if !validCodePoint(r) {
			return nil, newValidationError(KindChar, wire, "invalid Unicode scalar value")
		}
		return string(r), nil
	}
	return nil, newABIViolation("unknown primitive kind %v", p.kind)
}

// encode validates v and turns it into the wire-format uint64, per-kind.
func (p primitiveDescriptor) encode(v any) (uint64, error) {
	switch p.kind {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return 0, newValidationError(p.kind, v, "expected bool")
		}
		if b {
			return 1, nil
		}
		return 0, nil

	case KindU8, KindU16, KindU32, KindU64:
		if bi, ok := v.(*big.Int); ok {
			return encodeUnsignedBigInt(bi, p.kind)
		}
		u, ok := asUint64(v)
		if !ok {
			return 0, newValidationError(p.kind, v, "expected non-negative integer")
		}
		if u > unsignedMax(bitWidth(p.kind)) {
			return 0, newValidationError(p.kind, v, "value exceeds unsigned range")
		}
		return u, nil

	case KindS8, KindS16, KindS32, KindS64:
		if bi, ok := v.(*big.Int); ok {
			return encodeSignedBigInt(bi, p.kind)
		}
		s, ok := asInt64(v)
		if !ok {
			return 0, newValidationError(p.kind, v, "expected integer")
		}
		lo, hi := signedBounds(bitWidth(p.kind))
		if s < lo || s > hi {
			return 0, newValidationError(p.kind, v, "value exceeds signed range")
		}
		return signedToUnsigned(s, bitWidth(p.kind)), nil

	case KindFloat32:
		f, ok := toFloat32(v)
		if !ok {
			return 0, newValidationError(p.kind, v, "expected float32")
		}
		if !isFiniteOrNaN32(f) {
			return 0, newValidationError(p.kind, v, "value outside ±MAX")
		}
		return uint64(math.Float32bits(f)), nil

	case KindFloat64:
		f, ok := toFloat64(v)
		if !ok {
			return 0, newValidationError(p.kind, v, "expected float64")
		}
		if math.IsInf(f, 0) {
			return 0, newValidationError(p.kind, v, "value outside ±MAX")
		}
		return math.Float64bits(f), nil

	case KindChar:
		s, ok := v.(string)
		if !ok {
			return 0, newValidationError(p.kind, v, "expected single-rune string")
		}
		runes := []rune(s)
		if len(runes) != 1 {
			return 0, newValidationError(p.kind, v, "string length != 1")
		}
		if !validCodePoint(runes[0]) {
			return 0, newValidationError(p.kind, v, "invalid Unicode scalar value")
		}
		return uint64(runes[0]), nil
	}
	return 0, newABIViolation("unknown primitive kind %v", p.kind)
}

func toFloat32(v any) (float32, bool) {
	switch n := v.(type) {
	case float32:
		return n, true
	case float64:
		return float32(n), true
	case int:
		return float32(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// isFiniteOrNaN32 accepts any finite value or NaN; only ±Inf is outside
// the "±MAX" range the spec excludes (spec §4.1).
func isFiniteOrNaN32(f float32) bool {
	return !math.IsInf(float64(f), 0)
}

func (p primitiveDescriptor) Load(mem Memory, ptr uint32, _ Options) (any, error) {
	wire, err := p.readWire(mem, ptr)
	if err != nil {
		return nil, err
	}
	return p.decode(wire)
}

func (p primitiveDescriptor) Store(mem Memory, ptr uint32, v any, _ Options) error {
	wire, err := p.encode(v)
	if err != nil {
		return err
	}
	return p.writeWire(mem, ptr, wire)
}

func (p primitiveDescriptor) Lift(_ Memory, it FlatIter, _ Options) (any, error) {
	slot, ok := it.Next()
	if !ok {
		return nil, newABIViolation("%v.lift: expected one flat slot", p.kind)
	}
	var wire uint64
	switch p.kind {
	case KindU64, KindS64:
		wire = uint64(slot.I64)
	case KindFloat32:
		wire = uint64(canonicalizeF32Bits(math.Float32bits(slot.F32)))
	case KindFloat64:
		wire = canonicalizeF64Bits(math.Float64bits(slot.F64))
	default:
		wire = uint64(uint32(slot.I32))
		if p.kind == KindBool && slot.I32 < 0 {
			return nil, newValidationError(p.kind, slot.I32, "negative wire value")
		}
	}
	return p.decode(wire)
}

func (p primitiveDescriptor) Lower(sink FlatSink, _ Memory, v any, _ Options) error {
	wire, err := p.encode(v)
	if err != nil {
		return err
	}
	switch p.kind {
	case KindU64, KindS64:
		sink.Push(FlatI64Value(int64(wire)))
	case KindFloat32:
		sink.Push(FlatF32Value(math.Float32frombits(uint32(wire))))
	case KindFloat64:
		sink.Push(FlatF64Value(math.Float64frombits(wire)))
	default:
		sink.Push(FlatI32Value(int32(uint32(wire))))
	}
	return nil
}
