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

import "math"

// canonicalF32NaN and canonicalF64NaN are the quiet-NaN bit patterns
// every NaN canonicalizes to on lift/lower (spec §4.1, §8).
const (
	canonicalF32NaN uint32 = 0x7fc00000
	canonicalF64NaN uint64 = 0x7ff8000000000000
)

func canonicalizeF32Bits(bits uint32) uint32 {
	f := math.Float32frombits(bits)
	if f != f {
		return canonicalF32NaN
	}
	return bits
}

func canonicalizeF64Bits(bits uint64) uint64 {
	f := math.Float64frombits(bits)
	if f != f {
		return canonicalF64NaN
	}
	return bits
}

// unsignedMax returns 2^bits - 1.
func unsignedMax(bits int) uint64 {
	if bits >= 64 {
		return math.MaxUint64
	}
	return (uint64(1) << uint(bits)) - 1
}

// signedBounds returns [-2^(bits-1), 2^(bits-1)-1].
func signedBounds(bits int) (int64, int64) {
	if bits >= 64 {
		return math.MinInt64, math.MaxInt64
	}
	half := int64(1) << uint(bits-1)
	return -half, half - 1
}

// unsignedToSigned reinterprets an n-bit unsigned wire pattern as its
// signed two's-complement value (spec §4.1: "a value above the positive
// half-range is reinterpreted by subtracting 2^n").
func unsignedToSigned(u uint64, bits int) int64 {
	if bits >= 64 {
		return int64(u)
	}
	half := uint64(1) << uint(bits-1)
	full := uint64(1) << uint(bits)
	if u >= half {
		return int64(u) - int64(full)
	}
	return int64(u)
}

// signedToUnsigned reinterprets a signed value as its n-bit unsigned
// wire pattern (spec §4.1: "negatives are encoded by adding 2^n").
func signedToUnsigned(s int64, bits int) uint64 {
	if bits >= 64 {
		return uint64(s)
	}
	full := int64(1) << uint(bits)
	if s < 0 {
		s += full
	}
	return uint64(s)
}

// --- pure bit-cast routines (spec §9: "implement as pure bit-cast
// routines... never as value-preserving conversions") ---

func bitcastF32ToI32(f float32) int32 {
	return int32(math.Float32bits(f))
}

func bitcastI32ToF32(i int32) float32 {
	return math.Float32frombits(uint32(i))
}

func widenI32ToI64(i int32) int64 {
	return int64(uint32(i))
}

func narrowI64ToI32(i int64) int32 {
	return int32(uint32(i))
}

func bitcastF32BitsToI64(f float32) int64 {
	return int64(uint32(math.Float32bits(f)))
}

func bitcastI64ToF32Bits(i int64) float32 {
	return math.Float32frombits(uint32(i))
}

func bitcastF64ToI64(f float64) int64 {
	return int64(math.Float64bits(f))
}

func bitcastI64ToF64(i int64) float64 {
	return math.Float64frombits(uint64(i))
}

// validCodePoint reports whether r is a valid Unicode scalar value: not
// a surrogate and below 0x110000 (spec §4.1 char contract).
func validCodePoint(r rune) bool {
	if r < 0 || r >= 0x110000 {
		return false
	}
	if r >= 0xD800 && r <= 0xDFFF {
		return false
	}
	return true
}
