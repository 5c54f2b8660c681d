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

func TestUnsignedToSigned(t *testing.T) {
	tests := []struct {
		u    uint64
		bits int
		want int64
	}{
		{255, 8, -1},
		{128, 8, -128},
		{127, 8, 127},
		{0, 8, 0},
		{65535, 16, -1},
	}
	for _, tt := range tests {
		if got := unsignedToSigned(tt.u, tt.bits); got != tt.want {
			t.Errorf("unsignedToSigned(%d,%d) = %d, want %d", tt.u, tt.bits, got, tt.want)
		}
	}
}

func TestSignedToUnsigned(t *testing.T) {
	tests := []struct {
		s    int64
		bits int
		want uint64
	}{
		{-1, 8, 255},
		{-128, 8, 128},
		{127, 8, 127},
		{0, 8, 0},
	}
	for _, tt := range tests {
		if got := signedToUnsigned(tt.s, tt.bits); got != tt.want {
			t.Errorf("signedToUnsigned(%d,%d) = %d, want %d", tt.s, tt.bits, got, tt.want)
		}
	}
}

func TestSignedUnsignedRoundTrip(t *testing.T) {
	for _, bits := range []int{8, 16, 32, 64} {
		lo, hi := signedBounds(bits)
		for _, s := range []int64{lo, hi, 0, -1, 1} {
			u := signedToUnsigned(s, bits)
			got := unsignedToSigned(u, bits)
			if got != s {
				t.Errorf("round trip signed(%d bits)=%d -> unsigned=%d -> signed=%d", bits, s, u, got)
			}
		}
	}
}

func TestUnsignedMax(t *testing.T) {
	tests := []struct {
		bits int
		want uint64
	}{
		{8, 255},
		{16, 65535},
		{32, 4294967295},
	}
	for _, tt := range tests {
		if got := unsignedMax(tt.bits); got != tt.want {
			t.Errorf("unsignedMax(%d) = %d, want %d", tt.bits, got, tt.want)
		}
	}
}

func TestBitcastRoutinesAreBitPreserving(t *testing.T) {
	f := float32(3.14)
	i := bitcastF32ToI32(f)
	back := bitcastI32ToF32(i)
	if back != f {
		t.Errorf("bitcastF32ToI32/bitcastI32ToF32 round trip = %v, want %v", back, f)
	}

	f64 := 2.71828
	i64 := bitcastF64ToI64(f64)
	back64 := bitcastI64ToF64(i64)
	if back64 != f64 {
		t.Errorf("bitcastF64ToI64/bitcastI64ToF64 round trip = %v, want %v", back64, f64)
	}
}

func TestValidCodePoint(t *testing.T) {
	tests := []struct {
		r    rune
		want bool
	}{
		{0xD800, false},
		{0xDFFF, false},
		{0xD7FF, true},
		{0xE000, true},
		{0x10FFFF, true},
		{0x110000, false},
		{-1, false},
	}
	for _, tt := range tests {
		if got := validCodePoint(tt.r); got != tt.want {
			t.Errorf("validCodePoint(%#x) = %v, want %v", tt.r, got, tt.want)
		}
	}
}
