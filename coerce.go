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

import "fmt"

// joinPair applies the variant flat-slot join rule (spec §4.6): equal
// needs keep their type; exactly {i32,f32} joins to i32; anything else
// (a 64-bit need present) joins to i64.
func joinPair(a, b FlatType) FlatType {
	if a == b {
		return a
	}
	if (a == FlatI32 && b == FlatF32) || (a == FlatF32 && b == FlatI32) {
		return FlatI32
	}
	return FlatI64
}

// joinFlatTypeSlots computes the variant's flat signature tail (after
// the discriminant) from every case's want_flat_types: one slot per
// position that any case needs, widened just enough to hold every
// case's need at that position (spec §4.6).
func joinFlatTypeSlots(caseWants [][]FlatType) []FlatType {
	maxLen := 0
	for _, w := range caseWants {
		if len(w) > maxLen {
			maxLen = len(w)
		}
	}
	joined := make([]FlatType, maxLen)
	has := make([]bool, maxLen)
	for _, w := range caseWants {
		for i, t := range w {
			if !has[i] {
				joined[i] = t
				has[i] = true
			} else {
				joined[i] = joinPair(joined[i], t)
			}
		}
	}
	return joined
}

// verifyJoinCovers asserts the implementation invariant from spec §9:
// "the join is always >= each case's slot" — i.e. no case's natural
// flat type would be silently truncated by the computed join. This is
// a programmer error (descriptor misconstruction), not a runtime
// ValidationError, so it panics rather than returning an error.
func verifyJoinCovers(joined []FlatType, caseWants [][]FlatType) {
	for _, w := range caseWants {
		for i, t := range w {
			if !slotCovers(joined[i], t) {
				panic(fmt.Sprintf("variant join type %v at slot %d cannot hold case need %v", joined[i], i, t))
			}
		}
	}
}

// slotCovers reports whether widening a value of type from to type to
// is a supported, non-truncating operation.
func slotCovers(to, from FlatType) bool {
	if to == from {
		return true
	}
	switch to {
	case FlatI64:
		return from == FlatI32 || from == FlatF32 || from == FlatF64
	case FlatI32:
		return from == FlatF32
	}
	return false
}

// widenSlot converts a case's natural flat value (want type) into the
// variant's joined flat type, via pure bit-cast (spec §4.6, §9: "never
// as value-preserving conversions").
func widenSlot(v FlatValue, to FlatType) FlatValue {
	if v.Type == to {
		return v
	}
	switch {
	case v.Type == FlatF32 && to == FlatI32:
		return FlatI32Value(bitcastF32ToI32(v.F32))
	case v.Type == FlatI32 && to == FlatI64:
		return FlatI64Value(widenI32ToI64(v.I32))
	case v.Type == FlatF32 && to == FlatI64:
		return FlatI64Value(bitcastF32BitsToI64(v.F32))
	case v.Type == FlatF64 && to == FlatI64:
		return FlatI64Value(bitcastF64ToI64(v.F64))
	}
	panic(fmt.Sprintf("widenSlot: unsupported %v -> %v", v.Type, to))
}

// narrowSlot is the inverse of widenSlot, applied on lift: reinterprets
// a joined-type flat slot back into the specific case's natural flat
// shape. Supported have->want coercions (spec §4.6): i32->f32,
// i64->i32, i64->f32, i64->f64.
func narrowSlot(have FlatValue, want FlatType) FlatValue {
	if have.Type == want {
		return have
	}
	switch {
	case have.Type == FlatI32 && want == FlatF32:
		return FlatF32Value(bitcastI32ToF32(have.I32))
	case have.Type == FlatI64 && want == FlatI32:
		return FlatI32Value(narrowI64ToI32(have.I64))
	case have.Type == FlatI64 && want == FlatF32:
		return FlatF32Value(bitcastI64ToF32Bits(have.I64))
	case have.Type == FlatI64 && want == FlatF64:
		return FlatF64Value(bitcastI64ToF64(have.I64))
	}
	panic(fmt.Sprintf("narrowSlot: unsupported %v -> %v", have.Type, want))
}

// CoercionIter wraps a raw FlatIter for one variant case during lift,
// presenting the joined (have) slots as the case's own (want) flat
// shape. It may look ahead at most one slot, and unused trailing slots
// are consumed (not exposed) so the underlying stream stays aligned
// (spec §4.6, §5).
type CoercionIter struct {
	under   FlatIter
	have    []FlatType
	want    []FlatType
	pos     int
}

// NewCoercionIter builds a coercion iterator over under for a case
// whose own flat shape is want, given the variant's joined shape have.
func NewCoercionIter(under FlatIter, have, want []FlatType) *CoercionIter {
	return &CoercionIter{under: under, have: have, want: want}
}

func (c *CoercionIter) Next() (FlatValue, bool) {
	if c.pos >= len(c.want) {
		return FlatValue{}, false
	}
	raw, ok := c.under.Next()
	if !ok {
		return FlatValue{}, false
	}
	v := narrowSlot(raw, c.want[c.pos])
	c.pos++
	return v, true
}

// SkipRemaining consumes, without exposing, any slots the case's own
// flat shape didn't need but the joined shape reserved for wider
// sibling cases.
func (c *CoercionIter) SkipRemaining() {
	for i := len(c.want); i < len(c.have); i++ {
		c.under.Next()
	}
}
