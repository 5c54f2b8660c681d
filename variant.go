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

// VariantCase is one arm of a variant: a name and, optionally, a
// payload type (nil means the case carries no payload, spec §4.6).
type VariantCase struct {
	Name string
	Type Descriptor // nil if this case has no payload
}

// VariantValue is the default native form produced by VariantType when
// no custom constructor is supplied.
type VariantValue struct {
	CaseIndex int
	CaseName  string
	Payload   any // nil if the active case has no payload
}

// VariantCtor builds a native value from a decoded case index and
// payload. VariantType's Go signature expresses the TS-era
// "ctor"/"kind" construction parameters (spec §6) as explicit function
// values plus a Kind tag, rather than a positional constructor + magic
// string, since Go has no dynamic dispatch on a class tag.
type VariantCtor func(caseIndex int, caseName string, payload any) any

// VariantDtor is the inverse of VariantCtor: given a native value,
// recover which case is active and its payload.
type VariantDtor func(v any) (caseIndex int, payload any, err error)

func defaultVariantCtor(caseIndex int, caseName string, payload any) any {
	return VariantValue{CaseIndex: caseIndex, CaseName: caseName, Payload: payload}
}

func defaultVariantDtor(v any) (int, any, error) {
	vv, ok := v.(VariantValue)
	if !ok {
		return 0, nil, newValidationError(KindVariant, v, "expected VariantValue")
	}
	return vv.CaseIndex, vv.Payload, nil
}

// discriminantWidth picks the discriminant storage width for c cases
// (spec §4.6): u8 up to 256 cases, u16 up to 65536, u32 up to 2^32,
// and construction fails beyond that.
func discriminantWidth(c int) (size, alignment int) {
	switch {
	case c <= 256:
		return 1, 1
	case c <= 65536:
		return 2, 2
	case int64(c) <= 1<<32:
		return 4, 4
	}
	panic(fmt.Sprintf("variant case count %d exceeds 2^32", c))
}

type variantDescriptor struct {
	kind          Kind
	cases         []VariantCase
	ctor          VariantCtor
	dtor          VariantDtor
	discSize      int
	discAlign     int
	payloadOffset int
	size          int
	align         int
	joined        []FlatType // joined slot types, after the discriminant
	caseWants     [][]FlatType
}

func buildVariant(kind Kind, cases []VariantCase, ctor VariantCtor, dtor VariantDtor) variantDescriptor {
	if ctor == nil {
		ctor = defaultVariantCtor
	}
	if dtor == nil {
		dtor = defaultVariantDtor
	}
	discSize, discAlign := discriminantWidth(len(cases))

	maxCaseAlign := 1
	maxPayloadSize := 0
	caseWants := make([][]FlatType, len(cases))
	for i, c := range cases {
		if c.Type == nil {
			continue
		}
		if c.Type.Alignment() > maxCaseAlign {
			maxCaseAlign = c.Type.Alignment()
		}
		if c.Type.Size() > maxPayloadSize {
			maxPayloadSize = c.Type.Size()
		}
		caseWants[i] = c.Type.FlatTypes()
	}

	payloadOffset := align(discSize, maxCaseAlign)
	joined := joinFlatTypeSlots(caseWants)
	verifyJoinCovers(joined, caseWants)

	align := discAlign
	if maxCaseAlign > align {
		align = maxCaseAlign
	}

	return variantDescriptor{
		kind:          kind,
		cases:         cases,
		ctor:          ctor,
		dtor:          dtor,
		discSize:      discSize,
		discAlign:     discAlign,
		payloadOffset: payloadOffset,
		size:          payloadOffset + maxPayloadSize,
		align:         align,
		joined:        joined,
		caseWants:     caseWants,
	}
}

// VariantType builds a tagged-union descriptor over cases. ctor/dtor
// may be nil to use the default VariantValue representation.
func VariantType(cases []VariantCase, ctor VariantCtor, dtor VariantDtor) Descriptor {
	return buildVariant(KindVariant, cases, ctor, dtor)
}

func (v variantDescriptor) Kind() Kind     { return v.kind }
func (v variantDescriptor) Size() int      { return v.size }
func (v variantDescriptor) Alignment() int { return v.align }

func (v variantDescriptor) FlatTypes() []FlatType {
	out := make([]FlatType, 0, 1+len(v.joined))
	out = append(out, FlatI32) // discriminant is always carried as i32
	out = append(out, v.joined...)
	return out
}

func (v variantDescriptor) readDiscriminant(mem Memory, ptr uint32) (int, error) {
	switch v.discSize {
	case 1:
		b, err := mem.ReadU8(ptr)
		return int(b), err
	case 2:
		h, err := mem.ReadU16(ptr)
		return int(h), err
	default:
		w, err := mem.ReadU32(ptr)
		return int(w), err
	}
}

func (v variantDescriptor) writeDiscriminant(mem Memory, ptr uint32, idx int) error {
	switch v.discSize {
	case 1:
		return mem.WriteU8(ptr, uint8(idx))
	case 2:
		return mem.WriteU16(ptr, uint16(idx))
	default:
		return mem.WriteU32(ptr, uint32(idx))
	}
}

func (v variantDescriptor) validateIndex(idx int) error {
	if idx < 0 || idx >= len(v.cases) {
		return newABIViolation("variant discriminant %d out of range [0,%d)", idx, len(v.cases))
	}
	return nil
}

func (v variantDescriptor) Load(mem Memory, ptr uint32, opts Options) (any, error) {
	idx, err := v.readDiscriminant(mem, ptr)
	if err != nil {
		return nil, err
	}
	if err := v.validateIndex(idx); err != nil {
		return nil, err
	}
	c := v.cases[idx]
	var payload any
	if c.Type != nil {
		payloadPtr := ptr + uint32(v.payloadOffset)
		payload, err = c.Type.Load(mem, payloadPtr, opts)
		if err != nil {
			return nil, err
		}
	}
	return v.ctor(idx, c.Name, payload), nil
}

func (v variantDescriptor) Store(mem Memory, ptr uint32, val any, opts Options) error {
	idx, payload, err := v.dtor(val)
	if err != nil {
		return err
	}
	if err := v.validateIndex(idx); err != nil {
		return err
	}
	if err := v.writeDiscriminant(mem, ptr, idx); err != nil {
		return err
	}
	c := v.cases[idx]
	if c.Type == nil {
		if payload != nil {
			return newValidationError(v.kind, val, "case %q carries no payload", c.Name)
		}
		return nil
	}
	if payload == nil {
		return newValidationError(v.kind, val, "case %q requires a payload", c.Name)
	}
	return c.Type.Store(mem, ptr+uint32(v.payloadOffset), payload, opts)
}

func (v variantDescriptor) Lift(mem Memory, it FlatIter, opts Options) (any, error) {
	discSlot, ok := it.Next()
	if !ok {
		return nil, newABIViolation("variant.lift: expected discriminant slot")
	}
	idx := int(uint32(discSlot.I32))
	if err := v.validateIndex(idx); err != nil {
		return nil, err
	}
	c := v.cases[idx]
	coerc := NewCoercionIter(it, v.joined, v.caseWants[idx])
	var payload any
	var err error
	if c.Type != nil {
		payload, err = c.Type.Lift(mem, coerc, opts)
		if err != nil {
			return nil, err
		}
	}
	coerc.SkipRemaining()
	return v.ctor(idx, c.Name, payload), nil
}

func (v variantDescriptor) Lower(sink FlatSink, mem Memory, val any, opts Options) error {
	idx, payload, err := v.dtor(val)
	if err != nil {
		return err
	}
	if err := v.validateIndex(idx); err != nil {
		return err
	}
	sink.Push(FlatI32Value(int32(idx)))

	c := v.cases[idx]
	var caseValues []FlatValue
	if c.Type != nil {
		tmp := &SliceSink{}
		if err := c.Type.Lower(tmp, mem, payload, opts); err != nil {
			return err
		}
		caseValues = tmp.Values
	}
	for i, t := range v.joined {
		if i < len(caseValues) {
			sink.Push(widenSlot(caseValues[i], t))
		} else {
			sink.Push(zeroFlatValue(t))
		}
	}
	return nil
}

// zeroFlatValue is the padding value for unused trailing variant slots
// (spec §4.6: "padded with 0 (or 0n for i64)").
func zeroFlatValue(t FlatType) FlatValue {
	switch t {
	case FlatI64:
		return FlatI64Value(0)
	case FlatF32:
		return FlatF32Value(0)
	case FlatF64:
		return FlatF64Value(0)
	default:
		return FlatI32Value(0)
	}
}
