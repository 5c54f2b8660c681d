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

// OptionValue is the tagged native form of option<T> used when
// Options.KeepOption is true (spec §4.6).
type OptionValue struct {
	HasValue bool
	Value    any
}

// optionDescriptor implements option<T> as a two-case variant (none,
// some(T)) whose native representation depends on the per-call
// Options.KeepOption policy (spec §4.6), so it cannot share the static
// ctor/dtor of a plain VariantType and instead reuses the variant's
// layout machinery directly.
type optionDescriptor struct {
	inner variantDescriptor
	elem  Descriptor
}

// OptionType returns a descriptor for option<elem>.
func OptionType(elem Descriptor) Descriptor {
	inner := buildVariant(KindOption, []VariantCase{
		{Name: "none", Type: nil},
		{Name: "some", Type: elem},
	}, nil, nil)
	return optionDescriptor{inner: inner, elem: elem}
}

func (o optionDescriptor) Kind() Kind            { return KindOption }
func (o optionDescriptor) Size() int             { return o.inner.size }
func (o optionDescriptor) Alignment() int        { return o.inner.align }
func (o optionDescriptor) FlatTypes() []FlatType { return o.inner.FlatTypes() }

func (o optionDescriptor) wrap(hasValue bool, value any, opts Options) any {
	if opts.KeepOption {
		return OptionValue{HasValue: hasValue, Value: value}
	}
	if !hasValue {
		return nil
	}
	return value
}

func (o optionDescriptor) unwrap(v any, opts Options) (hasValue bool, value any, err error) {
	if opts.KeepOption {
		ov, ok := v.(OptionValue)
		if !ok {
			return false, nil, &OptionRepresentationMismatch{KeepOption: true, Value: v}
		}
		return ov.HasValue, ov.Value, nil
	}
	if _, ok := v.(OptionValue); ok {
		return false, nil, &OptionRepresentationMismatch{KeepOption: false, Value: v}
	}
	if v == nil {
		return false, nil, nil
	}
	return true, v, nil
}

func (o optionDescriptor) Load(mem Memory, ptr uint32, opts Options) (any, error) {
	idx, err := o.inner.readDiscriminant(mem, ptr)
	if err != nil {
		return nil, err
	}
	if err := o.inner.validateIndex(idx); err != nil {
		return nil, err
	}
	if idx == 0 {
		return o.wrap(false, nil, opts), nil
	}
	value, err := o.elem.Load(mem, ptr+uint32(o.inner.payloadOffset), opts)
	if err != nil {
		return nil, err
	}
	return o.wrap(true, value, opts), nil
}

func (o optionDescriptor) Store(mem Memory, ptr uint32, v any, opts Options) error {
	hasValue, value, err := o.unwrap(v, opts)
	if err != nil {
		return err
	}
	if !hasValue {
		return o.inner.writeDiscriminant(mem, ptr, 0)
	}
	if err := o.inner.writeDiscriminant(mem, ptr, 1); err != nil {
		return err
	}
	return o.elem.Store(mem, ptr+uint32(o.inner.payloadOffset), value, opts)
}

func (o optionDescriptor) Lift(mem Memory, it FlatIter, opts Options) (any, error) {
	discSlot, ok := it.Next()
	if !ok {
		return nil, newABIViolation("option.lift: expected discriminant slot")
	}
	idx := int(uint32(discSlot.I32))
	if err := o.inner.validateIndex(idx); err != nil {
		return nil, err
	}
	want := o.inner.caseWants[idx]
	coerc := NewCoercionIter(it, o.inner.joined, want)
	if idx == 0 {
		coerc.SkipRemaining()
		return o.wrap(false, nil, opts), nil
	}
	value, err := o.elem.Lift(mem, coerc, opts)
	if err != nil {
		return nil, err
	}
	coerc.SkipRemaining()
	return o.wrap(true, value, opts), nil
}

func (o optionDescriptor) Lower(sink FlatSink, mem Memory, v any, opts Options) error {
	hasValue, value, err := o.unwrap(v, opts)
	if err != nil {
		return err
	}
	idx := 0
	if hasValue {
		idx = 1
	}
	sink.Push(FlatI32Value(int32(idx)))

	var caseValues []FlatValue
	if hasValue {
		tmp := &SliceSink{}
		if err := o.elem.Lower(tmp, mem, value, opts); err != nil {
			return err
		}
		caseValues = tmp.Values
	}
	for i, t := range o.inner.joined {
		if i < len(caseValues) {
			sink.Push(widenSlot(caseValues[i], t))
		} else {
			sink.Push(zeroFlatValue(t))
		}
	}
	return nil
}
