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

// tupleDescriptor implements a positional, unnamed record (spec §4.4):
// identical layout rules to RecordType, without field names.
type tupleDescriptor struct {
	elems   []Descriptor
	offsets []int
	size    int
	align   int
	flat    []FlatType
}

// TupleType builds a tuple descriptor from its element descriptors in
// order, the same offset walk as RecordType.
func TupleType(elems []Descriptor) Descriptor {
	var stack []lo.Tuple2[int, Descriptor]
	offset := 0
	maxAlign := 1
	for _, e := range elems {
		offset = align(offset, e.Alignment())
		stack = append(stack, lo.Tuple2[int, Descriptor]{A: offset, B: e})
		offset += e.Size()
		if e.Alignment() > maxAlign {
			maxAlign = e.Alignment()
		}
	}

	offsets := lo.Map(stack, func(t lo.Tuple2[int, Descriptor], _ int) int { return t.A })
	var flat []FlatType
	for _, e := range elems {
		flat = append(flat, e.FlatTypes()...)
	}

	return tupleDescriptor{elems: elems, offsets: offsets, size: offset, align: maxAlign, flat: flat}
}

func (t tupleDescriptor) Kind() Kind            { return KindTuple }
func (t tupleDescriptor) Size() int             { return t.size }
func (t tupleDescriptor) Alignment() int        { return t.align }
func (t tupleDescriptor) FlatTypes() []FlatType { return t.flat }

func (t tupleDescriptor) Load(mem Memory, ptr uint32, opts Options) (any, error) {
	out := make([]any, len(t.elems))
	for i, e := range t.elems {
		v, err := e.Load(mem, ptr+uint32(t.offsets[i]), opts)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (t tupleDescriptor) Store(mem Memory, ptr uint32, v any, opts Options) error {
	vals, ok := v.([]any)
	if !ok || len(vals) != len(t.elems) {
		return newValidationError(KindTuple, v, "expected []any of length %d", len(t.elems))
	}
	for i, e := range t.elems {
		if err := e.Store(mem, ptr+uint32(t.offsets[i]), vals[i], opts); err != nil {
			return err
		}
	}
	return nil
}

func (t tupleDescriptor) Lift(mem Memory, it FlatIter, opts Options) (any, error) {
	out := make([]any, len(t.elems))
	for i, e := range t.elems {
		v, err := e.Lift(mem, it, opts)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (t tupleDescriptor) Lower(sink FlatSink, mem Memory, v any, opts Options) error {
	vals, ok := v.([]any)
	if !ok || len(vals) != len(t.elems) {
		return newValidationError(KindTuple, v, "expected []any of length %d", len(t.elems))
	}
	for i, e := range t.elems {
		if err := e.Lower(sink, mem, vals[i], opts); err != nil {
			return err
		}
	}
	return nil
}
