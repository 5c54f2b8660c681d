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

// Field is one named member of a RecordType.
type Field struct {
	Name string
	Type Descriptor
}

// recordDescriptor implements a heterogeneous aggregate of named fields
// (spec §4.4). Field offsets, Size, Alignment, and FlatTypes are all
// derived once at construction.
type recordDescriptor struct {
	fields  []Field
	offsets []int
	size    int
	align   int
	flat    []FlatType
}

// RecordType builds a record descriptor from fields in declaration
// order. Offsets are assigned the way the teacher's per-architecture
// parameter walk assigns stack slots: each field paired with its
// running offset as an lo.Tuple2, exactly as
// `stack = append(stack, lo.Tuple2[int, Parameter]{A: offset, B: param})`
// pairs a parameter with its slot offset in the original ABI walk.
func RecordType(fields []Field) Descriptor {
	var stack []lo.Tuple2[int, Field]
	offset := 0
	maxAlign := 1
	for _, f := range fields {
		offset = align(offset, f.Type.Alignment())
		stack = append(stack, lo.Tuple2[int, Field]{A: offset, B: f})
		offset += f.Type.Size()
		if f.Type.Alignment() > maxAlign {
			maxAlign = f.Type.Alignment()
		}
	}

	offsets := lo.Map(stack, func(t lo.Tuple2[int, Field], _ int) int { return t.A })
	var flat []FlatType
	for _, f := range fields {
		flat = append(flat, f.Type.FlatTypes()...)
	}

	return recordDescriptor{
		fields:  fields,
		offsets: offsets,
		size:    offset,
		align:   maxAlign,
		flat:    flat,
	}
}

func (r recordDescriptor) Kind() Kind            { return KindRecord }
func (r recordDescriptor) Size() int             { return r.size }
func (r recordDescriptor) Alignment() int        { return r.align }
func (r recordDescriptor) FlatTypes() []FlatType { return r.flat }

func (r recordDescriptor) Load(mem Memory, ptr uint32, opts Options) (any, error) {
	out := make(map[string]any, len(r.fields))
	for i, f := range r.fields {
		v, err := f.Type.Load(mem, ptr+uint32(r.offsets[i]), opts)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func (r recordDescriptor) Store(mem Memory, ptr uint32, v any, opts Options) error {
	m, ok := v.(map[string]any)
	if !ok {
		return newValidationError(KindRecord, v, "expected map[string]any")
	}
	// "the native key→value map is read in declared field order, not
	// iteration order" (spec §4.4).
	for i, f := range r.fields {
		fv, present := m[f.Name]
		if !present {
			return newValidationError(KindRecord, v, "missing field %q", f.Name)
		}
		if err := f.Type.Store(mem, ptr+uint32(r.offsets[i]), fv, opts); err != nil {
			return err
		}
	}
	return nil
}

func (r recordDescriptor) Lift(mem Memory, it FlatIter, opts Options) (any, error) {
	out := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		v, err := f.Type.Lift(mem, it, opts)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func (r recordDescriptor) Lower(sink FlatSink, mem Memory, v any, opts Options) error {
	m, ok := v.(map[string]any)
	if !ok {
		return newValidationError(KindRecord, v, "expected map[string]any")
	}
	for _, f := range r.fields {
		fv, present := m[f.Name]
		if !present {
			return newValidationError(KindRecord, v, "missing field %q", f.Name)
		}
		if err := f.Type.Lower(sink, mem, fv, opts); err != nil {
			return err
		}
	}
	return nil
}
