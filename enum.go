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

// enumDescriptor implements a set of named cases with no payloads
// (spec §4.6): same discriminant sizing as variant, size equal to the
// discriminant size alone.
type enumDescriptor struct {
	names     []string
	index     map[string]int
	discSize  int
	discAlign int
}

// EnumType builds an enum descriptor over names in declared order; the
// position in names is the wire discriminant value.
func EnumType(names []string) Descriptor {
	discSize, discAlign := discriminantWidth(len(names))
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return enumDescriptor{names: names, index: idx, discSize: discSize, discAlign: discAlign}
}

func (e enumDescriptor) Kind() Kind            { return KindEnum }
func (e enumDescriptor) Size() int             { return e.discSize }
func (e enumDescriptor) Alignment() int        { return e.discAlign }
func (e enumDescriptor) FlatTypes() []FlatType { return []FlatType{FlatI32} }

// EnumValue is the native form of an enum value.
type EnumValue struct {
	Index int
	Name  string
}

func (e enumDescriptor) validate(idx int) error {
	if idx < 0 || idx >= len(e.names) {
		return newValidationError(KindEnum, idx, "enum value out of range [0,%d)", len(e.names))
	}
	return nil
}

func (e enumDescriptor) decode(idx int) (any, error) {
	if err := e.validate(idx); err != nil {
		return nil, err
	}
	return EnumValue{Index: idx, Name: e.names[idx]}, nil
}

func (e enumDescriptor) toIndex(v any) (int, error) {
	switch x := v.(type) {
	case EnumValue:
		return x.Index, nil
	case string:
		if idx, ok := e.index[x]; ok {
			return idx, nil
		}
		return 0, newValidationError(KindEnum, v, "unknown enum case %q", x)
	case int:
		return x, nil
	}
	return 0, newValidationError(KindEnum, v, "expected EnumValue, string, or int")
}

func (e enumDescriptor) readWire(mem Memory, ptr uint32) (int, error) {
	switch e.discSize {
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

func (e enumDescriptor) writeWire(mem Memory, ptr uint32, idx int) error {
	switch e.discSize {
	case 1:
		return mem.WriteU8(ptr, uint8(idx))
	case 2:
		return mem.WriteU16(ptr, uint16(idx))
	default:
		return mem.WriteU32(ptr, uint32(idx))
	}
}

func (e enumDescriptor) Load(mem Memory, ptr uint32, _ Options) (any, error) {
	idx, err := e.readWire(mem, ptr)
	if err != nil {
		return nil, err
	}
	return e.decode(idx)
}

func (e enumDescriptor) Store(mem Memory, ptr uint32, v any, _ Options) error {
	idx, err := e.toIndex(v)
	if err != nil {
		return err
	}
	if err := e.validate(idx); err != nil {
		return err
	}
	return e.writeWire(mem, ptr, idx)
}

func (e enumDescriptor) Lift(_ Memory, it FlatIter, _ Options) (any, error) {
	slot, ok := it.Next()
	if !ok {
		return nil, newABIViolation("enum.lift: expected one flat slot")
	}
	return e.decode(int(uint32(slot.I32)))
}

func (e enumDescriptor) Lower(sink FlatSink, _ Memory, v any, _ Options) error {
	idx, err := e.toIndex(v)
	if err != nil {
		return err
	}
	if err := e.validate(idx); err != nil {
		return err
	}
	sink.Push(FlatI32Value(int32(idx)))
	return nil
}
