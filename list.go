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

// listDescriptor implements the generic list<T>: a (data_ptr, length)
// pair in memory and on the flat stack (spec §4.3).
type listDescriptor struct {
	elem Descriptor
}

// ListType returns a descriptor for list<elem>.
func ListType(elem Descriptor) Descriptor {
	return listDescriptor{elem: elem}
}

func (l listDescriptor) Kind() Kind     { return KindList }
func (l listDescriptor) Size() int      { return 8 }
func (l listDescriptor) Alignment() int { return 4 }
func (l listDescriptor) FlatTypes() []FlatType {
	return []FlatType{FlatI32, FlatI32}
}

func (l listDescriptor) Load(mem Memory, ptr uint32, opts Options) (any, error) {
	dataPtr, err := mem.ReadU32(ptr)
	if err != nil {
		return nil, err
	}
	length, err := mem.ReadU32(ptr + 4)
	if err != nil {
		return nil, err
	}
	return l.loadElements(mem, dataPtr, length, opts)
}

func (l listDescriptor) loadElements(mem Memory, dataPtr, length uint32, opts Options) ([]any, error) {
	elems := make([]any, 0, length)
	stride := l.elem.Size()
	for i := uint32(0); i < length; i++ {
		v, err := l.elem.Load(mem, dataPtr+i*uint32(stride), opts)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return elems, nil
}

func (l listDescriptor) Store(mem Memory, ptr uint32, v any, opts Options) error {
	elems, ok := v.([]any)
	if !ok {
		return newValidationError(KindList, v, "expected []any")
	}
	dataPtr, err := l.storeElements(mem, elems, opts)
	if err != nil {
		return err
	}
	if err := mem.WriteU32(ptr, dataPtr); err != nil {
		return err
	}
	return mem.WriteU32(ptr+4, uint32(len(elems)))
}

func (l listDescriptor) storeElements(mem Memory, elems []any, opts Options) (uint32, error) {
	stride := l.elem.Size()
	dataPtr, err := mem.Alloc(l.elem.Alignment(), stride*len(elems))
	if err != nil {
		return 0, err
	}
	for i, v := range elems {
		if err := l.elem.Store(mem, dataPtr+uint32(i*stride), v, opts); err != nil {
			return 0, err
		}
	}
	return dataPtr, nil
}

func (l listDescriptor) Lift(mem Memory, it FlatIter, opts Options) (any, error) {
	dataSlot, ok := it.Next()
	if !ok {
		return nil, newABIViolation("list.lift: expected data_ptr slot")
	}
	lenSlot, ok := it.Next()
	if !ok {
		return nil, newABIViolation("list.lift: expected length slot")
	}
	return l.loadElements(mem, uint32(dataSlot.AsI32()), uint32(lenSlot.AsI32()), opts)
}

func (l listDescriptor) Lower(sink FlatSink, mem Memory, v any, opts Options) error {
	elems, ok := v.([]any)
	if !ok {
		return newValidationError(KindList, v, "expected []any")
	}
	dataPtr, err := l.storeElements(mem, elems, opts)
	if err != nil {
		return err
	}
	sink.Push(FlatI32Value(int32(dataPtr)))
	sink.Push(FlatI32Value(int32(len(elems))))
	return nil
}
