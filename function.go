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

// MaxFlatParams and MaxFlatResults are the indirect-convention
// thresholds from spec §4.8.
const (
	MaxFlatParams  = 16
	MaxFlatResults = 1
)

// Param is one named, typed function parameter.
type Param struct {
	Name string
	Type Descriptor
}

// FunctionType bundles a function's native/wire names, ordered
// parameter list, and optional return type (spec §4.8). Return is nil
// for a function with no return value.
type FunctionType struct {
	Name     string
	WireName string
	Params   []Param
	Return   Descriptor
}

// ParamFlatCount is the sum of every parameter's flattened slot count.
func (f FunctionType) ParamFlatCount() int {
	n := 0
	for _, p := range f.Params {
		n += len(p.Type.FlatTypes())
	}
	return n
}

// ReturnFlatCount is the flattened slot count of the return type, or 0
// if there is none.
func (f FunctionType) ReturnFlatCount() int {
	if f.Return == nil {
		return 0
	}
	return len(f.Return.FlatTypes())
}

func (f FunctionType) paramTypes() []Descriptor {
	out := make([]Descriptor, len(f.Params))
	for i, p := range f.Params {
		out[i] = p.Type
	}
	return out
}

func (f FunctionType) paramsIndirect() bool {
	return f.ParamFlatCount() > MaxFlatParams
}

func (f FunctionType) returnIndirect() bool {
	return f.ReturnFlatCount() > MaxFlatResults
}

// NativeImpl is the host-side implementation a service function
// invokes once its parameters have been lifted.
type NativeImpl func(args []any) (any, error)

// liftParams implements step 1 of call_service (spec §4.8): lift from
// the flat stream directly when param_flat_count <= 16, otherwise load
// the packed parameter tuple from flatParams[0] treated as a pointer.
func (f FunctionType) liftParams(flatParams []FlatValue, mem Memory, opts Options) ([]any, error) {
	if !f.paramsIndirect() {
		it := NewSliceIter(flatParams)
		args := make([]any, len(f.Params))
		for i, p := range f.Params {
			v, err := p.Type.Lift(mem, it, opts)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return args, nil
	}
	if len(flatParams) < 1 {
		return nil, newABIViolation("call_service: expected tuple pointer slot for indirect parameters")
	}
	ptr := uint32(flatParams[0].I32)
	tuple := TupleType(f.paramTypes())
	v, err := tuple.Load(mem, ptr, opts)
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

// CallService implements the guest->host direction (spec §4.8): lift
// parameters, invoke the native implementation, lower the result.
//
// The return is: nil (no flat result), a single FlatValue (direct
// return), or nil with the result written through the out-pointer that
// is the last element of flatParams (indirect return) — the caller
// distinguishes these by consulting f.ReturnFlatCount().
func (f FunctionType) CallService(flatParams []FlatValue, impl NativeImpl, mem Memory, opts Options) (*FlatValue, error) {
	args, err := f.liftParams(flatParams, mem, opts)
	if err != nil {
		return nil, err
	}
	result, err := impl(args)
	if err != nil {
		return nil, err
	}

	switch {
	case f.ReturnFlatCount() == 0:
		return nil, nil
	case !f.returnIndirect():
		sink := &SliceSink{}
		if err := f.Return.Lower(sink, mem, result, opts); err != nil {
			return nil, err
		}
		return &sink.Values[0], nil
	default:
		outIdx := len(flatParams) - 1
		if outIdx < 0 {
			return nil, newABIViolation("call_service: expected out-pointer slot for indirect return")
		}
		outPtr := uint32(flatParams[outIdx].I32)
		if err := f.Return.Store(mem, outPtr, result, opts); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

// GuestFn is the guest-exported function a client call invokes once
// its arguments have been lowered to flat values.
type GuestFn func(flat []FlatValue) ([]FlatValue, error)

// CallWasm implements the host->guest direction (spec §4.8): lower
// arguments, invoke the guest function, lift the result.
func (f FunctionType) CallWasm(nativeArgs []any, guestFn GuestFn, mem Memory, opts Options) (any, error) {
	if len(nativeArgs) != len(f.Params) {
		return nil, newABIViolation("call_wasm: expected %d arguments, got %d", len(f.Params), len(nativeArgs))
	}

	var flatParams []FlatValue
	if !f.paramsIndirect() {
		sink := &SliceSink{}
		for i, p := range f.Params {
			if err := p.Type.Lower(sink, mem, nativeArgs[i], opts); err != nil {
				return nil, err
			}
		}
		flatParams = sink.Values
	} else {
		tuple := TupleType(f.paramTypes())
		ptr, err := mem.Alloc(tuple.Alignment(), tuple.Size())
		if err != nil {
			return nil, err
		}
		if err := tuple.Store(mem, ptr, nativeArgs, opts); err != nil {
			return nil, err
		}
		flatParams = []FlatValue{FlatI32Value(int32(ptr))}
	}

	var outPtr uint32
	if f.returnIndirect() {
		p, err := mem.Alloc(f.Return.Alignment(), f.Return.Size())
		if err != nil {
			return nil, err
		}
		outPtr = p
		flatParams = append(flatParams, FlatI32Value(int32(outPtr)))
	}

	flatResult, err := guestFn(flatParams)
	if err != nil {
		return nil, err
	}

	switch {
	case f.ReturnFlatCount() == 0:
		return nil, nil
	case !f.returnIndirect():
		it := NewSliceIter(flatResult)
		return f.Return.Lift(mem, it, opts)
	default:
		return f.Return.Load(mem, outPtr, opts)
	}
}
