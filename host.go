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

// CallContext bundles the linear memory and codec/representation
// options every load/store/lift/lower call in a host or service needs
// (spec §4.8's "ctx").
type CallContext struct {
	Mem  Memory
	Opts Options
}

// NativeService is the host-side implementation a Host table is built
// against: named functions plus, per resource, a named sub-service of
// its constructors/methods/statics (spec §4.8: "resource methods are
// looked up on a sub-service named by the resource").
type NativeService struct {
	Functions map[string]NativeImpl
	Resources map[string]NativeService
}

// WireTable is the guest-callable function table a Host produces,
// keyed by wire name.
type WireTable map[string]GuestFn

func wrapCallService(fn FunctionType, impl NativeImpl, ctx CallContext) GuestFn {
	return func(flat []FlatValue) ([]FlatValue, error) {
		result, err := fn.CallService(flat, impl, ctx.Mem, ctx.Opts)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, nil
		}
		return []FlatValue{*result}, nil
	}
}

// HostCreate builds the guest-callable wire table for a set of plain
// functions and resources, routing every entry through CallService
// against the supplied native service (spec §4.8, "Host factory").
func HostCreate(signatures []FunctionType, resources []*ResourceType, service NativeService, ctx CallContext) (WireTable, error) {
	table := make(WireTable, len(signatures))

	for _, fn := range signatures {
		impl, ok := service.Functions[fn.Name]
		if !ok {
			return nil, newABIViolation("host: no native implementation for %q", fn.Name)
		}
		table[fn.WireName] = wrapCallService(fn, impl, ctx)
	}

	for _, res := range resources {
		sub, ok := service.Resources[res.Name]
		if !ok {
			return nil, newABIViolation("host: no native sub-service for resource %q", res.Name)
		}
		for _, b := range res.Bindings {
			impl, ok := sub.Functions[b.Name]
			if !ok {
				return nil, newABIViolation("host: no native implementation for %s.%s", res.Name, b.Name)
			}
			table[wireKeyFor(res, b)] = wrapCallService(b.Func, impl, ctx)
		}
	}

	return table, nil
}
