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

func wrapCallWasm(fn FunctionType, guestFn GuestFn, ctx CallContext) NativeImpl {
	return func(args []any) (any, error) {
		return fn.CallWasm(args, guestFn, ctx.Mem, ctx.Opts)
	}
}

// ServiceCreate is the mirror of HostCreate (spec §4.8, "Service
// factory"): given the same descriptors and a wire-side function
// table, it produces a native-shaped service whose functions route
// through CallWasm.
func ServiceCreate(signatures []FunctionType, resources []*ResourceType, wireTable WireTable, ctx CallContext) (NativeService, error) {
	svc := NativeService{
		Functions: make(map[string]NativeImpl, len(signatures)),
		Resources: make(map[string]NativeService, len(resources)),
	}

	for _, fn := range signatures {
		guestFn, ok := wireTable[fn.WireName]
		if !ok {
			return NativeService{}, newABIViolation("service: no wire entry for %q", fn.WireName)
		}
		svc.Functions[fn.Name] = wrapCallWasm(fn, guestFn, ctx)
	}

	for _, res := range resources {
		sub := NativeService{Functions: make(map[string]NativeImpl, len(res.Bindings))}
		for _, b := range res.Bindings {
			key := wireKeyFor(res, b)
			guestFn, ok := wireTable[key]
			if !ok {
				return NativeService{}, newABIViolation("service: no wire entry for %q", key)
			}
			sub.Functions[b.Name] = wrapCallWasm(b.Func, guestFn, ctx)
		}
		svc.Resources[res.Name] = sub
	}

	return svc, nil
}
