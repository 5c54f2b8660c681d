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

import "testing"

func TestServiceCreateRoutesPlainFunction(t *testing.T) {
	add := FunctionType{
		Name:     "add",
		WireName: "add",
		Params:   []Param{{Name: "a", Type: U32}, {Name: "b", Type: U32}},
		Return:   U32,
	}
	wireTable := WireTable{
		"add": func(flat []FlatValue) ([]FlatValue, error) {
			return []FlatValue{FlatI32Value(flat[0].I32 + flat[1].I32)}, nil
		},
	}
	svc, err := ServiceCreate([]FunctionType{add}, nil, wireTable, CallContext{})
	if err != nil {
		t.Fatalf("ServiceCreate error: %v", err)
	}
	impl, ok := svc.Functions["add"]
	if !ok {
		t.Fatal(`expected native service to contain "add"`)
	}
	got, err := impl([]any{uint32(4), uint32(6)})
	if err != nil {
		t.Fatalf("impl error: %v", err)
	}
	if got != uint32(10) {
		t.Errorf("got %v, want 10", got)
	}
}

func TestServiceCreateMissingWireEntryFails(t *testing.T) {
	add := FunctionType{Name: "add", WireName: "add"}
	if _, err := ServiceCreate([]FunctionType{add}, nil, WireTable{}, CallContext{}); err == nil {
		t.Error("expected missing wire entry to fail ServiceCreate")
	}
}

func TestServiceCreateRoutesResourceMethods(t *testing.T) {
	res := NamespaceResourceType("counter", "counter")
	res.Bind(ResourceStatic, "reset-all", FunctionType{Name: "reset-all"})

	wireTable := WireTable{
		"[static]counter.reset-all": func(flat []FlatValue) ([]FlatValue, error) {
			return nil, nil
		},
	}
	svc, err := ServiceCreate(nil, []*ResourceType{res}, wireTable, CallContext{})
	if err != nil {
		t.Fatalf("ServiceCreate error: %v", err)
	}
	sub, ok := svc.Resources["counter"]
	if !ok {
		t.Fatal(`expected native service to contain resource "counter"`)
	}
	impl, ok := sub.Functions["reset-all"]
	if !ok {
		t.Fatal(`expected resource sub-service to contain "reset-all"`)
	}
	if _, err := impl(nil); err != nil {
		t.Fatalf("impl error: %v", err)
	}
}

func TestServiceCreateMissingResourceWireEntryFails(t *testing.T) {
	res := NamespaceResourceType("counter", "counter")
	res.Bind(ResourceMethod, "increment", FunctionType{Name: "increment"})
	if _, err := ServiceCreate(nil, []*ResourceType{res}, WireTable{}, CallContext{}); err == nil {
		t.Error("expected missing resource wire entry to fail ServiceCreate")
	}
}

func TestHostServiceRoundTrip(t *testing.T) {
	// Wiring CallService through a Host and CallWasm through a Service
	// over the same in-memory WireTable should hand the host
	// implementation's result back to the client unchanged (spec §4.8).
	double := FunctionType{
		Name:     "double",
		WireName: "double",
		Params:   []Param{{Name: "x", Type: U32}},
		Return:   U32,
	}
	hostSvc := NativeService{
		Functions: map[string]NativeImpl{
			"double": func(args []any) (any, error) { return args[0].(uint32) * 2, nil },
		},
	}
	table, err := HostCreate([]FunctionType{double}, nil, hostSvc, CallContext{})
	if err != nil {
		t.Fatalf("HostCreate error: %v", err)
	}
	clientSvc, err := ServiceCreate([]FunctionType{double}, nil, table, CallContext{})
	if err != nil {
		t.Fatalf("ServiceCreate error: %v", err)
	}
	got, err := clientSvc.Functions["double"]([]any{uint32(21)})
	if err != nil {
		t.Fatalf("impl error: %v", err)
	}
	if got != uint32(42) {
		t.Errorf("got %v, want 42", got)
	}
}
