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

// Handle is an opaque resource handle: an unsigned 32-bit integer with
// no meaning to the core beyond its wire representation (spec §3).
type Handle = uint32

// handleDescriptor implements own<T>, borrow<T>, and the bare resource
// handle itself: all three are wire-equivalent to u32 (spec §4.7). The
// Kind tag is the only thing that differs between them; policy
// enforcement (ownership transfer vs. borrowing) belongs to higher
// layers, not this descriptor.
type handleDescriptor struct {
	kind     Kind
	resource *ResourceType
}

func (h handleDescriptor) Kind() Kind            { return h.kind }
func (h handleDescriptor) Size() int             { return 4 }
func (h handleDescriptor) Alignment() int        { return 4 }
func (h handleDescriptor) FlatTypes() []FlatType { return []FlatType{FlatI32} }

func (h handleDescriptor) Load(mem Memory, ptr uint32, _ Options) (any, error) {
	return mem.ReadU32(ptr)
}

func (h handleDescriptor) Store(mem Memory, ptr uint32, v any, _ Options) error {
	handle, ok := v.(Handle)
	if !ok {
		return newValidationError(h.kind, v, "expected resource handle (uint32)")
	}
	return mem.WriteU32(ptr, handle)
}

func (h handleDescriptor) Lift(_ Memory, it FlatIter, _ Options) (any, error) {
	slot, ok := it.Next()
	if !ok {
		return nil, newABIViolation("%v.lift: expected one flat slot", h.kind)
	}
	return Handle(uint32(slot.I32)), nil
}

func (h handleDescriptor) Lower(sink FlatSink, _ Memory, v any, _ Options) error {
	handle, ok := v.(Handle)
	if !ok {
		return newValidationError(h.kind, v, "expected resource handle (uint32)")
	}
	sink.Push(FlatI32Value(int32(handle)))
	return nil
}

// ResourceMethodRole distinguishes the three flavors of function a
// resource can expose (spec §4.7): a constructor, an instance method,
// or a static (no receiver) function.
type ResourceMethodRole int

const (
	ResourceConstructor ResourceMethodRole = iota
	ResourceMethod
	ResourceStatic
)

// ResourceBinding associates one FunctionType with a resource under a
// role, used by the host/service factories (§4.8) to build the
// "[constructor]r" / "[method]r.m" / "[static]r.m" wire names the
// Component Model convention assigns to resource-associated functions
// (SPEC_FULL §C.6 — the distilled spec left the concrete naming scheme
// unspecified).
type ResourceBinding struct {
	Role ResourceMethodRole
	Name string
	Func FunctionType
}

// ResourceType names a resource and carries the table of
// constructors/methods/statics the host/service factories enumerate
// (spec §4.7).
type ResourceType struct {
	Name     string
	WireName string
	Bindings []ResourceBinding
}

// NamespaceResourceType declares a resource identified by name natively
// and wireName on the wire.
func NamespaceResourceType(name, wireName string) *ResourceType {
	return &ResourceType{Name: name, WireName: wireName}
}

// Bind registers a constructor/method/static function under this
// resource.
func (r *ResourceType) Bind(role ResourceMethodRole, name string, fn FunctionType) {
	r.Bindings = append(r.Bindings, ResourceBinding{Role: role, Name: name, Func: fn})
}

// Descriptor returns the bare resource-handle descriptor (KindResource).
func (r *ResourceType) Descriptor() Descriptor {
	return handleDescriptor{kind: KindResource, resource: r}
}

// OwnType returns an own<resource> descriptor: an owning handle.
func OwnType(resource *ResourceType) Descriptor {
	return handleDescriptor{kind: KindOwn, resource: resource}
}

// BorrowType returns a borrow<resource> descriptor: a non-owning
// handle.
func BorrowType(resource *ResourceType) Descriptor {
	return handleDescriptor{kind: KindBorrow, resource: resource}
}

// wireKeyFor returns the Component Model wire-name convention for a
// resource binding: "[constructor]r", "[method]r.m", "[static]r.m".
func wireKeyFor(resource *ResourceType, b ResourceBinding) string {
	switch b.Role {
	case ResourceConstructor:
		return "[constructor]" + resource.WireName
	case ResourceStatic:
		return "[static]" + resource.WireName + "." + b.Name
	default:
		return "[method]" + resource.WireName + "." + b.Name
	}
}
