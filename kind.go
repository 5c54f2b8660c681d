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

// Kind tags every descriptor with the Component Model type it represents.
type Kind int

const (
	KindBool Kind = iota
	KindU8
	KindU16
	KindU32
	KindU64
	KindS8
	KindS16
	KindS32
	KindS64
	KindFloat32
	KindFloat64
	KindChar
	KindString
	KindList
	KindRecord
	KindTuple
	KindVariant
	KindEnum
	KindFlags
	KindOption
	KindResult
	KindResource
	KindOwn
	KindBorrow
)

var kindNames = map[Kind]string{
	KindBool:     "bool",
	KindU8:       "u8",
	KindU16:      "u16",
	KindU32:      "u32",
	KindU64:      "u64",
	KindS8:       "s8",
	KindS16:      "s16",
	KindS32:      "s32",
	KindS64:      "s64",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindChar:     "char",
	KindString:   "string",
	KindList:     "list",
	KindRecord:   "record",
	KindTuple:    "tuple",
	KindVariant:  "variant",
	KindEnum:     "enum",
	KindFlags:    "flags",
	KindOption:   "option",
	KindResult:   "result",
	KindResource: "resource",
	KindOwn:      "own",
	KindBorrow:   "borrow",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// primitiveSizes and primitiveAlignments are the per-Kind footprint tables
// for the scalar kinds. Composite kinds (list, record, ...) derive their
// size/alignment from their children instead of this table.
var primitiveSizes = map[Kind]int{
	KindBool:    1,
	KindU8:      1,
	KindU16:     2,
	KindU32:     4,
	KindU64:     8,
	KindS8:      1,
	KindS16:     2,
	KindS32:     4,
	KindS64:     8,
	KindFloat32: 4,
	KindFloat64: 8,
	KindChar:    4,
}

var primitiveAlignments = map[Kind]int{
	KindBool:    1,
	KindU8:      1,
	KindU16:     2,
	KindU32:     4,
	KindU64:     8,
	KindS8:      1,
	KindS16:     2,
	KindS32:     4,
	KindS64:     8,
	KindFloat32: 4,
	KindFloat64: 8,
	KindChar:    4,
}

// IsPrimitiveKind reports whether k is one of the fixed-size scalar kinds
// with an entry in primitiveSizes/primitiveAlignments.
func IsPrimitiveKind(k Kind) bool {
	_, ok := primitiveSizes[k]
	return ok
}

// PrimitiveSize returns the footprint in bytes for a primitive kind, or 0
// if k is not primitive.
func PrimitiveSize(k Kind) int {
	return primitiveSizes[k]
}

// PrimitiveAlignment returns the alignment for a primitive kind, or 0 if k
// is not primitive.
func PrimitiveAlignment(k Kind) int {
	return primitiveAlignments[k]
}

// align rounds p up to the next multiple of a. a must be a power of two.
func align(p, a int) int {
	if a <= 1 {
		return p
	}
	return (p + a - 1) &^ (a - 1)
}

// alignPtr rounds a 32-bit linear-memory pointer up to alignment a.
func alignPtr(p uint32, a int) uint32 {
	return uint32(align(int(p), a))
}
