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

import (
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"
)

// utf8Codec implements EncodingCodec for the utf-8 encoding.
type utf8Codec struct{}

func (utf8Codec) Name() Encoding      { return EncodingUTF8 }
func (utf8Codec) UnitAlignment() int  { return 1 }
func (utf8Codec) CodeUnits(s string) uint32 { return uint32(len(s)) }

func (utf8Codec) Encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, newValidationError(KindString, s, "invalid UTF-8")
	}
	return []byte(s), nil
}

func (utf8Codec) Decode(raw []byte, codeUnits uint32) (string, error) {
	if uint32(len(raw)) != codeUnits {
		return "", newABIViolation("utf-8 string body length %d does not match code_units %d", len(raw), codeUnits)
	}
	if !utf8.Valid(raw) {
		return "", newValidationError(KindString, raw, "invalid UTF-8 bytes")
	}
	return string(raw), nil
}

// utf16Codec implements EncodingCodec for the utf-16 encoding: a
// little-endian array of 16-bit code units (spec §4.2).
type utf16Codec struct{}

func (utf16Codec) Name() Encoding     { return EncodingUTF16 }
func (utf16Codec) UnitAlignment() int { return 2 }

func (utf16Codec) CodeUnits(s string) uint32 {
	return uint32(len(utf16.Encode([]rune(s))))
}

func (utf16Codec) Encode(s string) ([]byte, error) {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[i*2:], u)
	}
	return out, nil
}

func (utf16Codec) Decode(raw []byte, codeUnits uint32) (string, error) {
	if uint32(len(raw)) != codeUnits*2 {
		return "", newABIViolation("utf-16 string body length %d does not match code_units %d", len(raw), codeUnits)
	}
	units := make([]uint16, codeUnits)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}
	return string(utf16.Decode(units)), nil
}

// stringDescriptor implements wstring: a (data_ptr, code_units) pair in
// memory and on the flat stack (spec §4.2).
type stringDescriptor struct{}

// String is the wstring type descriptor.
var String Descriptor = stringDescriptor{}

// StringType returns the wstring descriptor. It takes no parameters:
// the encoding is chosen per-call via Options, not baked into the type
// (spec §4.2).
func StringType() Descriptor { return String }

func (stringDescriptor) Kind() Kind      { return KindString }
func (stringDescriptor) Size() int       { return 8 }
func (stringDescriptor) Alignment() int  { return 4 }
func (stringDescriptor) FlatTypes() []FlatType {
	return []FlatType{FlatI32, FlatI32}
}

func (d stringDescriptor) Load(mem Memory, ptr uint32, opts Options) (any, error) {
	dataPtr, err := mem.ReadU32(ptr)
	if err != nil {
		return nil, err
	}
	codeUnits, err := mem.ReadU32(ptr + 4)
	if err != nil {
		return nil, err
	}
	return d.decode(mem, dataPtr, codeUnits, opts)
}

func (d stringDescriptor) decode(mem Memory, dataPtr, codeUnits uint32, opts Options) (string, error) {
	codec, err := opts.codec()
	if err != nil {
		return "", err
	}
	bodyLen := int(codeUnits)
	if codec.Name() == EncodingUTF16 {
		bodyLen *= 2
	}
	raw, err := mem.ReadBytes(dataPtr, bodyLen)
	if err != nil {
		return "", err
	}
	return codec.Decode(raw, codeUnits)
}

func (d stringDescriptor) Store(mem Memory, ptr uint32, v any, opts Options) error {
	s, ok := v.(string)
	if !ok {
		return newValidationError(KindString, v, "expected string")
	}
	dataPtr, codeUnits, err := d.allocate(mem, s, opts)
	if err != nil {
		return err
	}
	if err := mem.WriteU32(ptr, dataPtr); err != nil {
		return err
	}
	return mem.WriteU32(ptr+4, codeUnits)
}

func (d stringDescriptor) allocate(mem Memory, s string, opts Options) (uint32, uint32, error) {
	codec, err := opts.codec()
	if err != nil {
		return 0, 0, err
	}
	body, err := codec.Encode(s)
	if err != nil {
		return 0, 0, err
	}
	dataPtr, err := mem.Alloc(codec.UnitAlignment(), len(body))
	if err != nil {
		return 0, 0, err
	}
	if len(body) > 0 {
		if err := mem.WriteBytes(dataPtr, body); err != nil {
			return 0, 0, err
		}
	}
	return dataPtr, codec.CodeUnits(s), nil
}

func (d stringDescriptor) Lift(mem Memory, it FlatIter, opts Options) (any, error) {
	dataSlot, ok := it.Next()
	if !ok {
		return nil, newABIViolation("string.lift: expected data_ptr slot")
	}
	lenSlot, ok := it.Next()
	if !ok {
		return nil, newABIViolation("string.lift: expected code_units slot")
	}
	return d.decode(mem, uint32(dataSlot.AsI32()), uint32(lenSlot.AsI32()), opts)
}

func (d stringDescriptor) Lower(sink FlatSink, mem Memory, v any, opts Options) error {
	s, ok := v.(string)
	if !ok {
		return newValidationError(KindString, v, "expected string")
	}
	dataPtr, codeUnits, err := d.allocate(mem, s, opts)
	if err != nil {
		return err
	}
	sink.Push(FlatI32Value(int32(dataPtr)))
	sink.Push(FlatI32Value(int32(codeUnits)))
	return nil
}
