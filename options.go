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

import "fmt"

// Encoding names the string codec in effect for an operation (spec §3).
type Encoding string

const (
	EncodingUTF8          Encoding = "utf-8"
	EncodingUTF16         Encoding = "utf-16"
	EncodingLatin1AndUTF16 Encoding = "latin1+utf-16"
)

// EncodingCodec knows how to convert between a run of Unicode scalar
// values and its wire byte representation for one Encoding. The data
// pointer's allocation alignment (UnitAlignment) is independent of the
// descriptor's own alignment (spec §4.2).
type EncodingCodec interface {
	Name() Encoding
	// UnitAlignment is the alignment used when allocating the string
	// body (1 for utf-8, 2 for utf-16).
	UnitAlignment() int
	// Encode converts s to its wire bytes.
	Encode(s string) ([]byte, error)
	// Decode reconstructs a string from n code units starting at data
	// within raw (raw is exactly the string body, already read from
	// memory).
	Decode(raw []byte, codeUnits uint32) (string, error)
	// CodeUnits returns the wire code_units value for s (byte length
	// for utf-8, 16-bit unit count for utf-16).
	CodeUnits(s string) uint32
}

// codecs holds the registered string codecs, keyed by Encoding. This
// mirrors the teacher's architecture-parser registry (arch.go):
// RegisterParser/GetParser become RegisterEncoding/GetEncoding.
var codecs = map[Encoding]EncodingCodec{}

// RegisterEncoding registers a codec for the given encoding name.
func RegisterEncoding(name Encoding, c EncodingCodec) {
	codecs[name] = c
}

// GetEncoding returns the codec registered for name.
func GetEncoding(name Encoding) (EncodingCodec, error) {
	if c, ok := codecs[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unsupported encoding: %s (available: utf-8, utf-16)", name)
}

// ListEncodings returns the names of all registered encodings.
func ListEncodings() []Encoding {
	names := make([]Encoding, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	return names
}

func init() {
	RegisterEncoding(EncodingUTF8, utf8Codec{})
	RegisterEncoding(EncodingUTF16, utf16Codec{})
}

// Options is the context value carried through every load/store/lift/
// lower call (spec §3).
type Options struct {
	// Encoding selects the string codec. Defaults to utf-8 when zero.
	Encoding Encoding
	// KeepOption controls whether option<T> surfaces as a tagged
	// discriminated value (true) or collapses to T|null (false).
	KeepOption bool
}

// encoding returns the effective Encoding, defaulting to utf-8.
func (o Options) encoding() Encoding {
	if o.Encoding == "" {
		return EncodingUTF8
	}
	return o.Encoding
}

func (o Options) codec() (EncodingCodec, error) {
	enc := o.encoding()
	if enc == EncodingLatin1AndUTF16 {
		return nil, &UnsupportedEncoding{Encoding: enc}
	}
	return GetEncoding(enc)
}
