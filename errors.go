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

// ValidationError reports a native or wire value outside the range its
// type descriptor permits.
type ValidationError struct {
	Kind  Kind
	Value any
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %v: %s", e.Kind, e.Value, e.Msg)
}

func newValidationError(k Kind, v any, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: k, Value: v, Msg: fmt.Sprintf(format, args...)}
}

// ABIViolation reports a structural mismatch between a descriptor's
// declared shape and what the caller actually supplied: flat-stream
// arity, out-pointer typing, parameter count, or case-count overflow.
type ABIViolation struct {
	Msg string
}

func (e *ABIViolation) Error() string {
	return "ABI violation: " + e.Msg
}

func newABIViolation(format string, args ...any) *ABIViolation {
	return &ABIViolation{Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedEncoding reports a string encoding the core recognizes but
// does not implement (latin1+utf-16).
type UnsupportedEncoding struct {
	Encoding Encoding
}

func (e *UnsupportedEncoding) Error() string {
	return fmt.Sprintf("unsupported encoding: %s", e.Encoding)
}

// OptionRepresentationMismatch reports that a native value's shape
// disagrees with the Options.KeepOption policy in effect.
type OptionRepresentationMismatch struct {
	KeepOption bool
	Value      any
}

func (e *OptionRepresentationMismatch) Error() string {
	return fmt.Sprintf("option representation mismatch: keep_option=%v, value=%#v", e.KeepOption, e.Value)
}

// BigIntOverflow reports that a 64-bit wire integer could not be
// represented in the internal numeric conversion used to process it.
type BigIntOverflow struct {
	Value uint64
}

func (e *BigIntOverflow) Error() string {
	return fmt.Sprintf("bigint overflow: %d exceeds representable range", e.Value)
}
