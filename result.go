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

// ResultValue is the native form of result<O, E> (spec §4.6).
type ResultValue struct {
	ok    bool
	value any
}

// Ok wraps a successful result value.
func Ok(v any) ResultValue { return ResultValue{ok: true, value: v} }

// Err wraps a failing result value.
func Err(v any) ResultValue { return ResultValue{ok: false, value: v} }

// IsOk reports whether the result is the ok case.
func (r ResultValue) IsOk() bool { return r.ok }

// IsErr reports whether the result is the err case.
func (r ResultValue) IsErr() bool { return !r.ok }

// Value returns the ok payload (meaningless if IsErr).
func (r ResultValue) Value() any { return r.value }

// ErrValue returns the err payload (meaningless if IsOk).
func (r ResultValue) ErrValue() any { return r.value }

func resultCtor(caseIndex int, _ string, payload any) any {
	if caseIndex == 0 {
		return Ok(payload)
	}
	return Err(payload)
}

func resultDtor(v any) (int, any, error) {
	r, ok := v.(ResultValue)
	if !ok {
		return 0, nil, newValidationError(KindResult, v, "expected ResultValue")
	}
	if r.ok {
		return 0, r.value, nil
	}
	return 1, r.value, nil
}

// ResultType returns a descriptor for result<ok, err>. Either okType or
// errType may be nil for a case with no payload.
func ResultType(okType, errType Descriptor) Descriptor {
	return buildVariant(KindResult, []VariantCase{
		{Name: "ok", Type: okType},
		{Name: "err", Type: errType},
	}, resultCtor, resultDtor)
}
