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

// Package cmcore implements a type-directed, bidirectional value codec
// between native Go values and the WebAssembly Component Model's
// Canonical ABI: linear-memory load/store and flat-stack lift/lower.
//
// # Memory layout
//
// Compound types are laid out in linear memory with the following
// size and alignment:
//
//	Type            Size     Alignment
//	────────────────────────────────────
//	bool, u8/s8     1        1
//	u16/s16         2        2
//	u32/s32/char    4        4
//	f32             4        4
//	u64/s64/f64     8        8
//	string          8        4 (data ptr + code_units)
//	list<T>         8        4 (data ptr + length)
//	record/tuple    sum      max field align
//	variant         varies   max case align
//	option<T>       varies   max(disc align, elem align)
//	flags           1/2/4/4n 1/2/4 (per bit count)
//	own/borrow      4        4
//
// # Descriptor construction
//
// Every type in the model is built as a Descriptor: PrimitiveType
// constants, ListType, RecordType, TupleType, FlagsType, VariantType,
// OptionType, ResultType, EnumType, OwnType, BorrowType, and
// NamespaceResourceType. Descriptors are immutable once built and safe
// to share across goroutines.
//
// # Flattening vs. memory
//
// Scalars and small composites flatten onto a sequence of i32/i64/f32/
// f64 stack slots (FlatValue, via Lift/Lower). Composites that exceed
// MaxFlatParams flat parameter slots, or MaxFlatResults flat result
// slots, fall back to an indirect pointer into linear memory (via
// Load/Store) instead — see FunctionType's CallService and CallWasm.
//
// # Calling convention
//
// A FunctionType describes one exported or imported function.
// CallService drives the guest-calls-host direction: lift parameters,
// invoke the native implementation, lower the result. CallWasm drives
// the host-calls-guest direction: lower parameters, invoke the guest
// export, lift the result. From a list of FunctionTypes and
// ResourceTypes, HostCreate builds a guest-callable WireTable whose
// entries go through CallService, and ServiceCreate builds a native
// NativeService whose functions go through CallWasm.
//
// # Concurrency
//
// Every operation runs to completion on the calling goroutine; there
// are no suspension points. A flat parameter stream (FlatIter) is
// single-pass: each descriptor consumes exactly len(FlatTypes()) slots
// from it. A flat sink (FlatSink) is append-only.
//
// # Error handling
//
// Failures are raised eagerly as one of a small set of concrete error
// types: ValidationError (a native or wire value outside its type's
// range), ABIViolation (a structural mismatch between a descriptor's
// shape and what the caller supplied), UnsupportedEncoding (a
// recognized but unimplemented string codec), OptionRepresentationMismatch
// (a native value's shape disagreeing with the KeepOption policy), and
// BigIntOverflow (a 64-bit wire integer outside the range of an
// internal numeric conversion).
package cmcore
