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

import "encoding/binary"

// Memory is the guest's linear-memory buffer as seen by the core: a
// little-endian byte-addressable space plus the two allocator hooks the
// guest exports. The core never frees memory it allocates through this
// interface; lifetime belongs to the guest (spec §3).
type Memory interface {
	ReadU8(ptr uint32) (uint8, error)
	ReadU16(ptr uint32) (uint16, error)
	ReadU32(ptr uint32) (uint32, error)
	ReadU64(ptr uint32) (uint64, error)
	WriteU8(ptr uint32, v uint8) error
	WriteU16(ptr uint32, v uint16) error
	WriteU32(ptr uint32, v uint32) error
	WriteU64(ptr uint32, v uint64) error

	// ReadBytes copies n bytes starting at ptr.
	ReadBytes(ptr uint32, n int) ([]byte, error)
	// WriteBytes writes b starting at ptr.
	WriteBytes(ptr uint32, b []byte) error

	// Alloc yields a pointer to at least size writable bytes, aligned to
	// alignment.
	Alloc(alignment, size int) (uint32, error)
	// Realloc grows or shrinks the allocation at ptr (oldSize bytes) to
	// newSize bytes, aligned to alignment, returning the (possibly new)
	// pointer.
	Realloc(ptr uint32, oldSize, alignment, newSize int) (uint32, error)
}

// LinearMemory is a reference Memory implementation over a plain Go
// byte slice, suitable for tests and for embedders with no guest of
// their own. Allocation bumps a watermark that starts at the end of the
// initial buffer, so Alloc never hands out the first size bytes (the
// caller may place values there) and never reuses freed space,
// matching "the core never frees memory" (spec §3).
type LinearMemory struct {
	buf       []byte
	watermark uint32
}

// NewLinearMemory allocates a LinearMemory backed by size bytes; the
// buffer grows past them as Alloc is called.
func NewLinearMemory(size int) *LinearMemory {
	return &LinearMemory{buf: make([]byte, size), watermark: uint32(size)}
}

func (m *LinearMemory) bounds(ptr uint32, n int) error {
	if int(ptr)+n > len(m.buf) {
		return newABIViolation("memory access out of bounds: ptr=%d len=%d size=%d", ptr, n, len(m.buf))
	}
	return nil
}

func (m *LinearMemory) ReadU8(ptr uint32) (uint8, error) {
	if err := m.bounds(ptr, 1); err != nil {
		return 0, err
	}
	return m.buf[ptr], nil
}

func (m *LinearMemory) ReadU16(ptr uint32) (uint16, error) {
	if err := m.bounds(ptr, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.buf[ptr:]), nil
}

func (m *LinearMemory) ReadU32(ptr uint32) (uint32, error) {
	if err := m.bounds(ptr, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.buf[ptr:]), nil
}

func (m *LinearMemory) ReadU64(ptr uint32) (uint64, error) {
	if err := m.bounds(ptr, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.buf[ptr:]), nil
}

func (m *LinearMemory) WriteU8(ptr uint32, v uint8) error {
	if err := m.bounds(ptr, 1); err != nil {
		return err
	}
	m.buf[ptr] = v
	return nil
}

func (m *LinearMemory) WriteU16(ptr uint32, v uint16) error {
	if err := m.bounds(ptr, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.buf[ptr:], v)
	return nil
}

func (m *LinearMemory) WriteU32(ptr uint32, v uint32) error {
	if err := m.bounds(ptr, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.buf[ptr:], v)
	return nil
}

func (m *LinearMemory) WriteU64(ptr uint32, v uint64) error {
	if err := m.bounds(ptr, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.buf[ptr:], v)
	return nil
}

func (m *LinearMemory) ReadBytes(ptr uint32, n int) ([]byte, error) {
	if err := m.bounds(ptr, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, m.buf[ptr:int(ptr)+n])
	return out, nil
}

func (m *LinearMemory) WriteBytes(ptr uint32, b []byte) error {
	if err := m.bounds(ptr, len(b)); err != nil {
		return err
	}
	copy(m.buf[ptr:], b)
	return nil
}

func (m *LinearMemory) Alloc(alignment, size int) (uint32, error) {
	p := alignPtr(m.watermark, alignment)
	if int(p)+size > len(m.buf) {
		grown := make([]byte, int(p)+size+4096)
		copy(grown, m.buf)
		m.buf = grown
	}
	m.watermark = p + uint32(size)
	return p, nil
}

func (m *LinearMemory) Realloc(ptr uint32, oldSize, alignment, newSize int) (uint32, error) {
	if newSize <= oldSize {
		return ptr, nil
	}
	newPtr, err := m.Alloc(alignment, newSize)
	if err != nil {
		return 0, err
	}
	if oldSize > 0 {
		old, err := m.ReadBytes(ptr, oldSize)
		if err != nil {
			return 0, err
		}
		if err := m.WriteBytes(newPtr, old); err != nil {
			return 0, err
		}
	}
	return newPtr, nil
}
