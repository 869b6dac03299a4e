// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package pyc reads the binary containers CPython ships bytecode in —
// .pyc files and, via the pyinstaller subpackage, PyInstaller's frozen
// executable archives — far enough to hand the embedded disassembly
// text (obtained by shelling out to dis, see cmd/pyrev) off to package
// disasm. It never interprets marshalled code objects itself; spec.md's
// Non-goals explicitly exclude building a marshal deserializer, so this
// package only has to find where the bytecode lives, not decode it.
package pyc

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-restruct/restruct"
)

// Header is the fixed-size .pyc file header introduced by PEP 552: a
// four-byte magic number identifying the CPython build, a flags word
// selecting hash- or mtime-based invalidation, and eight bytes whose
// meaning depends on that flag (grounded on marshal.rs's PycHeader).
type Header struct {
	Magic [4]byte
	Flags uint32
	Field1 uint32
	Field2 uint32
}

// HashBased reports whether this header uses PEP 552 hash-based
// invalidation rather than the legacy mtime+size scheme.
func (h *Header) HashBased() bool { return h.Flags&1 != 0 }

// ReadHeader reads and validates a .pyc file's 16-byte header.
func ReadHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, 16)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("pyc: reading header: %w", err)
	}
	var h Header
	if err := restruct.Unpack(buf, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("pyc: unpacking header: %w", err)
	}
	return &h, nil
}

// Body returns everything left in r: after ReadHeader has consumed the
// 16-byte header, that is the marshalled code object this package does
// not attempt to decode. Body itself does not skip the header.
func Body(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pyc: reading body: %w", err)
	}
	return data, nil
}
