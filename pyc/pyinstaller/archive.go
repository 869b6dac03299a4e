// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package pyinstaller locates the frozen .pyc entries inside a
// PyInstaller "onefile" executable's CArchive trailer, grounded on
// pyinst_archive.rs's COOKIE/TOC structures. It stops at listing
// entries; extracting and decompressing one is left to the caller
// (spec.md's Non-goals exclude a general-purpose archive extractor).
package pyinstaller

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"
)

// cookieMagic is the 8-byte sentinel PyInstaller writes just before its
// CArchive trailer, scanned for from the end of the executable.
var cookieMagic = []byte{'M', 'E', 'I', 0o14, 0o13, 0o12, 0o13, 0o16}

// Cookie is the fixed-size trailer PyInstaller appends to the frozen
// executable, pointing at the table of contents.
type Cookie struct {
	Magic           [8]byte
	PackageLength   int32
	TOCPosition     int32
	TOCLength       int32
	PythonVersion   int32
}

// Entry describes one item inside the archive's table of contents.
type Entry struct {
	Name                   string
	DataPosition           int32
	DataLength             int32
	UncompressedLength     int32
	Compressed             bool
	TypeCode               byte
}

type entryHeader struct {
	EntryLength        int32
	DataPosition       int32
	DataLength         int32
	UncompressedLength int32
	CompressionFlag    byte
	TypeCode           byte
}

// FindCookie scans image (the full executable's bytes) from the end for
// the CArchive cookie and returns it along with its byte offset.
func FindCookie(image []byte) (*Cookie, int, error) {
	idx := bytes.LastIndex(image, cookieMagic)
	if idx == -1 {
		return nil, 0, fmt.Errorf("pyinstaller: cookie magic not found")
	}
	const cookieSize = 24
	if idx+cookieSize > len(image) {
		return nil, 0, fmt.Errorf("pyinstaller: truncated cookie at offset %d", idx)
	}
	var c Cookie
	if err := restruct.Unpack(image[idx:idx+cookieSize], binary.BigEndian, &c); err != nil {
		return nil, 0, fmt.Errorf("pyinstaller: unpacking cookie: %w", err)
	}
	return &c, idx, nil
}

// ReadTOC parses the table of contents described by c out of image.
func ReadTOC(image []byte, c *Cookie, cookieOffset int) ([]Entry, error) {
	archiveStart := cookieOffset + 24 - int(c.PackageLength)
	tocStart := archiveStart + int(c.TOCPosition)
	tocEnd := tocStart + int(c.TOCLength)
	if tocStart < 0 || tocEnd > len(image) || tocStart > tocEnd {
		return nil, fmt.Errorf("pyinstaller: table of contents out of bounds")
	}

	var entries []Entry
	pos := tocStart
	const headerSize = 18
	for pos+headerSize <= tocEnd {
		var h entryHeader
		if err := restruct.Unpack(image[pos:pos+headerSize], binary.BigEndian, &h); err != nil {
			return nil, fmt.Errorf("pyinstaller: unpacking TOC entry at %d: %w", pos, err)
		}
		nameEnd := pos + int(h.EntryLength)
		if nameEnd > tocEnd || nameEnd < pos+headerSize {
			return nil, fmt.Errorf("pyinstaller: malformed TOC entry at %d", pos)
		}
		name := string(bytes.TrimRight(image[pos+headerSize:nameEnd], "\x00"))
		entries = append(entries, Entry{
			Name:               name,
			DataPosition:       int32(archiveStart) + h.DataPosition,
			DataLength:         h.DataLength,
			UncompressedLength: h.UncompressedLength,
			Compressed:         h.CompressionFlag != 0,
			TypeCode:           h.TypeCode,
		})
		pos = nameEnd
	}
	return entries, nil
}
