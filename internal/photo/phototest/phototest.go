// Package phototest writes small JPEG and PNG files with hand-built EXIF
// blocks for tests.
package phototest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Minimal big-endian TIFF writer, enough to build EXIF blocks.

const (
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5

	TagDateTime         = 0x0132
	TagExifPointer      = 0x8769
	TagGPSPointer       = 0x8825
	TagDateTimeOriginal = 0x9003
	TagGPSLatitudeRef   = 0x0001
	TagGPSLatitude      = 0x0002
	TagGPSLongitudeRef  = 0x0003
	TagGPSLongitude     = 0x0004
)

// Entry is one IFD field.
type Entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// ASCII is a NUL-terminated string field.
func ASCII(tag uint16, s string) Entry {
	b := append([]byte(s), 0)
	return Entry{tag: tag, typ: typeASCII, count: uint32(len(b)), data: b}
}

// Long is a single 32-bit field.
func Long(tag uint16, v uint32) Entry {
	return Entry{tag: tag, typ: typeLong, count: 1, data: binary.BigEndian.AppendUint32(nil, v)}
}

// Rational takes whole-number values, each stored as v/1.
func Rational(tag uint16, vals ...uint32) Entry {
	var b []byte
	for _, v := range vals {
		b = binary.BigEndian.AppendUint32(b, v)
		b = binary.BigEndian.AppendUint32(b, 1)
	}
	return Entry{tag: tag, typ: typeRational, count: uint32(len(vals)), data: b}
}

// encodeIFD lays out one IFD at offset followed by its out-of-line values.
func encodeIFD(entries []Entry, offset uint32) []byte {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].tag < sorted[j].tag })

	dataOff := offset + uint32(2+12*len(sorted)+4)
	var head, tail []byte
	head = binary.BigEndian.AppendUint16(head, uint16(len(sorted)))
	for _, e := range sorted {
		head = binary.BigEndian.AppendUint16(head, e.tag)
		head = binary.BigEndian.AppendUint16(head, e.typ)
		head = binary.BigEndian.AppendUint32(head, e.count)
		if len(e.data) <= 4 {
			v := make([]byte, 4)
			copy(v, e.data)
			head = append(head, v...)
			continue
		}
		head = binary.BigEndian.AppendUint32(head, dataOff+uint32(len(tail)))
		tail = append(tail, e.data...)
		if len(tail)%2 == 1 {
			tail = append(tail, 0)
		}
	}
	head = binary.BigEndian.AppendUint32(head, 0)
	return append(head, tail...)
}

// BuildTIFF returns a TIFF block with IFD0 and, when gps is non-empty, a GPS IFD.
func BuildTIFF(ifd0, gps []Entry) []byte {
	return BuildTIFFWithExif(ifd0, nil, gps)
}

// BuildTIFFWithExif is BuildTIFF with an Exif sub-IFD, where camera fields
// such as DateTimeOriginal live.
func BuildTIFFWithExif(ifd0, exifIFD, gps []Entry) []byte {
	ifd0 = append([]Entry(nil), ifd0...)
	if len(exifIFD) > 0 {
		ifd0 = append(ifd0, Long(TagExifPointer, 0))
	}
	if len(gps) > 0 {
		ifd0 = append(ifd0, Long(TagGPSPointer, 0))
	}

	// Pointer values do not change the IFD size, so offsets can be laid out
	// before they are filled in.
	off := 8 + uint32(len(encodeIFD(ifd0, 8)))
	var tail []byte
	if len(exifIFD) > 0 {
		setPointer(ifd0, TagExifPointer, off)
		b := encodeIFD(exifIFD, off)
		tail = append(tail, b...)
		off += uint32(len(b))
	}
	if len(gps) > 0 {
		setPointer(ifd0, TagGPSPointer, off)
		tail = append(tail, encodeIFD(gps, off)...)
	}

	out := []byte{'M', 'M', 0, 42, 0, 0, 0, 8}
	out = append(out, encodeIFD(ifd0, 8)...)
	return append(out, tail...)
}

func setPointer(entries []Entry, tag uint16, off uint32) {
	for i := range entries {
		if entries[i].tag == tag {
			entries[i] = Long(tag, off)
		}
	}
}

// GPS returns the four GPS fields for whole-number DMS coordinates.
func GPS(latRef string, lat [3]uint32, lonRef string, lon [3]uint32) []Entry {
	return []Entry{
		ASCII(TagGPSLatitudeRef, latRef),
		Rational(TagGPSLatitude, lat[:]...),
		ASCII(TagGPSLongitudeRef, lonRef),
		Rational(TagGPSLongitude, lon[:]...),
	}
}

// LondonTIFF places a photo at 51°30'0"N 0°6'0"W taken at takenAt
// (EXIF layout), or with no time when takenAt is empty.
func LondonTIFF(takenAt string) []byte {
	var ifd0 []Entry
	if takenAt != "" {
		ifd0 = append(ifd0, ASCII(TagDateTime, takenAt))
	}
	return BuildTIFF(ifd0, GPS("N", [3]uint32{51, 30, 0}, "W", [3]uint32{0, 6, 0}))
}

// WriteJPEG writes a small JPEG to path, with an EXIF APP1 segment holding
// tiffData when it is non-nil.
func WriteJPEG(t testing.TB, path string, tiffData []byte) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))
	raw := buf.Bytes()

	out := []byte{0xFF, 0xD8}
	if tiffData != nil {
		payload := append([]byte("Exif\x00\x00"), tiffData...)
		out = append(out, 0xFF, 0xE1)
		out = binary.BigEndian.AppendUint16(out, uint16(len(payload)+2))
		out = append(out, payload...)
	}
	out = append(out, raw[2:]...)
	require.NoError(t, os.WriteFile(path, out, 0o644))
}

// WritePNG writes a small PNG without metadata.
func WritePNG(t testing.TB, path string) {
	t.Helper()
	WritePNGExif(t, path, nil)
}

// WritePNGExif writes a small PNG with an eXIf chunk holding tiffData,
// placed right after IHDR. A nil tiffData writes no chunk.
func WritePNGExif(t testing.TB, path string, tiffData []byte) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	raw := buf.Bytes()
	if tiffData == nil {
		require.NoError(t, os.WriteFile(path, raw, 0o644))
		return
	}

	// Signature (8) plus the IHDR chunk (4 length, 4 type, 13 data, 4 CRC).
	const ihdrEnd = 8 + 4 + 4 + 13 + 4
	chunk := binary.BigEndian.AppendUint32(nil, uint32(len(tiffData)))
	chunk = append(chunk, "eXIf"...)
	chunk = append(chunk, tiffData...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	out := append([]byte(nil), raw[:ihdrEnd]...)
	out = append(out, chunk...)
	out = append(out, raw[ihdrEnd:]...)
	require.NoError(t, os.WriteFile(path, out, 0o644))
}
