package photo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang/geo/s2"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ErrUnreadable marks a file that could not be opened or decoded as an image.
// It is distinct from an image that simply carries no GPS position.
var ErrUnreadable = errors.New("unreadable image")

// CaptureTimeLayout is the display form of a capture time.
const CaptureTimeLayout = "2006-01-02 15:04"

const exifTimeLayout = "2006:01:02 15:04:05"

// Location is the GPS position and capture time read from one image.
type Location struct {
	Image Image
	Lat   float64
	Lon   float64
	// TakenAt is nil when the image has no usable capture time. It has minute
	// precision and no zone; EXIF times are camera-local.
	TakenAt *time.Time
}

// TakenAtString formats the capture time, or returns "" when it is unknown.
func (l Location) TakenAtString() string {
	if l.TakenAt == nil {
		return ""
	}
	return l.TakenAt.Format(CaptureTimeLayout)
}

// ExifExtractor reads locations from the EXIF block of JPEG and PNG files.
type ExifExtractor struct{}

// Extract returns the image's location, or nil when the image has no GPS
// position. An error wrapping ErrUnreadable means the file is not an image.
func (ExifExtractor) Extract(img Image) (*Location, error) {
	f, err := os.Open(img.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrUnreadable, img.Name, err)
	}
	defer f.Close()

	// DecodeConfig reads only the header, which is enough to tell a photo
	// from a broken or mislabelled file.
	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrUnreadable, img.Name, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: rewind %s: %w", ErrUnreadable, img.Name, err)
	}

	var src io.Reader = f
	if format == "png" {
		payload, err := pngExif(f)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrUnreadable, img.Name, err)
		}
		if payload == nil {
			return nil, nil
		}
		src = bytes.NewReader(payload)
	}

	x, err := exif.Decode(src)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		// No EXIF at all: not an error, just no position.
		return nil, nil
	}

	tags := readTags(x)
	lat, lon, ok := tags.coordinates()
	if !ok {
		return nil, nil
	}
	return &Location{
		Image:   img,
		Lat:     lat,
		Lon:     lon,
		TakenAt: tags.captureTime(),
	}, nil
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// maxExifChunk bounds the eXIf payload read into memory.
const maxExifChunk = 1 << 20

// pngExif returns the payload of the eXIf chunk, or nil when the file has
// none. PNG keeps EXIF in its own chunk rather than in an APP1 segment.
func pngExif(r io.Reader) ([]byte, error) {
	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, err
	}
	if !bytes.Equal(sig, pngSignature) {
		return nil, errors.New("missing PNG signature")
	}

	head := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, head); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, nil
			}
			return nil, err
		}
		length := int64(binary.BigEndian.Uint32(head[:4]))
		switch string(head[4:]) {
		case "eXIf":
			if length > maxExifChunk {
				return nil, nil
			}
			payload := make([]byte, length)
			if _, err := io.ReadFull(r, payload); err != nil {
				return nil, nil
			}
			return payload, nil
		case "IDAT", "IEND":
			// eXIf must come before image data.
			return nil, nil
		}
		// Skip data and CRC.
		if _, err := io.CopyN(io.Discard, r, length+4); err != nil {
			return nil, nil
		}
	}
}

// tagReader is the part of *exif.Exif used here.
type tagReader interface {
	Get(name exif.FieldName) (*tiff.Tag, error)
}

// rawTags holds the EXIF fields relevant to a report, still undecoded.
type rawTags struct {
	Latitude         []float64
	LatitudeRef      string
	Longitude        []float64
	LongitudeRef     string
	DateTimeOriginal string
	DateTime         string
}

func readTags(x tagReader) rawTags {
	return rawTags{
		Latitude:         rationals(x, exif.GPSLatitude),
		LatitudeRef:      stringTag(x, exif.GPSLatitudeRef),
		Longitude:        rationals(x, exif.GPSLongitude),
		LongitudeRef:     stringTag(x, exif.GPSLongitudeRef),
		DateTimeOriginal: stringTag(x, exif.DateTimeOriginal),
		DateTime:         stringTag(x, exif.DateTime),
	}
}

// coordinates decodes the GPS fields into signed decimal degrees. ok is false
// when any of the four fields is missing or malformed.
func (t rawTags) coordinates() (lat, lon float64, ok bool) {
	if len(t.Latitude) < 3 || len(t.Longitude) < 3 || t.LatitudeRef == "" || t.LongitudeRef == "" {
		return 0, 0, false
	}
	lat = decimalDegrees(t.Latitude, t.LatitudeRef)
	lon = decimalDegrees(t.Longitude, t.LongitudeRef)
	if !s2.LatLngFromDegrees(lat, lon).IsValid() {
		return 0, 0, false
	}
	return lat, lon, true
}

// captureTime prefers the original capture field over the generic one.
func (t rawTags) captureTime() *time.Time {
	if ts := parseCaptureTime(t.DateTimeOriginal); ts != nil {
		return ts
	}
	return parseCaptureTime(t.DateTime)
}

// decimalDegrees converts a degrees/minutes/seconds triplet. Southern and
// western hemisphere references give negative values.
func decimalDegrees(dms []float64, ref string) float64 {
	v := dms[0] + dms[1]/60 + dms[2]/3600
	switch strings.ToUpper(ref) {
	case "S", "W":
		return -v
	}
	return v
}

// parseCaptureTime parses an EXIF "YYYY:MM:DD HH:MM:SS" value, dropping
// seconds. It returns nil for empty or malformed values.
func parseCaptureTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if len(value) < len(exifTimeLayout) {
		return nil
	}
	t, err := time.Parse(exifTimeLayout, value[:len(exifTimeLayout)])
	if err != nil {
		return nil
	}
	t = t.Truncate(time.Minute)
	return &t
}

func rationals(x tagReader, name exif.FieldName) []float64 {
	tag, err := x.Get(name)
	if err != nil {
		return nil
	}
	vals := make([]float64, 0, tag.Count)
	for i := 0; i < int(tag.Count); i++ {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return nil
		}
		if den == 0 {
			vals = append(vals, 0)
			continue
		}
		vals = append(vals, float64(num)/float64(den))
	}
	return vals
}

func stringTag(x tagReader, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}
