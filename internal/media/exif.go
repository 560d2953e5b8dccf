// Package media reads photo metadata used when uploading pictures.
package media

import (
	"io"
	"math"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Photo holds the EXIF fields the drive cares about.
type Photo struct {
	DateTaken   *time.Time
	CameraMake  string
	CameraModel string
	Orientation int
	Latitude    *float64
	Longitude   *float64
}

var photoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".heic": true,
	".dng":  true,
}

// IsPhoto reports whether name looks like a picture that may carry EXIF.
func IsPhoto(name string) bool {
	return photoExts[strings.ToLower(filepath.Ext(name))]
}

// ContentType guesses a MIME type from the file extension.
func ContentType(name string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}

// ReadPhoto decodes EXIF from r. It returns nil when there is none.
func ReadPhoto(r io.Reader) *Photo {
	x, err := exif.Decode(r)
	if err != nil {
		return nil
	}

	p := &Photo{
		CameraMake:  tagString(x, exif.Make),
		CameraModel: tagString(x, exif.Model),
		Orientation: 1,
	}
	if dt, err := x.DateTime(); err == nil {
		p.DateTaken = &dt
	}
	if lat, lon, err := x.LatLong(); err == nil && !math.IsNaN(lat) && !math.IsNaN(lon) {
		p.Latitude, p.Longitude = &lat, &lon
	}
	if orient, err := x.Get(exif.Orientation); err == nil {
		if v, err := orient.Int(0); err == nil && v >= 1 && v <= 8 {
			p.Orientation = v
		}
	}
	return p
}

// CaptureTime returns when the photo in r was taken, if recorded.
func CaptureTime(r io.Reader) (time.Time, bool) {
	p := ReadPhoto(r)
	if p == nil || p.DateTaken == nil {
		return time.Time{}, false
	}
	return *p.DateTaken, true
}

func tagString(x *exif.Exif, f exif.FieldName) string {
	tag, err := x.Get(f)
	if err != nil {
		return ""
	}
	if tag.Format() == tiff.StringVal {
		s, _ := tag.StringVal()
		return s
	}
	return tag.String()
}
