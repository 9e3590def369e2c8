package imageintake

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// File is an image selected or dropped by the user.
type File struct {
	Name string
	MIME string
	Size int64
	Data []byte
}

// NewFile wraps raw bytes, sniffing the MIME type from the content.
func NewFile(name string, data []byte) File {
	return File{
		Name: name,
		MIME: Sniff(data),
		Size: int64(len(data)),
		Data: data,
	}
}

// Sniff detects the media type of data without parameters.
func Sniff(data []byte) string {
	detected := mimetype.Detect(data).String()
	media, _, _ := strings.Cut(detected, ";")
	return strings.TrimSpace(media)
}

// normalised fills MIME and Size when the caller left them empty.
func (f File) normalised() File {
	if f.Size == 0 && len(f.Data) > 0 {
		f.Size = int64(len(f.Data))
	}
	if strings.TrimSpace(f.MIME) == "" && len(f.Data) > 0 {
		f.MIME = Sniff(f.Data)
	}
	f.MIME = strings.ToLower(strings.TrimSpace(f.MIME))
	return f
}

// DataURL encodes the file as a data: URL, the reference stored in saved
// records.
func (f File) DataURL() string {
	f = f.normalised()
	return "data:" + f.MIME + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}
