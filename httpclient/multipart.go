package httpclient

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kbukum/pokitdok/errors"
)

// FilePart is one file attached to a multipart request. The file is read
// when the request is built, not when the FilePart is created.
type FilePart struct {
	// Path is the filesystem path of the file.
	Path string
	// ContentType is the MIME type sent for the part (e.g., "application/EDI-X12").
	ContentType string
}

// Encode reads the file and returns its multipart fragment:
// the part headers, a blank line, the raw bytes and a trailing CRLF.
// The leading boundary line is written by the caller.
func (f FilePart) Encode() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errors.FileEncoding(f.Path, err)
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + 128)
	buf.WriteString(`Content-Disposition: form-data; name="file"; filename="`)
	buf.WriteString(escapeQuotes(filepath.Base(f.Path)))
	buf.WriteString("\"\r\n")
	buf.WriteString("Content-Type: " + f.ContentType + "\r\n\r\n")
	buf.Write(data)
	buf.WriteString("\r\n")
	return buf.Bytes(), nil
}

// newBoundary returns a boundary token unique to one request.
func newBoundary() string {
	return "Boundary-" + uuid.NewString()
}

// encodeMultipart writes every parameter and then every file between
// boundary delimiters, closing with the terminal delimiter.
func encodeMultipart(boundary string, params Params, files []FilePart) ([]byte, error) {
	var buf bytes.Buffer
	delimiter := "--" + boundary + "\r\n"

	for _, kv := range params {
		value, err := kv.Value.Display()
		if err != nil {
			return nil, errors.ToJSON(err)
		}
		buf.WriteString(delimiter)
		buf.WriteString(`Content-Disposition: form-data; name="` + escapeQuotes(kv.Key) + "\"\r\n\r\n")
		buf.WriteString(value)
		buf.WriteString("\r\n")
	}

	for _, f := range files {
		part, err := f.Encode()
		if err != nil {
			return nil, err
		}
		buf.WriteString(delimiter)
		buf.Write(part)
	}

	buf.WriteString("--" + boundary + "--\r\n")
	return buf.Bytes(), nil
}

// escapeQuotes backslash-escapes quotes and backslashes in header values.
func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
