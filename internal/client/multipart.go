package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/and161185/perpus/internal/pkg/json"
)

// Part is one multipart/form-data section.
type Part struct {
	Name        string
	Filename    string // set for file parts
	ContentType string
	Data        []byte
}

// Multipart is a multipart/form-data request body.
type Multipart struct {
	Parts []Part
}

// AddJSON appends v encoded as an application/json part.
func (m *Multipart) AddJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("part %s: %w", name, err)
	}
	m.Parts = append(m.Parts, Part{Name: name, ContentType: "application/json", Data: data})
	return nil
}

// AddFile appends a file part.
func (m *Multipart) AddFile(name, filename, contentType string, data []byte) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	m.Parts = append(m.Parts, Part{Name: name, Filename: filename, ContentType: contentType, Data: data})
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode renders the body and returns it with its Content-Type.
func (m *Multipart) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range m.Parts {
		disp := fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(p.Name))
		if p.Filename != "" {
			disp += fmt.Sprintf(`; filename="%s"`, quoteEscaper.Replace(p.Filename))
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", disp)
		if p.ContentType != "" {
			h.Set("Content-Type", p.ContentType)
		}
		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := pw.Write(p.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
