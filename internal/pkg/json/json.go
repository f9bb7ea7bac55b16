// Package json is a thin JSON facade. It uses sonic (in encoding/json
// compatible mode) on amd64/arm64 and falls back to encoding/json elsewhere.
package json

import (
	stdjson "encoding/json"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
)

var (
	// Marshal encodes v into JSON bytes.
	Marshal func(v any) ([]byte, error)

	// MarshalIndent is like Marshal but applies indentation.
	MarshalIndent func(v any, prefix, indent string) ([]byte, error)

	// Unmarshal decodes JSON bytes into v.
	Unmarshal func(data []byte, v any) error

	// NewDecoder creates a new JSON decoder for the reader.
	NewDecoder func(r io.Reader) Decoder

	usingSonic bool
)

// Decoder is a JSON decoder.
type Decoder interface {
	Decode(v any) error
}

// RawMessage is a raw encoded JSON value.
type RawMessage = stdjson.RawMessage

func init() {
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		api := sonic.ConfigStd
		Marshal = api.Marshal
		MarshalIndent = api.MarshalIndent
		Unmarshal = api.Unmarshal
		NewDecoder = func(r io.Reader) Decoder { return api.NewDecoder(r) }
		usingSonic = true
		return
	}
	Marshal = stdjson.Marshal
	MarshalIndent = stdjson.MarshalIndent
	Unmarshal = stdjson.Unmarshal
	NewDecoder = func(r io.Reader) Decoder { return stdjson.NewDecoder(r) }
}

// IsUsingSonic reports whether sonic backs this package.
func IsUsingSonic() bool { return usingSonic }
