package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/oy3o/fracpack"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a format name that is not supported.
var ErrUnknownFormat = errors.New("schema: unknown format")

// Format is a serialization of a Schema document.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCBOR     Format = "cbor"
	FormatFracpack Format = "fracpack"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatCBOR, FormatFracpack}

// ParseFormat maps a case-insensitive name, or a file extension, to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json", "jsonc":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	case "fracpack", "bin", "fp":
		return FormatFracpack, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

func (f Format) String() string { return string(f) }

// Binary reports whether f is not human readable.
func (f Format) Binary() bool { return f == FormatCBOR || f == FormatFracpack }

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.NilContainers = cbor.NilContainerAsEmpty
	var err error
	cborEnc, err = opts.EncMode()
	if err != nil {
		panic("schema: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("schema: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode serializes s. JSON output is indented.
func (s Schema) Encode(f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(s, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatCBOR:
		return cborEnc.Marshal(s)
	case FormatFracpack:
		return fracpack.Pack(s)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Decode parses a Schema in format f. JSON input may contain comments and
// trailing commas. Fracpack input is decoded strictly.
func Decode(data []byte, f Format) (Schema, error) {
	return DecodeWith(nil, data, f)
}

// DecodeWith is like Decode, using c for fracpack input. A nil c is the strict default.
func DecodeWith(c *fracpack.Codec, data []byte, f Format) (Schema, error) {
	var s Schema
	var err error
	switch f {
	case FormatJSON:
		err = json.Unmarshal(jsonc.ToJSON(data), &s)
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	case FormatCBOR:
		err = cborDec.Unmarshal(data, &s)
	case FormatFracpack:
		if c == nil {
			err = fracpack.Unpack(data, &s)
		} else {
			err = c.Unpack(data, &s)
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return Schema{}, fmt.Errorf("decode %s schema: %w", f, err)
	}
	return s, nil
}
