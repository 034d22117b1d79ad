package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
)

var (
	ErrNotObject = errors.New("metafile must contain a JSON object (key-value pairs)")
	ErrNested    = errors.New("metafile contains unsupported nested structures")
)

// LoadFlatJSON reads a metafile and converts it into CKAN extras.
//
// The root of the document must be an object. Values must be primitives
// (string, number, boolean, null) or lists of primitives; anything nested
// deeper fails with ErrNested naming the offending key. Key order of the
// document is preserved.
//
// Primitive scalars are stringified (null becomes the empty string); lists
// are stored as their JSON encoding so they round-trip on read.
func LoadFlatJSON(path string) ([]ckan.Extra, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	extras, err := DecodeFlatJSON(buf)
	if err != nil {
		return nil, fmt.Errorf("metafile %s: %w", path, err)
	}
	return extras, nil
}

// DecodeFlatJSON parses a flat JSON object into CKAN extras, keeping the
// key order of the document.
func DecodeFlatJSON(buf []byte) ([]ckan.Extra, error) {
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	extras := []ckan.Extra{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := tok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}

		s, err := encodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("%w for key %q", ErrNested, key)
		}
		extras = append(extras, ckan.Extra{Key: key, Value: s})
	}

	// consume the closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return extras, nil
}

// encodeValue stringifies a decoded JSON value for the extras wire format.
//
// Objects, and lists containing objects or lists, are rejected.
func encodeValue(v any) (string, error) {
	switch value := v.(type) {
	case nil:
		return "", nil
	case string:
		return value, nil
	case bool:
		if value {
			return "true", nil
		}
		return "false", nil
	case json.Number:
		return value.String(), nil
	case []any:
		for _, item := range value {
			switch item.(type) {
			case nil, string, bool, json.Number, float64:
				// primitive, fine
			default:
				return "", ErrNested
			}
		}
		buf, err := json.Marshal(value)
		if err != nil {
			return "", err
		}
		return string(buf), nil
	default:
		return "", ErrNested
	}
}

// EncodeFlatJSON renders extras as an indented flat JSON object, keeping
// entry order. Values parsing as JSON lists are embedded as such, so they
// survive a DecodeFlatJSON round-trip; everything else is written as a
// string.
func EncodeFlatJSON(extras []ckan.Extra) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteString("{\n")
	for nth, e := range extras {
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}

		value := []byte(nil)
		switch DecodeExtraValue(e.Value).(type) {
		case []any:
			value = []byte(e.Value)
		default:
			value, err = json.Marshal(e.Value)
			if err != nil {
				return nil, err
			}
		}

		fmt.Fprintf(buf, "    %s: %s", key, value)
		if nth < len(extras)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// DecodeExtraValue parses an extras value back into a JSON value,
// best-effort. Values which are not valid JSON stay literal strings.
func DecodeExtraValue(value string) any {
	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		return value
	}
	return parsed
}

// Merge combines base dataset metadata, detected system metadata and
// user-supplied extras into one CKAN-ready payload.
//
// Entries are appended in the order base, system, user. Colliding keys are
// deduplicated last-write-wins: the value of the latest entry wins, at the
// position of the earliest occurrence, so a payload never carries the same
// key twice.
func Merge(meta ckan.Dataset, sys SystemMeta, extras []ckan.Extra) ckan.Dataset {
	merged := []ckan.Extra{}
	at := map[string]int{}

	push := func(e ckan.Extra) {
		if nth, ok := at[e.Key]; ok {
			merged[nth].Value = e.Value
			return
		}
		at[e.Key] = len(merged)
		merged = append(merged, e)
	}

	for _, e := range meta.Extras {
		push(e)
	}
	for _, e := range sys.Extras() {
		push(e)
	}
	for _, e := range extras {
		push(e)
	}

	meta.Extras = merged
	return meta
}
