package dataimport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseJSON reads an array of flat objects, or an object whose "data" key
// holds that array. Headers are the union of keys in first-seen order.
// Numbers and booleans keep their literal text; nested values are kept as
// compact JSON.
func ParseJSON(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := seekRecords(dec); err != nil {
		return nil, err
	}

	var (
		headers []string
		seen    = make(map[string]bool)
		objects []map[string]string
	)
	for dec.More() {
		obj, keys, err := readFlatObject(dec)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
		objects = append(objects, obj)
	}
	if len(headers) == 0 {
		if len(objects) == 0 {
			return nil, ErrNoDataRows
		}
		return nil, ErrMissingHeader
	}

	records := make([][]string, len(objects))
	for i, obj := range objects {
		rec := make([]string, len(headers))
		for j, h := range headers {
			rec[j] = obj[h]
		}
		records[i] = rec
	}
	return newTable(headers, records, 1)
}

// seekRecords positions the decoder inside the record array
func seekRecords(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	switch tok {
	case json.Delim('['):
		return nil
	case json.Delim('{'):
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
			}
			if key, _ := keyTok.(string); key == "data" {
				next, err := dec.Token()
				if err != nil || next != json.Delim('[') {
					return ErrInvalidJSON
				}
				return nil
			}
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
			}
		}
	}
	return ErrInvalidJSON
}

func readFlatObject(dec *json.Decoder) (map[string]string, []string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if tok != json.Delim('{') {
		return nil, nil, ErrInvalidJSON
	}
	obj := make(map[string]string)
	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		key, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		if _, dup := obj[key]; !dup {
			keys = append(keys, key)
		}
		obj[key] = rawToCell(raw)
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return obj, keys, nil
}

func rawToCell(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		return ""
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case raw[0] == '{' || raw[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			return buf.String()
		}
	}
	return string(raw)
}
