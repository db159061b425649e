package versionfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beelot/tooling/pkg/apperr"
	"github.com/natefinch/atomic"
)

const versionKey = "version"

type field struct {
	key   string
	value json.RawMessage
}

// Manifest is a package.json object. Top-level key order and every value other than
// "version" are kept exactly as read.
type Manifest struct {
	fields []field
}

// LoadManifest reads and parses path.
func LoadManifest(path string) (*Manifest, error) {
	content, err := readRequired(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseManifest parses a JSON object.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, jsonError(data, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, apperr.InputFormat("invalid JSON structure: expected an object")
	}

	m := &Manifest{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, jsonError(data, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, apperr.InputFormat("invalid JSON structure: expected an object key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, jsonError(data, err)
		}
		m.set(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, jsonError(data, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, apperr.InputFormat("invalid JSON: trailing data after top-level object")
		}
		return nil, jsonError(data, err)
	}
	return m, nil
}

// Version returns the "version" field. A missing, non-string or blank value is an error.
func (m *Manifest) Version() (string, error) {
	raw, ok := m.get(versionKey)
	if !ok {
		return "", apperr.InputFormat("missing or invalid 'version' field")
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil || strings.TrimSpace(v) == "" {
		return "", apperr.InputFormat("missing or invalid 'version' field")
	}
	return v, nil
}

// SetVersion replaces the "version" field in place, or appends it when absent.
func (m *Manifest) SetVersion(v string) {
	raw, err := marshalString(v)
	if err != nil {
		panic(err)
	}
	m.set(versionKey, raw)
}

// Bytes renders the manifest with 2-space indentation and a trailing newline.
func (m *Manifest) Bytes() ([]byte, error) {
	if len(m.fields) == 0 {
		return []byte("{}\n"), nil
	}
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, f := range m.fields {
		key, err := marshalString(f.key)
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		if err := json.Indent(&buf, f.value, "  ", "  "); err != nil {
			return nil, fmt.Errorf("failed to render field %q: %w", f.key, err)
		}
		if i < len(m.fields)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// Save replaces path with the rendered manifest.
func (m *Manifest) Save(path string) error {
	content, err := m.Bytes()
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (m *Manifest) get(key string) (json.RawMessage, bool) {
	for _, f := range m.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

// Duplicate keys keep the position of the first occurrence and the last value.
func (m *Manifest) set(key string, value json.RawMessage) {
	for i := range m.fields {
		if m.fields[i].key == key {
			m.fields[i].value = value
			return
		}
	}
	m.fields = append(m.fields, field{key: key, value: value})
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func jsonError(data []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := position(data, syntaxErr.Offset)
		return apperr.InputFormat("JSON parsing error at line %d, column %d: %s", line, col, syntaxErr.Error())
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		line, col := position(data, int64(len(data)))
		return apperr.InputFormat("JSON parsing error at line %d, column %d: unexpected end of input", line, col)
	}
	return apperr.InputFormat("JSON parsing error: %s", err.Error())
}

func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
