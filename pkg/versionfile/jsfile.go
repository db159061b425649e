// Package versionfile reads and writes the two files that carry the project version:
// the exported constant in assets/js/version.js and the "version" field of package.json.
package versionfile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/beelot/tooling/pkg/apperr"
	"github.com/natefinch/atomic"
)

var jsVersionRE = regexp.MustCompile(`export\s+const\s+VERSION\s*=\s*"([^"]+)"\s*;?`)

// ParseJS extracts the VERSION constant from version.js content.
func ParseJS(content string) (string, error) {
	m := jsVersionRE.FindStringSubmatch(content)
	if m == nil {
		return "", apperr.InputFormat("could not extract VERSION")
	}
	return strings.TrimSpace(m[1]), nil
}

// ReadJS reads path and extracts its VERSION constant.
func ReadJS(path string) (string, error) {
	content, err := readRequired(path)
	if err != nil {
		return "", err
	}
	v, err := ParseJS(string(content))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// RenderJS returns the canonical version.js content for v.
func RenderJS(v string) []byte {
	return []byte("// assets/js/version.js\nexport const VERSION = \"" + v + "\";\n")
}

// WriteJS replaces path with the canonical version.js content for v.
func WriteJS(path, v string) error {
	if err := atomic.WriteFile(path, bytes.NewReader(RenderJS(v))); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readRequired(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.InputFormat("required file is missing: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return content, nil
}
