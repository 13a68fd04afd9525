// Package parse reads YAML, JSON and HCL documents into nested trees and
// parses command-line style argument lists.
package parse

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/kipoiutils/nested"
)

// LoadYAML decodes a YAML (or JSON) payload into a tree, keeping mapping key
// order. An empty or comment-only payload decodes to a nil leaf.
func LoadYAML(data []byte) (nested.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nested.Leaf{}, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: decode yaml: %w", err)
	}
	return nested.FromYAML(&doc)
}

// ReadYAML reads and decodes the YAML file at path.
func ReadYAML(path string) (nested.Node, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("parse: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("parse: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse: read %s: %w", path, err)
	}
	n, err := LoadYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parse: %s: %w", path, err)
	}
	return n, nil
}

// DumpYAML encodes a tree as YAML, mappings in stored key order.
func DumpYAML(n nested.Node) ([]byte, error) {
	doc, err := nested.ToYAML(n)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("parse: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("parse: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// JSONFileOrString parses s as an inline JSON/YAML document when it starts
// with "{" or ends with "}", and otherwise as the path of a file holding one.
// Surrounding quotes are stripped first.
func JSONFileOrString(s string) (nested.Node, error) {
	s = stripQuotes(s)
	if strings.HasPrefix(s, "{") || strings.HasSuffix(s, "}") {
		slog.Debug("parsing argument as an inline document")
		return LoadYAML([]byte(s))
	}
	if _, err := os.Stat(s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("parse: file path %s doesn't exist: %w", s, err)
		}
		return nil, fmt.Errorf("parse: stat %s: %w", s, err)
	}
	slog.Debug("parsing argument as a file path", "path", s)
	return ReadYAML(s)
}

func stripQuotes(s string) string {
	return strings.Trim(strings.Trim(s, "'"), `"`)
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
