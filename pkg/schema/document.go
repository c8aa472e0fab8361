package schema

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vschema/internal/errors"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// DetectFormat guesses the encoding of data: JSON when it starts with
// an object or array, YAML otherwise.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// Document is a schema tree together with its global context.
type Document struct {
	Context Context `json:"context,omitempty" yaml:"context,omitempty"`
	Nodes   []*Node `json:"nodes" yaml:"nodes"`
}

// Parse decodes a document. The input is either an object with context and
// nodes keys, or a bare array of nodes.
func Parse(data []byte, format Format) (*Document, error) {
	raw, err := decodeRaw(data, format)
	if err != nil {
		return nil, err
	}
	return DocumentFromValue(raw)
}

// ParseContext decodes a context object.
func ParseContext(data []byte, format Format) (Context, error) {
	raw, err := decodeRaw(data, format)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return Context{}, nil
	}
	ctx, ok := asMap(raw)
	if !ok {
		return nil, malformed("context must be an object, got %T", raw)
	}
	return ctx, nil
}

// DocumentFromValue converts a decoded value into a Document.
func DocumentFromValue(v any) (*Document, error) {
	if _, isList := v.([]any); isList {
		children, err := ToChildren(v)
		if err != nil {
			return nil, err
		}
		return &Document{Context: Context{}, Nodes: children.Nodes()}, nil
	}

	m, ok := asMap(v)
	if !ok {
		return nil, malformed("document must be an object or an array, got %T", v)
	}
	doc := &Document{Context: Context{}}
	if raw := m["context"]; raw != nil {
		ctx, ok := asMap(raw)
		if !ok {
			return nil, malformed("context must be an object, got %T", raw)
		}
		doc.Context = ctx
	}
	children, err := ToChildren(m["nodes"])
	if err != nil {
		return nil, err
	}
	if children.IsText() {
		return nil, malformed("nodes must be a list")
	}
	doc.Nodes = children.Nodes()
	return doc, nil
}

func decodeRaw(data []byte, format Format) (any, error) {
	var raw any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.New("E161").Wrap(err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errors.New("E161").Wrap(err)
		}
	}
	return raw, nil
}
