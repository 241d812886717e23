// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// path.go implements generic path-based reads and writes over the content
// document. A path is a sequence of segments, object key or array index,
// walked against the document's JSON tree. Every form editor funnels its
// changes through Set; there are no per-field setters.
package content

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Segment addresses one step into the document tree: an object key or an
// array index, never both.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// K returns a key segment.
func K(key string) Segment { return Segment{Key: key} }

// I returns an index segment.
func I(i int) Segment { return Segment{Index: i, IsIndex: true} }

// Path addresses a nested field inside a Document, e.g.
// caseStudiesData[0].title.
type Path []Segment

// String renders the path in a readable form for errors and logs.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.IsIndex {
			fmt.Fprintf(&b, "[%d]", seg.Index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
	}
	return b.String()
}

// MarshalJSON encodes the path as the wire form used by the editor API:
// a flat array of string keys and integer indices.
func (p Path) MarshalJSON() ([]byte, error) {
	raw := make([]any, len(p))
	for i, seg := range p {
		if seg.IsIndex {
			raw[i] = seg.Index
		} else {
			raw[i] = seg.Key
		}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes a path from a JSON array of strings and numbers.
func (p *Path) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("path: %w", err)
	}
	parsed, err := ParsePath(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePath converts a decoded JSON array into a Path. Numbers must be
// non-negative integers.
func ParsePath(raw []any) (Path, error) {
	path := make(Path, 0, len(raw))
	for _, elem := range raw {
		switch v := elem.(type) {
		case string:
			path = append(path, K(v))
		case float64:
			if v < 0 || v != math.Trunc(v) {
				return nil, fmt.Errorf("path: invalid index %v", v)
			}
			path = append(path, I(int(v)))
		case int:
			if v < 0 {
				return nil, fmt.Errorf("path: invalid index %d", v)
			}
			path = append(path, I(v))
		case json.Number:
			n, err := strconv.Atoi(v.String())
			if err != nil || n < 0 {
				return nil, fmt.Errorf("path: invalid index %q", v.String())
			}
			path = append(path, I(n))
		default:
			return nil, fmt.Errorf("path: unsupported segment type %T", elem)
		}
	}
	return path, nil
}

// Get returns the value at path inside the document, decoded as generic
// JSON (map[string]any, []any, string, float64, bool, nil).
func Get(doc *Document, path Path) (any, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("path: empty")
	}
	node, err := toTree(doc)
	if err != nil {
		return nil, err
	}
	var cur any = node
	for _, seg := range path {
		cur, err = step(cur, seg, path)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// Set applies value at path and returns a new, fully independent document.
// The receiver document is left unchanged. The path must address an
// existing location: intermediate keys must exist and indices must be in
// range. Setting a new key is allowed only in the singleton-assets map
// and at the final segment of the path.
func Set(doc *Document, path Path, value any) (*Document, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("path: empty")
	}
	tree, err := toTree(doc)
	if err != nil {
		return nil, err
	}

	parent := any(tree)
	for _, seg := range path[:len(path)-1] {
		parent, err = step(parent, seg, path)
		if err != nil {
			return nil, err
		}
	}

	last := path[len(path)-1]
	switch node := parent.(type) {
	case map[string]any:
		if last.IsIndex {
			return nil, fmt.Errorf("path %s: index into object", path)
		}
		node[last.Key] = value
	case []any:
		if !last.IsIndex {
			return nil, fmt.Errorf("path %s: key into array", path)
		}
		if last.Index < 0 || last.Index >= len(node) {
			return nil, fmt.Errorf("path %s: index %d out of range (len %d)", path, last.Index, len(node))
		}
		node[last.Index] = value
	default:
		return nil, fmt.Errorf("path %s: cannot set inside %T", path, parent)
	}

	return fromTree(tree)
}

// step descends one segment into a generic JSON node.
func step(node any, seg Segment, full Path) (any, error) {
	switch n := node.(type) {
	case map[string]any:
		if seg.IsIndex {
			return nil, fmt.Errorf("path %s: index into object", full)
		}
		child, ok := n[seg.Key]
		if !ok {
			return nil, fmt.Errorf("path %s: key %q not found", full, seg.Key)
		}
		return child, nil
	case []any:
		if !seg.IsIndex {
			return nil, fmt.Errorf("path %s: key %q into array", full, seg.Key)
		}
		if seg.Index < 0 || seg.Index >= len(n) {
			return nil, fmt.Errorf("path %s: index %d out of range (len %d)", full, seg.Index, len(n))
		}
		return n[seg.Index], nil
	default:
		return nil, fmt.Errorf("path %s: cannot descend into %T", full, node)
	}
}

// toTree converts the typed document into a generic JSON tree.
func toTree(doc *Document) (map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("path: marshal document: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("path: rebuild tree: %w", err)
	}
	return tree, nil
}

// fromTree converts a generic JSON tree back into a typed document. Values
// that do not fit the document shape surface here as decode errors, which
// keeps malformed edits out of the working copy.
func fromTree(tree map[string]any) (*Document, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("path: marshal tree: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("path: value does not fit document shape: %w", err)
	}
	return &doc, nil
}
