// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// ops.go holds the structural list operations that cannot be expressed as
// a Set: removing an item from a collection and extracting the media
// references an item owns. Item removal is guarded at the handler level by
// the stored-media contract, so MediaRefs lives next to Remove.
package content

import (
	"fmt"
)

// Remove deletes the element addressed by path and returns a new, fully
// independent document. The final segment must be an index into an array
// or a key in the singleton-assets map.
func Remove(doc *Document, path Path) (*Document, error) {
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
		if _, ok := node[last.Key]; !ok {
			return nil, fmt.Errorf("path %s: key %q not found", path, last.Key)
		}
		delete(node, last.Key)
	case []any:
		if !last.IsIndex {
			return nil, fmt.Errorf("path %s: key into array", path)
		}
		if last.Index < 0 || last.Index >= len(node) {
			return nil, fmt.Errorf("path %s: index %d out of range (len %d)", path, last.Index, len(node))
		}
		spliced := append(node[:last.Index:last.Index], node[last.Index+1:]...)

		// The parent array itself sits inside its own parent; rewrite it.
		if len(path) == 1 {
			return nil, fmt.Errorf("path %s: cannot remove a top-level collection", path)
		}
		grand := any(tree)
		for _, seg := range path[:len(path)-2] {
			grand, err = step(grand, seg, path)
			if err != nil {
				return nil, err
			}
		}
		hook := path[len(path)-2]
		switch g := grand.(type) {
		case map[string]any:
			g[hook.Key] = spliced
		case []any:
			g[hook.Index] = spliced
		default:
			return nil, fmt.Errorf("path %s: cannot rewrite inside %T", path, grand)
		}
	default:
		return nil, fmt.Errorf("path %s: cannot remove inside %T", path, parent)
	}

	return fromTree(tree)
}

// MediaRefs returns the media reference strings owned by the element at
// path. Each collection keeps its references in known fields; unknown
// collections own no references. Callers filter the result with IsStored
// before touching object storage.
func MediaRefs(doc *Document, path Path) ([]string, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("path: empty")
	}
	value, err := Get(doc, path)
	if err != nil {
		return nil, err
	}

	root := path[0]
	if root.IsIndex {
		return nil, fmt.Errorf("path %s: top-level segment must be a key", path)
	}

	var refs []string
	add := func(v any) {
		if s, ok := v.(string); ok && s != "" {
			refs = append(refs, s)
		}
	}
	field := func(key string) {
		if m, ok := value.(map[string]any); ok {
			add(m[key])
		}
	}

	switch root.Key {
	case "photosData", "trustedByLogos":
		field("src")
	case "featuredWorkDataUGC", "powerCardsData":
		field("videoSrc")
	case "blogPosts":
		field("featuredImage")
	case "siteAssets":
		field("path")
	case "caseStudiesData":
		field("thumbnailUrl")
		if m, ok := value.(map[string]any); ok {
			if items, ok := m["items"].([]any); ok {
				for _, it := range items {
					if im, ok := it.(map[string]any); ok {
						add(im["thumbnailUrl"])
					}
				}
			}
		}
	case "siteSingletonAssets":
		// The map value is the reference itself.
		add(value)
	}
	return refs, nil
}
