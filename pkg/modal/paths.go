package modal

import (
	"fmt"
	"strings"
)

// getPath reads a dotted path such as "seo.title" from nested maps.
func getPath(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	if value, ok := root[path]; ok {
		return value, true
	}
	current := any(root)
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := node[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// setPath writes value at a dotted path, creating intermediate maps.
func setPath(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("modal: root map is nil")
	}
	segments := strings.Split(path, ".")
	current := root
	for i, segment := range segments {
		if segment == "" {
			return fmt.Errorf("modal: empty segment in path %q", path)
		}
		if i == len(segments)-1 {
			current[segment] = value
			return nil
		}
		child, ok := current[segment].(map[string]any)
		if !ok {
			if existing, present := current[segment]; present && existing != nil {
				return fmt.Errorf("modal: path %q crosses non-object value at %q", path, segment)
			}
			child = make(map[string]any)
			current[segment] = child
		}
		current = child
	}
	return nil
}
