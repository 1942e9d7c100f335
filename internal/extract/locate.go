package extract

import "reflect"

// markerFields is the closed set of fields whose direct presence makes an
// object a media descriptor. Extend this table when the upstream introduces
// a new payload shape; the traversal below never needs to change.
var markerFields = []string{
	"video_versions",
	"video_url",
	"display_url",
	"image_versions2",
}

// maxLocateDepth bounds the descriptor search so deeply nested or
// adversarial trees cannot exhaust the stack.
const maxLocateDepth = 25

// Locate walks a parsed JSON value depth-first over object properties and
// returns the first object that directly carries any marker field. Arrays
// are not traversed generically; callers drill known list paths (items[0],
// data[0], carousel edges) themselves. Enumeration order of map keys is not
// stable in Go, so which qualifying object wins between siblings is
// implementation-defined. The contract is "a match", not "the best match".
func Locate(root any) (map[string]any, bool) {
	return locate(root, maxLocateDepth, map[uintptr]bool{})
}

func locate(v any, depth int, seen map[uintptr]bool) (map[string]any, bool) {
	if depth <= 0 {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	ptr := reflect.ValueOf(obj).Pointer()
	if seen[ptr] {
		return nil, false
	}
	seen[ptr] = true
	if isDescriptor(obj) {
		return obj, true
	}
	for _, child := range obj {
		if d, ok := locate(child, depth-1, seen); ok {
			return d, true
		}
	}
	return nil, false
}

func isDescriptor(obj map[string]any) bool {
	for _, f := range markerFields {
		if v, ok := obj[f]; ok && v != nil {
			return true
		}
	}
	return false
}
