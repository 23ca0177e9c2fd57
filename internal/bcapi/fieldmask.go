package bcapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Object is an untyped JSON object. Nested schemas the client does not model
// (conversational settings, survey config, entry points) travel as Objects.
type Object = map[string]any

// ErrMaskPathNotSet is returned by FieldMask.Validate when a mask path does
// not name a populated field of the partial resource.
var ErrMaskPathNotSet = errors.New("bcapi: field mask path not set in partial resource")

// ErrInvalidFieldMask is returned for syntactically broken masks.
var ErrInvalidFieldMask = errors.New("bcapi: invalid field mask")

// FieldMask lists the dotted paths of a partial resource that an update
// should apply. Fields not named stay untouched on the server.
type FieldMask []string

// NewFieldMask builds a mask from individual paths.
func NewFieldMask(paths ...string) FieldMask {
	return FieldMask(paths)
}

// ParseFieldMask parses the comma-separated wire form, e.g.
// "displayName,businessMessagesAgent.logoUrl".
func ParseFieldMask(s string) (FieldMask, error) {
	var mask FieldMask

	for _, raw := range strings.Split(s, ",") {
		path := strings.TrimSpace(raw)
		if path == "" {
			continue
		}

		for _, seg := range strings.Split(path, ".") {
			if seg == "" {
				return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidFieldMask, path)
			}
		}

		mask = append(mask, path)
	}

	if len(mask) == 0 {
		return nil, fmt.Errorf("%w: no paths", ErrInvalidFieldMask)
	}

	return mask, nil
}

// String returns the wire form sent as the updateMask query parameter.
func (m FieldMask) String() string {
	return strings.Join(m, ",")
}

// Validate checks that every path in the mask names a populated (present and
// non-null) field of partial. The client never calls this on its own; it is
// for strict peers such as test doubles.
func (m FieldMask) Validate(partial any) error {
	obj, err := ToObject(partial)
	if err != nil {
		return err
	}

	var missing []string

	for _, path := range m {
		if _, ok := lookupPath(obj, path); !ok {
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMaskPathNotSet, strings.Join(missing, ", "))
	}

	return nil
}

// ApplyMask merges partial into base following mask and returns the result.
// base and partial are not modified. A masked path that is absent from
// partial clears that field in the result.
func ApplyMask(base, partial Object, mask FieldMask) Object {
	out := deepCopy(base).(Object) //nolint:forcetypeassert // deepCopy preserves the map type
	if out == nil {
		out = Object{}
	}

	for _, path := range mask {
		v, ok := lookupPath(partial, path)
		if !ok {
			deletePath(out, path)
			continue
		}

		setPath(out, path, deepCopy(v))
	}

	return out
}

// ToObject converts a typed resource (or an Object) into its JSON object form.
func ToObject(v any) (Object, error) {
	if obj, ok := v.(Object); ok {
		return obj, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("bcapi: encoding resource: %w", err)
	}

	var obj Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("bcapi: resource is not a JSON object: %w", err)
	}

	return obj, nil
}

func lookupPath(obj Object, path string) (any, bool) {
	segs := strings.Split(path, ".")
	var cur any = obj

	for _, seg := range segs {
		m, ok := cur.(Object)
		if !ok {
			return nil, false
		}

		cur, ok = m[seg]
		if !ok || cur == nil {
			return nil, false
		}
	}

	return cur, true
}

func setPath(obj Object, path string, v any) {
	segs := strings.Split(path, ".")
	cur := obj

	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(Object)
		if !ok {
			next = Object{}
			cur[seg] = next
		}

		cur = next
	}

	cur[segs[len(segs)-1]] = v
}

func deletePath(obj Object, path string) {
	segs := strings.Split(path, ".")
	cur := obj

	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(Object)
		if !ok {
			return
		}

		cur = next
	}

	delete(cur, segs[len(segs)-1])
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case Object:
		if t == nil {
			return Object(nil)
		}

		out := make(Object, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}

		return out
	default:
		return v
	}
}
