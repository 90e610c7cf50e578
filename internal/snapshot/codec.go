package snapshot

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/objmodel/internal/evaluator"
	"github.com/funvibe/objmodel/internal/typesystem"
)

// Stored values are JSON with the guest kind kept explicit. Null, booleans,
// ints and UTF-8 strings are stored as themselves; everything else is a
// single-key object:
//
//	{"f": "2"}                   float, strconv text (also NaN and ±Inf)
//	{"b": "/w=="}                string with invalid UTF-8, base64
//	{"a": [[key, value], ...]}   array, keys encoded like strings
const (
	tagFloat = "f"
	tagBytes = "b"
	tagArray = "a"
)

func encodeValue(v evaluator.Value) ([]byte, error) {
	tree, err := encodeTree(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

func encodeTree(v evaluator.Value) (any, error) {
	switch x := v.(type) {
	case nil, bool, int:
		return x, nil
	case float64:
		return map[string]any{tagFloat: strconv.FormatFloat(x, 'g', -1, 64)}, nil
	case string:
		return encodeString(x), nil
	case *evaluator.Array:
		pairs := make([]any, 0, x.Len())
		for k, item := range x.All() {
			tree, err := encodeTree(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			pairs = append(pairs, []any{encodeString(k), tree})
		}
		return map[string]any{tagArray: pairs}, nil
	}
	return nil, fmt.Errorf("%w: can not store a value of type %T", typesystem.ErrUnsupportedType, v)
}

func encodeString(s string) any {
	if utf8.ValidString(s) {
		return s
	}
	return map[string]any{tagBytes: base64.StdEncoding.EncodeToString([]byte(s))}
}

func decodeValue(data []byte) (evaluator.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after stored value")
	}
	return decodeTree(tree)
}

func decodeTree(tree any) (evaluator.Value, error) {
	switch x := tree.(type) {
	case nil, bool, string:
		return x, nil
	case json.Number:
		i, err := strconv.ParseInt(x.String(), 10, strconv.IntSize)
		if err != nil {
			return nil, fmt.Errorf("stored int %s: %w", x, err)
		}
		return int(i), nil
	case map[string]any:
		if len(x) != 1 {
			break
		}
		switch {
		case x[tagFloat] != nil:
			text, ok := x[tagFloat].(string)
			if !ok {
				break
			}
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("stored float %q: %w", text, err)
			}
			return f, nil
		case x[tagBytes] != nil:
			str, err := decodeString(x)
			if err != nil {
				return nil, err
			}
			return str, nil
		case x[tagArray] != nil:
			pairs, ok := x[tagArray].([]any)
			if !ok {
				break
			}
			arr := evaluator.NewArray()
			for _, p := range pairs {
				pair, ok := p.([]any)
				if !ok || len(pair) != 2 {
					return nil, fmt.Errorf("malformed array entry %v", p)
				}
				key, err := decodeString(pair[0])
				if err != nil {
					return nil, err
				}
				v, err := decodeTree(pair[1])
				if err != nil {
					return nil, fmt.Errorf("key %q: %w", key, err)
				}
				arr.Set(key, v)
			}
			return arr, nil
		}
	}
	return nil, fmt.Errorf("malformed stored value %v", tree)
}

func decodeString(tree any) (string, error) {
	switch x := tree.(type) {
	case string:
		return x, nil
	case map[string]any:
		if enc, ok := x[tagBytes].(string); ok && len(x) == 1 {
			raw, err := base64.StdEncoding.DecodeString(enc)
			if err != nil {
				return "", fmt.Errorf("stored bytes: %w", err)
			}
			return string(raw), nil
		}
	}
	return "", fmt.Errorf("malformed stored string %v", tree)
}

// fieldKey is a decoded array-cast key.
type fieldKey struct {
	access   typesystem.Access
	declarer string // private keys only
	name     string
}

// parseKey reverses the array-cast key shaping:
// " * name" is protected, " Class name" private, anything else public.
func parseKey(key string) fieldKey {
	if rest, ok := strings.CutPrefix(key, " * "); ok {
		return fieldKey{access: typesystem.AccessProtected, name: rest}
	}
	if rest, ok := strings.CutPrefix(key, " "); ok {
		if class, name, ok := strings.Cut(rest, " "); ok {
			return fieldKey{access: typesystem.AccessPrivate, declarer: class, name: name}
		}
	}
	return fieldKey{access: typesystem.AccessPublic, name: key}
}

// locate finds the declared instance field k refers to in the hierarchy of t.
func (k fieldKey) locate(t *typesystem.TypeDescriptor) (*typesystem.FieldDescriptor, bool) {
	for level := range typesystem.Levels(t) {
		if k.access == typesystem.AccessPrivate && level.Name() != k.declarer {
			continue
		}
		f, ok := level.Field(k.name)
		if ok && f.IsInstanceField() && f.Access == k.access {
			return f, true
		}
	}
	return nil, false
}
