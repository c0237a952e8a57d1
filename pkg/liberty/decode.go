package liberty

import (
	"bytes"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/pdkit/libmerge/pkg/errors"
)

// ReadFragment loads and decodes one characterization fragment from disk.
func ReadFragment(path string) (*Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMissingFile, err, "reading fragment %s", path)
	}

	g, err := DecodeFragment(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFragment, err, "decoding fragment %s", path)
	}
	return g, nil
}

// DecodeFragment decodes a JSON fragment into a value tree. The top level
// must be an object. Numbers keep the integer/float distinction of their
// source literal: a literal with a fraction or exponent becomes a Float,
// anything else an Int. Booleans and nulls are rejected since the Liberty
// format has no rendering for them.
func DecodeFragment(data []byte) (*Group, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFragment, err, "fragment is not a JSON object")
	}

	return decodeObject(raw)
}

func decodeObject(raw map[string]any) (*Group, error) {
	g := NewGroup()
	for k, rv := range raw {
		v, err := decodeValue(rv)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "key %q", k)
		}
		if err := g.Set(k, v); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func decodeValue(raw any) (Value, error) {
	switch v := raw.(type) {
	case string:
		return String(v), nil
	case json.Number:
		return decodeNumber(v), nil
	case []any:
		list := make(List, 0, len(v))
		for _, el := range v {
			dv, err := decodeValue(el)
			if err != nil {
				return nil, err
			}
			list = append(list, dv)
		}
		return list, nil
	case map[string]any:
		return decodeObject(v)
	case bool:
		return nil, errors.New(errors.ErrCodeInvalidFragment, "boolean values have no Liberty rendering")
	case nil:
		return nil, errors.New(errors.ErrCodeInvalidFragment, "null values have no Liberty rendering")
	}
	return nil, errors.New(errors.ErrCodeInternal, "unexpected JSON value of type %T", raw)
}

// decodeNumber keeps the source literal's numeric kind: a '.' or exponent
// marks a float. Integer literals too large for int64 fall back to float.
func decodeNumber(n json.Number) Value {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i)
		}
	}
	// A range error on a huge exponent still yields the IEEE infinity,
	// which the serializer rejects when the value is rendered.
	f, _ := strconv.ParseFloat(s, 64)
	return Float(f)
}
