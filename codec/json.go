package codec

import (
	"bytes"
	"encoding/json"
)

// JSON is the default payload codec: compact JSON without HTML escaping,
// no envelope and no trailing newline.
//
// UseNumber decodes numbers inside interface values (e.g. docache.Doc) as
// json.Number instead of float64, keeping integer fidelity.
type JSON[V any] struct {
	UseNumber bool
}

var _ Codec[struct{}] = JSON[struct{}]{}

func (JSON[V]) Encode(v V) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func (c JSON[V]) Decode(b []byte) (V, error) {
	var v V
	if !c.UseNumber {
		err := json.Unmarshal(b, &v)
		return v, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	if dec.More() {
		var zero V
		return zero, &json.SyntaxError{Offset: dec.InputOffset()}
	}
	return v, nil
}
