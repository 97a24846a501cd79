package builder

import (
	"bytes"
	"encoding/json"
)

// object is a JSON object that keeps insertion order, so that field metadata
// and row values come out in column order
type object struct {
	keys   []string
	values map[string]interface{}
}

func newObject() *object {
	return &object{values: make(map[string]interface{})}
}

func (o *object) set(key string, value interface{}) *object {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

func (o *object) get(key string) (interface{}, bool) {
	v, ok := o.values[key]
	return v, ok
}

// MarshalJSON implements json.Marshaler
func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
