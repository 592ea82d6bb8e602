package cache

import (
	"encoding/json"
)

// JSONSerializer stores values as JSON so entries stay readable from redis-cli
type JSONSerializer struct{}

func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

func (s *JSONSerializer) Serialize(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, ErrSerialize.Wrap(err)
	}
	return data, nil
}

func (s *JSONSerializer) Deserialize(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return ErrDeserialize.Wrap(err)
	}
	return nil
}

func (s *JSONSerializer) Name() string {
	return "json"
}
