package commsutil

import "encoding/json"

// EncodePayload serializes a registry envelope or event to JSON bytes.
func EncodePayload(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodePayload deserializes JSON bytes into the given envelope or event.
func DecodePayload(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
