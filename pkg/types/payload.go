package types

import (
	"bytes"
	"encoding/json"
)

// CanonicalBytes returns the canonical serialization of a payload value.
//
// The payload is encoded as JSON through a pointer to v, the way it is encoded
// as the data field of an exported block: marshalers declared on *T are used
// for a concrete T, but not for values held in an interface. The result is
// decoded into a generic tree with numbers kept as literals and encoded again,
// so the bytes depend only on the payload's structure: a struct and the map
// decoded from its JSON serialize identically, with object keys sorted. HTML
// escaping is disabled and no trailing newline is written.
func CanonicalBytes[T any](v T) ([]byte, error) {
	raw, err := json.Marshal(&v)
	if err != nil {
		return nil, &SerializationError{Cause: err}
	}

	var tree any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&tree); err != nil {
		return nil, &SerializationError{Cause: err}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tree); err != nil {
		return nil, &SerializationError{Cause: err}
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
