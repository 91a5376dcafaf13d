package persistence

import (
	"encoding/json"

	"github.com/petrijr/socialflow/pkg/api"
)

// EncodeRecord serializes a record as JSON. Encoded field names are the
// same names Query conditions use, so SQL backends can search inside the
// payload.
func EncodeRecord(rec api.Record) ([]byte, error) {
	return json.Marshal(rec)
}

// DecodeRecord deserializes data into dst.
func DecodeRecord(data []byte, dst api.Record) error {
	return json.Unmarshal(data, dst)
}

// decodeAs decodes data into a fresh record of kind.
func decodeAs(kind api.Kind, data []byte) (api.Record, error) {
	rec, ok := api.NewRecord(kind)
	if !ok {
		return nil, &unknownKindError{kind: kind}
	}
	if err := DecodeRecord(data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

type unknownKindError struct {
	kind api.Kind
}

func (e *unknownKindError) Error() string {
	return "unknown record kind " + string(e.kind)
}
