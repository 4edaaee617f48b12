package server

import (
	"encoding/json"
	"net/http"
)

// decodeJSON decodes a request body strictly: unknown fields are rejected,
// since the API accepts no fields beyond the documented ones.
func decodeJSON[T any](r *http.Request) (*T, error) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
