package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Request is the envelope every POST body is wrapped in.
type Request struct {
	Data   interface{} `json:"data,omitempty"`
	Method string      `json:"method,omitempty"`
}

var (
	ErrEmptyBody = errors.New("request body is empty")
	ErrNoData    = errors.New("data field is empty")
)

const maxBodyBytes = 1 << 20

// Decode decodes request body into Request struct
func Decode(r *http.Request) (*Request, error) {
	var req Request
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyBody
		}
		return nil, err
	}
	return &req, nil
}
