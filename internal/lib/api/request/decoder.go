package request

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DecodeArrayData decodes request data into a typed array.
// A single object is wrapped into a one-item array.
func DecodeArrayData[T any](req *Request, target *[]T) error {
	if req.Data == nil {
		*target = []T{}
		return nil
	}

	dataBytes, err := json.Marshal(req.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	err = json.Unmarshal(dataBytes, target)
	if err == nil {
		return nil
	}

	var singleItem T
	err = json.Unmarshal(dataBytes, &singleItem)
	if err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	*target = []T{singleItem}
	return nil
}

// Binder is an interface for entities that can validate themselves
type Binder interface {
	Bind(*http.Request) error
}

// DecodeAndValidateArrayData decodes request data into a typed array and validates each item
// Works with types that have pointer receivers for Bind() method
func DecodeAndValidateArrayData[T any](req *Request, httpReq *http.Request, target *[]T) error {
	err := DecodeArrayData(req, target)
	if err != nil {
		return err
	}

	for i := range *target {
		item := &(*target)[i]

		if binder, ok := any(item).(Binder); ok {
			if err := binder.Bind(httpReq); err != nil {
				return fmt.Errorf("validation failed for item at index %d: %w", i, err)
			}
		}
	}

	return nil
}

// DecodeAndValidateData decodes exactly one object from the envelope and validates it.
func DecodeAndValidateData[T any](req *Request, httpReq *http.Request, target *T) error {
	var items []T
	if err := DecodeAndValidateArrayData(req, httpReq, &items); err != nil {
		return err
	}
	switch len(items) {
	case 0:
		return ErrNoData
	case 1:
		*target = items[0]
		return nil
	default:
		return fmt.Errorf("expected one item, got %d", len(items))
	}
}
