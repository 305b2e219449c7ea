package request

import (
	"errors"
	"net/http"
	"testing"
)

type testEvent struct {
	OrderId   int64  `json:"order_id"`
	NewStatus string `json:"new_status"`
}

func (e *testEvent) Bind(_ *http.Request) error {
	if e.OrderId <= 0 {
		return errors.New("order_id is required")
	}
	return nil
}

func TestDecodeArrayData(t *testing.T) {
	tests := []struct {
		name    string
		data    interface{}
		want    []testEvent
		wantErr bool
	}{
		{
			name: "array of events",
			data: []interface{}{
				map[string]interface{}{"order_id": 1, "new_status": "pending"},
				map[string]interface{}{"order_id": 2, "new_status": "processing"},
			},
			want: []testEvent{{OrderId: 1, NewStatus: "pending"}, {OrderId: 2, NewStatus: "processing"}},
		},
		{
			name: "single object is wrapped",
			data: map[string]interface{}{"order_id": 42, "new_status": "pending"},
			want: []testEvent{{OrderId: 42, NewStatus: "pending"}},
		},
		{
			name: "nil data returns empty array",
			data: nil,
			want: []testEvent{},
		},
		{
			name:    "scalar data",
			data:    "pending",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Data: tt.data}
			var got []testEvent
			err := DecodeArrayData(req, &got)

			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeArrayData() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("DecodeArrayData() length = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("DecodeArrayData() got[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDecodeAndValidateData(t *testing.T) {
	tests := []struct {
		name    string
		data    interface{}
		want    testEvent
		wantErr bool
	}{
		{
			name: "valid event",
			data: map[string]interface{}{"order_id": 42, "new_status": "pending"},
			want: testEvent{OrderId: 42, NewStatus: "pending"},
		},
		{
			name:    "fails validation",
			data:    map[string]interface{}{"new_status": "pending"},
			wantErr: true,
		},
		{
			name:    "no data",
			data:    nil,
			wantErr: true,
		},
		{
			name: "more than one",
			data: []interface{}{
				map[string]interface{}{"order_id": 1},
				map[string]interface{}{"order_id": 2},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got testEvent
			err := DecodeAndValidateData(&Request{Data: tt.data}, nil, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeAndValidateData() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("DecodeAndValidateData() = %v, want %v", got, tt.want)
			}
		})
	}
}
