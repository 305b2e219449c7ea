package entity

import (
	"log/slog"
	"net/http"
	"parcelsync/internal/lib/validate"
	"time"
)

type ParcelStatus string

const (
	ParcelCreated       ParcelStatus = "created"
	ParcelFailed        ParcelStatus = "failed"
	ParcelDisabled      ParcelStatus = "disabled"
	ParcelExists        ParcelStatus = "exists"
	ParcelNotConfigured ParcelStatus = "not_configured"
	// booked remotely but the local record could not be written
	ParcelUnrecorded ParcelStatus = "unrecorded"
)

// ParcelRecord is the local trace of a parcel booked for an order.
type ParcelRecord struct {
	OrderId     int64     `json:"order_id"`
	Reference   string    `json:"parcel_reference"`
	Barcode     string    `json:"barcode"`
	PackageCode string    `json:"pck_code"`
	CreatedAt   time.Time `json:"created_at"`
}

// ParcelRequest is the body of the Massar "add parcel" call.
type ParcelRequest struct {
	Login           string `json:"login" validate:"required"`
	Password        string `json:"password" validate:"required"`
	Reference       string `json:"reference" validate:"required"`
	Designation     string `json:"designation"`
	Amount          string `json:"montant_reception"`
	Modality        string `json:"modalite"`
	ExchangeContent string `json:"contenuEchange"`
	ZipCode         string `json:"code"`
	City            string `json:"ville"`
	Phone           string `json:"tel"`
	Phone2          string `json:"phone_number_2"`
	Address         string `json:"adresse"`
	Name            string `json:"nom"`
	PieceCount      int    `json:"nombre_piece"`
	PickupId        string `json:"pickup_id"`
	OpenParcel      int    `json:"open_parcel"`
	Fragile         int    `json:"fragile"`
}

// LogValue keeps credentials out of the logs.
func (r ParcelRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("reference", r.Reference),
		slog.String("login", r.Login),
		slog.String("designation", r.Designation),
		slog.String("amount", r.Amount),
		slog.String("code", r.ZipCode),
		slog.String("city", r.City),
	)
}

type ParcelResponse struct {
	Barcode     string `json:"code_barre"`
	PackageCode string `json:"pck_code"`
}

// ParcelResult is the outcome of one reconciliation.
type ParcelResult struct {
	OrderId     int64        `json:"order_id"`
	Status      ParcelStatus `json:"status"`
	Reference   string       `json:"reference,omitempty"`
	Barcode     string       `json:"barcode,omitempty"`
	PackageCode string       `json:"pck_code,omitempty"`
}

func (r *ParcelResult) Created() bool {
	return r.Status == ParcelCreated
}

func (r *ParcelResult) Skipped() bool {
	return r.Status == ParcelDisabled || r.Status == ParcelExists || r.Status == ParcelNotConfigured
}

// ParcelAttempt is one outbound booking attempt, kept for audit.
type ParcelAttempt struct {
	Id           string       `json:"id" bson:"_id"`
	OrderId      int64        `json:"order_id" bson:"order_id"`
	Reference    string       `json:"reference" bson:"reference"`
	Status       ParcelStatus `json:"status" bson:"status"`
	Barcode      string       `json:"barcode,omitempty" bson:"barcode,omitempty"`
	PackageCode  string       `json:"pck_code,omitempty" bson:"pck_code,omitempty"`
	Duration     float64      `json:"duration" bson:"duration"`
	CreationDate time.Time    `json:"creation_date" bson:"creation_date"`
}

type ConnectionTestRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *ConnectionTestRequest) Bind(_ *http.Request) error {
	return validate.Struct(c)
}

type ConnectionTest struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Region struct {
	Name    string `json:"name"`
	ZipCode string `json:"zip_code"`
}
