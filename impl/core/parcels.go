package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"parcelsync/entity"
	"parcelsync/internal/database"
	"parcelsync/internal/lib/region"
	"parcelsync/internal/lib/sl"
	"strconv"
	"strings"
	"time"
)

const (
	referencePrefix = "WC-"
	homeCountry     = "TN"

	noteCreated = "Massar parcel created successfully. Barcode: %s, PCK Code: %s, Reference: %s"
	noteFailed  = "Failed to create Massar parcel. Please check API configuration."
)

// CreateParcelForOrder books a parcel for the order unless a guard stops it.
// Failures end in a log line and an order note; nothing is returned as error.
func (c *Core) CreateParcelForOrder(ctx context.Context, order Order) *entity.ParcelResult {
	orderId := order.ID()
	result := &entity.ParcelResult{OrderId: orderId}
	log := c.log.With(slog.Int64("order_id", orderId))

	if !c.settings.Enabled {
		log.Debug("parcel creation disabled")
		result.Status = entity.ParcelDisabled
		return result
	}

	exists, err := c.repo.ParcelExists(ctx, orderId)
	if err != nil {
		log.With(sl.Err(err)).Error("check parcel exists")
		result.Status = entity.ParcelFailed
		return result
	}
	if exists {
		log.Debug("parcel already exists")
		result.Status = entity.ParcelExists
		return result
	}

	if !c.settings.configured() {
		log.Error("massar api credentials not configured")
		result.Status = entity.ParcelNotConfigured
		return result
	}

	parcel := c.buildParcelRequest(order)
	result.Reference = parcel.Reference
	log = log.With(slog.String("reference", parcel.Reference))

	t := time.Now()
	response, err := c.delivery.CreateParcel(ctx, parcel)
	duration := time.Since(t)

	if err != nil {
		log.With(sl.Err(err)).Error("create parcel")
		result.Status = entity.ParcelFailed
		c.saveAttempt(result, duration)
		c.addNote(ctx, order, noteFailed)
		return result
	}

	result.Status = entity.ParcelCreated
	result.Barcode = response.Barcode
	result.PackageCode = response.PackageCode

	err = c.repo.SaveParcel(ctx, orderId, parcel.Reference, response.Barcode, response.PackageCode)
	if err != nil {
		// the remote parcel exists either way, so the note still reports it
		if errors.Is(err, database.ErrParcelExists) {
			log.With(
				slog.String("barcode", response.Barcode),
				sl.Err(err),
			).Error("duplicate parcel booked for order")
		} else {
			result.Status = entity.ParcelUnrecorded
			log.With(
				slog.String("barcode", response.Barcode),
				slog.String("pck_code", response.PackageCode),
				sl.Err(err),
			).Error("parcel booked but not recorded; a retry will book a second parcel")
		}
	} else {
		log.With(
			slog.String("barcode", response.Barcode),
			slog.String("pck_code", response.PackageCode),
		).Info("parcel created")
	}

	c.saveAttempt(result, duration)
	c.addNote(ctx, order, fmt.Sprintf(noteCreated, response.Barcode, response.PackageCode, parcel.Reference))
	return result
}

func (c *Core) buildParcelRequest(order Order) *entity.ParcelRequest {
	billing := order.Billing()

	return &entity.ParcelRequest{
		Login:           c.settings.Login,
		Password:        c.settings.Password,
		Reference:       referencePrefix + strconv.FormatInt(order.ID(), 10),
		Designation:     itemsDescription(order.Items()),
		Amount:          order.Total().StringFixed(2),
		Modality:        "0",
		ExchangeContent: "",
		ZipCode:         c.zipCode(order.ID(), &billing),
		City:            billing.City,
		Phone:           billing.Phone,
		Phone2:          "",
		Address:         billing.Address1,
		Name:            billing.FullName(),
		PieceCount:      1,
		PickupId:        "1",
		OpenParcel:      0,
		Fragile:         0,
	}
}

// zipCode resolves the billing region, logging the fallback and foreign addresses.
func (c *Core) zipCode(orderId int64, billing *entity.BillingAddress) string {
	if country := billing.CountryCode(); country != "" && country != homeCountry {
		c.log.Warn("billing address outside Tunisia",
			slog.Int64("order_id", orderId),
			slog.String("country", country))
	}

	if _, ok := region.Lookup(billing.State); !ok {
		c.log.Warn("unknown billing region, default zip code used",
			slog.Int64("order_id", orderId),
			slog.String("region", billing.State),
			slog.String("zip_code", region.DefaultZipCode))
	}
	return region.ZipCode(billing.State)
}

func itemsDescription(items []entity.OrderItem) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, fmt.Sprintf("%s (x%d)", item.Name, item.Quantity))
	}
	return strings.Join(names, ", ")
}

func (c *Core) addNote(ctx context.Context, order Order, note string) {
	if err := order.AddNote(ctx, note); err != nil {
		c.log.With(
			slog.Int64("order_id", order.ID()),
			slog.String("note", note),
			sl.Err(err),
		).Warn("add order note")
	}
}

func (c *Core) saveAttempt(result *entity.ParcelResult, duration time.Duration) {
	if c.attempts == nil {
		return
	}
	attempt := &entity.ParcelAttempt{
		OrderId:      result.OrderId,
		Reference:    result.Reference,
		Status:       result.Status,
		Barcode:      result.Barcode,
		PackageCode:  result.PackageCode,
		Duration:     duration.Seconds(),
		CreationDate: time.Now(),
	}
	if err := c.attempts.SaveAttempt(attempt); err != nil {
		c.log.With(
			slog.Int64("order_id", result.OrderId),
			sl.Err(err),
		).Warn("save parcel attempt")
	}
}
