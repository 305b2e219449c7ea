package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"parcelsync/entity"
	"parcelsync/internal/config"
	"parcelsync/internal/lib/sl"
	"strconv"
	"time"
)

const wooApiPath = "wp-json/wc/v3"

// WooService reads orders from a WooCommerce shop and appends order notes.
type WooService struct {
	baseUrl        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	log            *slog.Logger
}

func NewWooService(conf *config.Config, log *slog.Logger) (*WooService, error) {
	if conf.Shop.Url == "" {
		return nil, nil
	}
	if conf.Shop.ConsumerKey == "" || conf.Shop.ConsumerSecret == "" {
		return nil, fmt.Errorf("shop consumer_key and consumer_secret are required")
	}

	service := &WooService{
		baseUrl:        conf.Shop.Url,
		consumerKey:    conf.Shop.ConsumerKey,
		consumerSecret: conf.Shop.ConsumerSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: log.With(sl.Module("woo")),
	}

	return service, nil
}

// GetOrder returns entity.ErrOrderNotFound when the shop does not know the order.
func (w *WooService) GetOrder(ctx context.Context, orderId int64) (*entity.ShopOrder, error) {
	fullURL, err := buildURL(w.baseUrl, wooApiPath, "orders", strconv.FormatInt(orderId, 10))
	if err != nil {
		return nil, err
	}

	bodyBytes, err := w.do(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}

	var order entity.ShopOrder
	if err = json.Unmarshal(bodyBytes, &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

// AddOrderNote appends a private note to the order.
func (w *WooService) AddOrderNote(ctx context.Context, orderId int64, note string) error {
	fullURL, err := buildURL(w.baseUrl, wooApiPath, "orders", strconv.FormatInt(orderId, 10), "notes")
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]interface{}{
		"note":          note,
		"customer_note": false,
	})
	if err != nil {
		return fmt.Errorf("marshal note: %w", err)
	}

	_, err = w.do(ctx, http.MethodPost, fullURL, body)
	return err
}

func (w *WooService) do(ctx context.Context, method, fullURL string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(w.consumerKey, w.consumerSecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := w.log.With(
		slog.String("url", fullURL),
		slog.String("method", method),
	)
	t := time.Now()
	defer func() {
		log = log.With(slog.Duration("duration", time.Since(t)))
		if err != nil {
			log.With(sl.Err(err)).Error("shop request")
		} else {
			log.Debug("shop request")
		}
	}()

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		err = entity.ErrOrderNotFound
		return nil, err
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		err = &StatusError{Status: resp.StatusCode, Body: string(bodyBytes)}
		return nil, err
	}

	return bodyBytes, nil
}
