package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"parcelsync/entity"
	"parcelsync/internal/config"
	"parcelsync/internal/lib/sl"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	maxRedirects     = 5
	maxResponseBytes = 1 << 20

	testConnectionOk     = "API connection successful. Test parcel created with barcode: %s"
	testConnectionFailed = "API connection failed. Please check your credentials and try again."
)

// ErrParcelNotCreated is the only error callers of CreateParcel see; the cause is logged.
var ErrParcelNotCreated = entity.ErrParcelNotCreated

var (
	ErrTransport         = errors.New("transport error")
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError is a non-200 answer of the delivery API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Body)
}

type MassarService struct {
	apiUrl     string
	httpClient *http.Client
	limiter    *Limiter
	log        *slog.Logger
}

func NewMassarService(conf *config.Config, log *slog.Logger) *MassarService {
	timeout := conf.Massar.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &MassarService{
		apiUrl: conf.Massar.ApiUrl,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		limiter: NewLimiter(conf.Massar.RateLimit, conf.Massar.Burst),
		log:     log.With(sl.Module("massar")),
	}
}

// SetLimiter replaces the outbound rate limiter.
func (s *MassarService) SetLimiter(l *Limiter) {
	if l != nil {
		s.limiter = l
	}
}

// CreateParcel books a parcel. Any failure is logged with its cause and
// reported as ErrParcelNotCreated.
func (s *MassarService) CreateParcel(ctx context.Context, parcel *entity.ParcelRequest) (*entity.ParcelResponse, error) {
	log := s.log.With(slog.Any("parcel", parcel))
	t := time.Now()

	response, err := s.createParcel(ctx, parcel)

	log = log.With(slog.Duration("duration", time.Since(t)))
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			log = log.With(slog.Int("status", statusErr.Status))
		}
		log.With(sl.Err(err)).Error("create parcel")
		return nil, ErrParcelNotCreated
	}
	log.With(
		slog.String("barcode", response.Barcode),
		slog.String("pck_code", response.PackageCode),
	).Debug("create parcel")
	return response, nil
}

func (s *MassarService) createParcel(ctx context.Context, parcel *entity.ParcelRequest) (*entity.ParcelResponse, error) {
	body, err := json.Marshal(parcel)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	if err = s.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiUrl, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	return parseParcelResponse(bodyBytes)
}

// parseParcelResponse accepts identifiers sent either as JSON strings or numbers.
func parseParcelResponse(body []byte) (*entity.ParcelResponse, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	barcode := rawString(raw["code_barre"])
	packageCode := rawString(raw["pck_code"])
	if barcode == "" || packageCode == "" {
		return nil, fmt.Errorf("%w: missing code_barre or pck_code: %s", ErrMalformedResponse, string(body))
	}

	return &entity.ParcelResponse{
		Barcode:     barcode,
		PackageCode: packageCode,
	}, nil
}

func rawString(value json.RawMessage) string {
	if len(value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(value, &n); err == nil {
		return n.String()
	}
	return ""
}

// TestConnection books a synthetic parcel with the given credentials.
func (s *MassarService) TestConnection(ctx context.Context, login, password string) *entity.ConnectionTest {
	parcel := &entity.ParcelRequest{
		Login:           login,
		Password:        password,
		Reference:       "TEST-" + strconv.FormatInt(time.Now().Unix(), 10),
		Designation:     "Test Product",
		Amount:          "10",
		Modality:        "0",
		ExchangeContent: "",
		ZipCode:         "1000",
		City:            "Tunis",
		Phone:           "12345678",
		Phone2:          "",
		Address:         "Test Address",
		Name:            "Test User",
		PieceCount:      1,
		PickupId:        "1",
		OpenParcel:      0,
		Fragile:         0,
	}

	response, err := s.CreateParcel(ctx, parcel)
	if err != nil {
		return &entity.ConnectionTest{
			Success: false,
			Message: testConnectionFailed,
		}
	}
	return &entity.ConnectionTest{
		Success: true,
		Message: fmt.Sprintf(testConnectionOk, response.Barcode),
	}
}
