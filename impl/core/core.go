package core

import (
	"context"
	"log/slog"
	"parcelsync/entity"
	"parcelsync/internal/config"
	"parcelsync/internal/lib/sl"
	"sync"
	"time"
)

// Repository stores one parcel record per order.
type Repository interface {
	ParcelExists(ctx context.Context, orderId int64) (bool, error)
	SaveParcel(ctx context.Context, orderId int64, reference, barcode, packageCode string) error
	GetParcel(ctx context.Context, orderId int64) (*entity.ParcelRecord, error)
}

// DeliveryService books parcels with the carrier.
type DeliveryService interface {
	CreateParcel(ctx context.Context, parcel *entity.ParcelRequest) (*entity.ParcelResponse, error)
	TestConnection(ctx context.Context, login, password string) *entity.ConnectionTest
}

// OrderStore resolves orders and records notes in the shop.
type OrderStore interface {
	GetOrder(ctx context.Context, orderId int64) (*entity.ShopOrder, error)
	AddOrderNote(ctx context.Context, orderId int64, note string) error
}

type AttemptLog interface {
	SaveAttempt(attempt *entity.ParcelAttempt) error
	Attempts(orderId int64) ([]*entity.ParcelAttempt, error)
	DeleteExpired() (int64, error)
}

// Settings is the delivery configuration the reconciler works with.
type Settings struct {
	Enabled  bool
	ApiUrl   string
	Login    string
	Password string
}

func (s Settings) configured() bool {
	return s.ApiUrl != "" && s.Login != "" && s.Password != ""
}

type Core struct {
	repo     Repository
	delivery DeliveryService
	store    OrderStore
	attempts AttemptLog
	settings Settings
	authKey  string
	log      *slog.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func New(log *slog.Logger, conf *config.Config) *Core {
	return &Core{
		log: log.With(sl.Module("core")),
		settings: Settings{
			Enabled:  conf.Massar.Enabled,
			ApiUrl:   conf.Massar.ApiUrl,
			Login:    conf.Massar.Login,
			Password: conf.Massar.Password,
		},
		authKey: conf.Listen.ApiKey,
		stopCh:  make(chan struct{}),
	}
}

func (c *Core) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetDeliveryService(delivery DeliveryService) {
	c.delivery = delivery
}

func (c *Core) SetOrderStore(store OrderStore) {
	c.store = store
}

func (c *Core) SetAttemptLog(attempts AttemptLog) {
	c.attempts = attempts
}

func (c *Core) SetSettings(settings Settings) {
	c.settings = settings
}

func (c *Core) SetAuthKey(key string) {
	c.authKey = key
}

func (c *Core) Start() {
	if c.repo == nil {
		c.log.Error("repository not set")
		return
	}

	if c.delivery == nil {
		c.log.Error("delivery service not set")
		return
	}

	if !c.settings.Enabled {
		c.log.Warn("parcel creation disabled")
	} else if !c.settings.configured() {
		c.log.Warn("delivery api not configured",
			slog.Bool("url", c.settings.ApiUrl != ""),
			slog.Bool("login", c.settings.Login != ""),
			slog.Bool("password", c.settings.Password != ""))
	}

	// Separate goroutine for MongoDB cleanup (runs every 12 hours)
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()

		// Run cleanup once at startup
		c.cleanupExpiredAttempts()

		for {
			select {
			case <-c.stopCh:
				return
			case <-ticker.C:
				c.cleanupExpiredAttempts()
			}
		}
	}()
}

func (c *Core) cleanupExpiredAttempts() {
	if c.attempts == nil {
		return
	}

	_, err := c.attempts.DeleteExpired()
	if err != nil {
		c.log.With(sl.Err(err)).Warn("failed to cleanup expired parcel attempts")
	}
}
