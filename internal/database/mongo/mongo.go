package repository

import (
	"context"
	"fmt"
	"log/slog"
	"parcelsync/entity"
	"parcelsync/internal/config"
	"parcelsync/internal/lib/sl"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	attemptsCollection = "parcel_attempts"
	opTimeout          = 10 * time.Second
)

// MongoDB keeps an audit trail of parcel booking attempts.
type MongoDB struct {
	clientOptions *options.ClientOptions
	database      string
	expiredDays   int
	log           *slog.Logger
}

// NewMongoClient returns nil when the audit log is disabled.
func NewMongoClient(conf *config.Config, logger *slog.Logger) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().
		ApplyURI(connectionUri).
		SetServerSelectionTimeout(opTimeout)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
		expiredDays:   conf.Mongo.ExpiredDays,
		log:           logger.With(sl.Module("mongodb")),
	}
	return client, nil
}

// withAttempts connects for a single operation; the audit log is written
// rarely enough that a pooled client is not worth keeping open.
func (m *MongoDB) withAttempts(fn func(ctx context.Context, collection *mongo.Collection) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	connection, err := mongo.Connect(ctx, m.clientOptions)
	if err != nil {
		return fmt.Errorf("mongodb connect: %w", err)
	}
	defer func() {
		_ = connection.Disconnect(ctx)
	}()

	return fn(ctx, connection.Database(m.database).Collection(attemptsCollection))
}

// SaveAttempt stores one booking attempt; an empty id is replaced by a fresh uuid.
func (m *MongoDB) SaveAttempt(attempt *entity.ParcelAttempt) error {
	if attempt.Id == "" {
		attempt.Id = uuid.NewString()
	}
	if attempt.CreationDate.IsZero() {
		attempt.CreationDate = time.Now()
	}

	err := m.withAttempts(func(ctx context.Context, collection *mongo.Collection) error {
		if _, err := collection.InsertOne(ctx, attempt); err != nil {
			return fmt.Errorf("mongodb insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Debug("saved parcel attempt",
		slog.String("id", attempt.Id),
		slog.Int64("order_id", attempt.OrderId),
		slog.String("status", string(attempt.Status)))
	return nil
}

// Attempts returns the attempts recorded for an order, newest first.
func (m *MongoDB) Attempts(orderId int64) ([]*entity.ParcelAttempt, error) {
	var attempts []*entity.ParcelAttempt
	err := m.withAttempts(func(ctx context.Context, collection *mongo.Collection) error {
		opts := options.Find().SetSort(bson.D{{Key: "creation_date", Value: -1}})
		cursor, err := collection.Find(ctx, bson.M{"order_id": orderId}, opts)
		if err != nil {
			return fmt.Errorf("mongodb find: %w", err)
		}
		if err = cursor.All(ctx, &attempts); err != nil {
			return fmt.Errorf("mongodb decode: %w", err)
		}
		return nil
	})
	return attempts, err
}

// DeleteExpired removes attempts older than expiredDays and reports how many went.
func (m *MongoDB) DeleteExpired() (int64, error) {
	if m.expiredDays <= 0 {
		return 0, nil
	}

	var deleted int64
	cutoff := time.Now().AddDate(0, 0, -m.expiredDays)
	err := m.withAttempts(func(ctx context.Context, collection *mongo.Collection) error {
		result, err := collection.DeleteMany(ctx, bson.M{"creation_date": bson.M{"$lt": cutoff}})
		if err != nil {
			return fmt.Errorf("mongodb delete: %w", err)
		}
		deleted = result.DeletedCount
		return nil
	})
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		m.log.Info("deleted expired parcel attempts",
			slog.Int64("deleted_count", deleted),
			slog.Int("expired_days", m.expiredDays))
	}
	return deleted, nil
}
