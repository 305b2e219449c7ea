package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"parcelsync/entity"
	"parcelsync/internal/config"
	"parcelsync/internal/lib/sl"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	mysqlDuplicateEntry = 1062

	pingAttempts = 3
	pingInterval = 30 * time.Second
)

// ErrParcelExists is returned by SaveParcel when the order already has a parcel record.
var ErrParcelExists = errors.New("parcel record already exists for order")

type SQLClient struct {
	db         *sql.DB
	driver     string
	statements map[string]*sql.Stmt
	mu         sync.Mutex
	log        *slog.Logger
}

// NewSQLClient opens the database and applies migrations. ctx bounds the
// startup wait for MySQL; cancelling it aborts the retries.
func NewSQLClient(ctx context.Context, conf *config.Config, log *slog.Logger) (*SQLClient, error) {
	driver := conf.SQL.Driver
	var dsn string
	switch driver {
	case DriverMySQL:
		cfg := mysql.NewConfig()
		cfg.User = conf.SQL.UserName
		cfg.Passwd = conf.SQL.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(conf.SQL.HostName, conf.SQL.Port)
		cfg.DBName = conf.SQL.Database
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		dsn = cfg.FormatDSN()
	case DriverSQLite:
		dsn = conf.SQL.Path
	default:
		return nil, fmt.Errorf("unsupported sql driver: %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql connect: %w", err)
	}

	if driver == DriverMySQL {
		// wait for the database to start
		if err = pingWithRetry(ctx, db, pingAttempts, pingInterval); err != nil {
			_ = db.Close()
			return nil, err
		}
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	} else {
		// one connection: an in-memory database lives and dies with it
		db.SetMaxOpenConns(1)
		if err = db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
	}

	sdb := &SQLClient{
		db:         db,
		driver:     driver,
		statements: make(map[string]*sql.Stmt),
		log:        log.With(sl.Module("sql"), slog.String("driver", driver)),
	}

	if err = sdb.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sdb, nil
}

func pingWithRetry(ctx context.Context, db *sql.DB, attempts int, interval time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("ping database: %w", err)
}

func (s *SQLClient) Close() {
	s.closeStmt()
	_ = s.db.Close()
}

// Stats returns database info only if there are connections inUse
func (s *SQLClient) Stats() string {
	stats := s.db.Stats()
	if stats.InUse > 0 {
		return fmt.Sprintf("open: %d, inuse: %d, idle: %d, stmts: %d",
			stats.OpenConnections,
			stats.InUse,
			stats.Idle,
			len(s.statements))
	}
	return ""
}

func (s *SQLClient) ParcelExists(ctx context.Context, orderId int64) (bool, error) {
	stmt, err := s.stmtCountParcels()
	if err != nil {
		return false, err
	}

	var count int64
	if err = stmt.QueryRowContext(ctx, orderId).Scan(&count); err != nil {
		return false, fmt.Errorf("count parcels: %w", err)
	}
	return count > 0, nil
}

// SaveParcel inserts the parcel record; the unique key on order_id makes a
// second insert for the same order fail with ErrParcelExists.
func (s *SQLClient) SaveParcel(ctx context.Context, orderId int64, reference, barcode, packageCode string) error {
	stmt, err := s.stmtInsertParcel()
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx, orderId, reference, barcode, packageCode, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrParcelExists
		}
		return fmt.Errorf("insert parcel: %w", err)
	}
	return nil
}

// GetParcel returns nil without error when the order has no parcel.
func (s *SQLClient) GetParcel(ctx context.Context, orderId int64) (*entity.ParcelRecord, error) {
	stmt, err := s.stmtSelectParcel()
	if err != nil {
		return nil, err
	}

	var record entity.ParcelRecord
	err = stmt.QueryRowContext(ctx, orderId).Scan(
		&record.OrderId,
		&record.Reference,
		&record.Barcode,
		&record.PackageCode,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query parcel: %w", err)
	}
	return &record, nil
}

func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
