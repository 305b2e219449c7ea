package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"parcelsync/entity"
	"parcelsync/internal/lib/sl"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
)

// reserved characters of Telegram MarkdownV2
const reservedChars = "\\_*[]()~`>#+-=|{}.!"

// ParcelService is what admins can reach from the chat.
type ParcelService interface {
	GetParcel(ctx context.Context, orderId int64) (*entity.ParcelRecord, error)
	CreateParcelManually(ctx context.Context, orderId int64) (*entity.ParcelResult, error)
	ParcelAttempts(orderId int64) ([]*entity.ParcelAttempt, error)
}

type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	botUsername string
	adminIds    []int64
	minLogLevel slog.Level
	adminLevels map[int64]slog.Level
	levelsMu    sync.RWMutex
	parcels     ParcelService
}

func NewTgBot(botName, apiKey string, adminIdsStr string, log *slog.Logger) (*TgBot, error) {
	adminIds, err := parseAdminIds(adminIdsStr)
	if err != nil {
		return nil, err
	}

	// the first admin gets everything, the others only problems
	adminLevels := make(map[int64]slog.Level)
	for i, adminId := range adminIds {
		if i == 0 {
			adminLevels[adminId] = slog.LevelDebug
		} else {
			adminLevels[adminId] = slog.LevelWarn
		}
	}

	tgBot := &TgBot{
		log:         log.With(sl.Module("tgbot")),
		adminIds:    adminIds,
		botUsername: botName,
		minLogLevel: slog.LevelDebug,
		adminLevels: adminLevels,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api

	return tgBot, nil
}

func parseAdminIds(adminIdsStr string) ([]int64, error) {
	var adminIds []int64
	if strings.TrimSpace(adminIdsStr) == "" {
		return adminIds, nil
	}
	for _, idStr := range strings.Split(adminIdsStr, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin_id value: %q, must be a comma-separated list of integers", adminIdsStr)
		}
		adminIds = append(adminIds, id)
	}
	return adminIds, nil
}

func (t *TgBot) SetParcelService(parcels ParcelService) {
	t.parcels = parcels
}

// Start polls for updates until ctx is cancelled.
func (t *TgBot) Start(ctx context.Context) error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		// If an error is returned by a handler, log it and continue going.
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.With(sl.Err(err)).Warn("handling update")
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	updater := ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewCommand("level", t.level))
	dispatcher.AddHandler(handlers.NewCommand("parcel", t.parcel))
	dispatcher.AddHandler(handlers.NewCommand("create", t.create))

	err := updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}
	t.log.Info("bot started", slog.String("username", t.botUsername))

	<-ctx.Done()
	if err = updater.Stop(); err != nil {
		t.log.With(sl.Err(err)).Warn("stopping updater")
	}
	return nil
}

func (t *TgBot) isAdmin(userId int64) bool {
	for _, adminId := range t.adminIds {
		if userId == adminId {
			return true
		}
	}
	return false
}

// SetAdminLogLevel sets the minimum log level for a specific admin
func (t *TgBot) SetAdminLogLevel(adminId int64, level slog.Level) {
	t.levelsMu.Lock()
	t.adminLevels[adminId] = level
	t.levelsMu.Unlock()
}

func (t *TgBot) adminLevel(adminId int64) slog.Level {
	t.levelsMu.RLock()
	defer t.levelsMu.RUnlock()
	if level, ok := t.adminLevels[adminId]; ok {
		return level
	}
	return t.minLogLevel
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

// level handles the /level command to set the minimum log level for admin notifications
func (t *TgBot) level(b *tgbotapi.Bot, ctx *ext.Context) error {
	userId := ctx.EffectiveUser.Id
	if !t.isAdmin(userId) {
		_, err := ctx.EffectiveMessage.Reply(b, "You are not authorized to use this command.", nil)
		return err
	}

	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 2 {
		t.plainResponse(userId, fmt.Sprintf("Your current log level: %s\nAvailable levels: debug, info, warn, error", t.adminLevel(userId).String()))
		return nil
	}

	level, ok := parseLevel(args[1])
	if !ok {
		t.plainResponse(userId, fmt.Sprintf("Invalid level: %s\nAvailable levels: debug, info, warn, error", args[1]))
		return nil
	}

	t.SetAdminLogLevel(userId, level)
	t.plainResponse(userId, fmt.Sprintf("Your log level set to: %s", level.String()))
	return nil
}

// parcel handles /parcel <order_id>
func (t *TgBot) parcel(b *tgbotapi.Bot, ctx *ext.Context) error {
	userId, orderId, ok := t.orderCommand(b, ctx)
	if !ok {
		return nil
	}

	record, err := t.parcels.GetParcel(context.Background(), orderId)
	if err != nil {
		t.log.With(sl.Err(err)).Error("get parcel", slog.Int64("order_id", orderId))
		t.plainResponse(userId, "Parcel lookup failed")
		return nil
	}
	text := formatRecord(orderId, record)

	attempts, err := t.parcels.ParcelAttempts(orderId)
	if err != nil {
		t.log.With(sl.Err(err)).Warn("get parcel attempts", slog.Int64("order_id", orderId))
	}
	text += formatAttempts(attempts)

	t.plainResponse(userId, text)
	return nil
}

// create handles /create <order_id>, a manual retry after a failed booking
func (t *TgBot) create(b *tgbotapi.Bot, ctx *ext.Context) error {
	userId, orderId, ok := t.orderCommand(b, ctx)
	if !ok {
		return nil
	}

	result, err := t.parcels.CreateParcelManually(context.Background(), orderId)
	t.plainResponse(userId, formatResult(orderId, result, err))
	return nil
}

func (t *TgBot) orderCommand(b *tgbotapi.Bot, ctx *ext.Context) (int64, int64, bool) {
	userId := ctx.EffectiveUser.Id
	if !t.isAdmin(userId) {
		_, _ = ctx.EffectiveMessage.Reply(b, "You are not authorized to use this command.", nil)
		return 0, 0, false
	}
	if t.parcels == nil {
		t.plainResponse(userId, "Parcel service is not available")
		return 0, 0, false
	}

	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 2 {
		t.plainResponse(userId, fmt.Sprintf("Usage: %s <order_id>", args[0]))
		return 0, 0, false
	}
	orderId, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || orderId <= 0 {
		t.plainResponse(userId, fmt.Sprintf("Invalid order id: %s", args[1]))
		return 0, 0, false
	}
	return userId, orderId, true
}

func formatRecord(orderId int64, record *entity.ParcelRecord) string {
	if record == nil {
		return fmt.Sprintf("Order %d has no parcel", orderId)
	}
	return fmt.Sprintf("Order %d\nReference: %s\nBarcode: %s\nPackage: %s\nCreated: %s",
		orderId,
		record.Reference,
		record.Barcode,
		record.PackageCode,
		record.CreatedAt.Format(time.RFC3339))
}

func formatAttempts(attempts []*entity.ParcelAttempt) string {
	if len(attempts) == 0 {
		return ""
	}
	last := attempts[0]
	return fmt.Sprintf("\nAttempts: %d, last: %s at %s",
		len(attempts),
		last.Status,
		last.CreationDate.Format(time.RFC3339))
}

func formatResult(orderId int64, result *entity.ParcelResult, err error) string {
	switch {
	case errors.Is(err, entity.ErrOrderNotFound):
		return fmt.Sprintf("Order %d not found", orderId)
	case err != nil && result == nil:
		return fmt.Sprintf("Order %d: %v", orderId, err)
	case result == nil:
		return fmt.Sprintf("Order %d: no result", orderId)
	case result.Created():
		return fmt.Sprintf("Order %d: parcel created, barcode %s", orderId, result.Barcode)
	case result.Status == entity.ParcelUnrecorded:
		return fmt.Sprintf("Order %d: parcel created, barcode %s, but not recorded; do not retry", orderId, result.Barcode)
	default:
		return fmt.Sprintf("Order %d: %s", orderId, result.Status)
	}
}

// SendMessageWithLevel sends a message to all admins whose level allows it
func (t *TgBot) SendMessageWithLevel(msg string, level slog.Level) {
	for _, adminId := range t.adminIds {
		if level >= t.adminLevel(adminId) {
			t.plainResponse(adminId, msg)
		}
	}
}

func (t *TgBot) plainResponse(chatId int64, text string) {
	if text == "" {
		t.log.With(
			slog.Int64("id", chatId),
		).Debug("empty message")
		return
	}

	_, err := t.api.SendMessage(chatId, Sanitize(text), &tgbotapi.SendMessageOpts{
		ParseMode: "MarkdownV2",
	})
	if err != nil {
		t.log.With(
			slog.Int64("id", chatId),
		).Warn("sending message", sl.Err(err))
		_, err = t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{})
		if err != nil {
			t.log.With(
				slog.Int64("id", chatId),
			).Error("sending safe message", sl.Err(err))
		}
	}
}

// Sanitize escapes MarkdownV2 reserved characters.
func Sanitize(input string) string {
	var sb strings.Builder
	sb.Grow(len(input))
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(char)
	}
	return sb.String()
}
