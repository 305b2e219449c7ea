package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"parcelsync/bot"
	"parcelsync/impl/core"
	"parcelsync/internal/config"
	"parcelsync/internal/consumer"
	"parcelsync/internal/database"
	repository "parcelsync/internal/database/mongo"
	"parcelsync/internal/http-server/api"
	"parcelsync/internal/lib/logger"
	"parcelsync/internal/lib/sl"
	"parcelsync/internal/services"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelDebug)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting parcelsync", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	handler := core.New(lg, conf)

	db, err := database.NewSQLClient(ctx, conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("sql client")
		return
	}
	handler.SetRepository(db)
	lg.With(
		slog.String("driver", conf.SQL.Driver),
		slog.String("host", conf.SQL.HostName),
		slog.String("database", conf.SQL.Database),
	).Info("sql client initialized")
	defer db.Close()

	mongoClient, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}
	if mongoClient != nil {
		handler.SetAttemptLog(mongoClient)
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	}

	massar := services.NewMassarService(conf, lg)
	massar.SetLimiter(services.NewLimiter(conf.Massar.RateLimit, conf.Massar.Burst))
	handler.SetDeliveryService(massar)
	lg.With(
		slog.String("url", conf.Massar.ApiUrl),
	).Info("massar service initialized")

	shop, err := services.NewWooService(conf, lg)
	if err != nil {
		lg.Error("shop service", sl.Err(err))
	}
	if shop != nil {
		handler.SetOrderStore(shop)
		lg.With(
			slog.String("url", conf.Shop.Url),
		).Info("shop service initialized")
	} else {
		lg.Warn("shop service not initialized; orders must come with the event")
	}

	handler.Start()
	defer handler.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if stats := db.Stats(); stats != "" {
					lg.Info("sql", slog.String("stats", stats))
				}
			}
		}
	})

	if conf.Listen.Enabled {
		server := api.New(conf, lg, handler)
		g.Go(func() error {
			return server.Run(ctx)
		})
	}

	if conf.Kafka.Enabled {
		statusConsumer := consumer.NewConsumer(conf, handler, lg)
		g.Go(func() error {
			return statusConsumer.Run(ctx)
		})
	}

	if tgBot != nil {
		tgBot.SetParcelService(handler)
		g.Go(func() error {
			return tgBot.Start(ctx)
		})
	}

	if err = g.Wait(); err != nil {
		lg.Error("service stopped", sl.Err(err))
		return
	}
	lg.Info("service stopped")
}
