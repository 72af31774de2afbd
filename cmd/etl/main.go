package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/app"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/activity"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/report"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/roster"
	dtelegram "github.com/NVB20/whatsapp-automation-mk-II/internal/domain/telegram"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/infra/config"
	idb "github.com/NVB20/whatsapp-automation-mk-II/internal/infra/database"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/infra/logger"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/infra/scheduler"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/infra/sheets"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/infra/source"
	itelegram "github.com/NVB20/whatsapp-automation-mk-II/internal/infra/telegram"
)

func main() {
	once := flag.Bool("once", false, "run a single ETL batch and exit")
	flag.Parse()

	fmt.Println("Student activity ETL starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s", cfg.LogLevel, cfg.Environment)

	// Mongo connection and collections.
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	client, err := idb.NewMongoConnection(connectCtx, cfg.MongoURI)
	cancelConnect()
	if err != nil {
		log.Fatalf("Could not connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Errorf("Error disconnecting from MongoDB: %v", err)
		}
	}()
	log.Info("MongoDB connection established successfully.")

	statsColl := client.Database(cfg.StudentsDBName).Collection(cfg.StudentsStatsColl)
	runLogColl := client.Database(cfg.LoggerDBName).Collection(cfg.LoggerStatsColl)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := idb.EnsureStudentStatsIndexes(indexCtx, statsColl); err != nil {
		cancelIndex()
		log.Fatalf("Could not ensure student stats indexes: %v", err)
	}
	if err := idb.EnsureRunLogIndexes(indexCtx, runLogColl); err != nil {
		cancelIndex()
		log.Fatalf("Could not ensure run log indexes: %v", err)
	}
	cancelIndex()

	// Repositories.
	studentRepo := idb.NewMongoStudentRepository(statsColl, log)
	runLogRepo := idb.NewMongoRunLogRepository(runLogColl)
	log.Info("Repositories initialized.")

	// Student directory and dashboard. Without a configured sheet the
	// pipeline still runs; unrecognized senders fall back to Unknown.
	var rosterProvider roster.Provider = roster.StaticProvider{Roster: roster.New(nil)}
	var dashboardSink report.Sink
	if cfg.SheetID != "" {
		sheetsCtx, cancelSheets := context.WithTimeout(context.Background(), 15*time.Second)
		svc, err := sheets.NewService(sheetsCtx, cfg.CredentialsFile)
		cancelSheets()
		if err != nil {
			log.Fatalf("Could not create Google Sheets service: %v", err)
		}
		rosterProvider = sheets.NewRosterProvider(svc, cfg.SheetID, cfg.WorksheetName, log)
		dashboardSink = sheets.NewPracticeReporter(svc, cfg.SheetID, cfg.WorksheetName, log)
		log.Info("Google Sheets directory and dashboard initialized.")
	} else {
		log.Warn("SHEET_ID is not set - running without a student directory or dashboard sync.")
	}

	// Optional Telegram run-summary notifier.
	var notifier dtelegram.Client
	if cfg.TelegramToken != "" {
		bot, err := telebot.NewBot(telebot.Settings{Token: cfg.TelegramToken})
		if err != nil {
			log.Fatalf("Could not create Telegram bot: %v", err)
		}
		notifier = itelegram.NewTelebotAdapter(bot)
		log.Info("Telegram run-summary notifier initialized.")
	}

	// Services.
	classifier := activity.NewClassifier(cfg.PracticeWords, cfg.MessageWords)
	ingestService := app.NewIngestService(studentRepo, log)
	var reportService app.ReportService
	if dashboardSink != nil {
		reportService = app.NewReportService(studentRepo, dashboardSink, log)
	}
	etlService := app.NewETLService(
		source.NewFileSource(cfg.ExportFile, log),
		rosterProvider,
		classifier,
		ingestService,
		reportService,
		runLogRepo,
		notifier,
		cfg.AdminTelegramID,
		log,
	)
	log.Info("Application setup complete.")

	if *once {
		runCtx, cancelRun := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancelRun()
		stats, err := etlService.Run(runCtx)
		if err != nil {
			log.Fatalf("ETL run failed: %v", err)
		}
		log.Infof("ETL run finished: %d students processed (%d new, %d updated), %d messages and %d practices accepted, %d errors.",
			stats.StudentsProcessed, stats.NewStudents, stats.UpdatedStudents,
			stats.MessagesAccepted, stats.PracticesAccepted, stats.Errors)
		return
	}

	etlScheduler := scheduler.NewETLScheduler(etlService, log, cfg.CronSpecETL)
	etlScheduler.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	etlScheduler.Stop()
	log.Info("Application shut down gracefully.")
}
