package main

import (
	"context"
	"fmt"
	"time"

	"firstbites/config"
	"firstbites/services"
	"firstbites/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles the services shared by the serve and remind commands.
type app struct {
	cfg        config.Config
	log        *zap.SugaredLogger
	db         *gorm.DB
	registry   *prometheus.Registry
	bus        *services.EventBus
	metrics    *services.Metrics
	push       *services.PushService
	reminders  *services.ReminderService
	recognizer *services.RecognitionService
	hub        *services.RealtimeHub
	sessions   *services.SessionManager
	dispatcher services.Dispatcher
	uploader   services.ImageUploader

	detach []func()
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	log, err := config.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	a := &app{cfg: cfg, log: log, db: db}
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = services.NewMetrics(a.registry)
	a.bus = services.NewEventBus(log.Named("events"))
	a.hub = services.NewRealtimeHub(log.Named("realtime"))
	a.detach = append(a.detach, a.metrics.ObserveEvents(a.bus), a.hub.Attach(a.bus))

	var fanout services.FanoutDispatcher
	if cfg.SNSFCMArn != "" {
		ps, err := services.NewPushService(ctx, db, cfg.AWSRegion, cfg.SNSFCMArn, log.Named("push"))
		if err != nil {
			return nil, fmt.Errorf("init push: %w", err)
		}
		a.push = ps
		fanout = append(fanout, ps)
	}
	if urls := cfg.NotifyURLList(); len(urls) > 0 {
		sd, err := services.NewShoutrrrDispatcher(urls, 10*time.Second)
		if err != nil {
			return nil, fmt.Errorf("init notify urls: %w", err)
		}
		fanout = append(fanout, sd)
	}
	var dispatcher services.Dispatcher
	if len(fanout) > 0 {
		dispatcher = fanout
	}

	var uploader services.ImageUploader
	if cfg.S3Bucket != "" {
		up, err := utils.NewS3Uploader(ctx, cfg.S3Region, cfg.S3Bucket, cfg.CloudFrontURL)
		if err != nil {
			return nil, fmt.Errorf("init s3: %w", err)
		}
		uploader = up
	}

	var mailer services.EmailSender
	if cfg.SESEmail != "" {
		m, err := utils.NewMailer(ctx, cfg.AWSRegion, cfg.SESEmail)
		if err != nil {
			return nil, fmt.Errorf("init ses: %w", err)
		}
		mailer = m
	}
	a.reminders = services.NewReminderService(mailer, dispatcher, log.Named("reminders"))

	if cfg.IsProduction() || cfg.S3Bucket != "" {
		rec, err := services.NewRecognitionService(ctx, cfg.AWSRegion)
		if err != nil {
			log.Warnw("food recognition disabled", "error", err)
		} else {
			a.recognizer = rec
		}
	}

	a.dispatcher, a.uploader = dispatcher, uploader
	a.sessions = services.NewSessionManager(services.TrackerDeps{
		Store:      services.NewGormStore(db),
		Dispatcher: dispatcher,
		Bus:        a.bus,
		Uploader:   uploader,
		Metrics:    a.metrics,
		Logger:     log.Named("tracker"),
	}, cfg.SessionTTL)

	return a, nil
}

func (a *app) close() {
	for _, f := range a.detach {
		f()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
