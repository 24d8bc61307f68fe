// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cakeline/internal/config"
	httptransport "cakeline/internal/http"
	"cakeline/internal/infra"
	"cakeline/internal/modules/board"
	"cakeline/internal/modules/gallery"
	"cakeline/internal/modules/order"
	"cakeline/internal/modules/settings"
	"cakeline/internal/modules/trip"
	"cakeline/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	var notifier order.Notifier
	if cfg.Rabbit.Enabled {
		conn, err := infra.NewRabbit(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			// Event publication is best effort; the service runs without it.
			log.Printf("rabbitmq unavailable, status events disabled: %v", err)
		} else {
			defer conn.Close()
			notifier = notify.NewPublisher(conn, cfg.Rabbit.Exchange)
		}
	}

	var verifier infra.TokenVerifier
	if cfg.Firebase.ProjectID != "" {
		verifier, err = infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatalf("firebase init: %v", err)
		}
	}

	galleryStore := gallery.NewStore(dbPool)

	orderStore := order.NewStore(dbPool)
	orderSvc := order.NewService(orderStore, galleryStore, notifier)

	settingsStore := settings.NewStore(dbPool)
	settingsSvc := settings.NewService(settingsStore, redisClient,
		time.Duration(cfg.Cache.SettingsTTLSeconds)*time.Second)

	tripStore := trip.NewStore(dbPool)
	tripSvc := trip.NewService(tripStore, orderSvc, settingsSvc, trip.Config{
		ExclusiveMembership: cfg.Trips.ExclusiveMembership,
		CreateRetries:       cfg.Trips.CreateRetries,
	})

	boardSvc := board.NewService(orderSvc, redisClient,
		time.Duration(cfg.Cache.BoardTTLSeconds)*time.Second)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Order:    orderSvc,
		Trip:     tripSvc,
		Board:    boardSvc,
		Settings: settingsSvc,
		Gallery:  galleryStore,
		Verifier: verifier,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("cakeline-api listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
