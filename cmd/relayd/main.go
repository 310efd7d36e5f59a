package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/mikanbox/relay/internal/auth"
	"github.com/mikanbox/relay/internal/config"
	"github.com/mikanbox/relay/internal/eventbus"
	"github.com/mikanbox/relay/internal/httpapi"
	"github.com/mikanbox/relay/internal/logging"
	"github.com/mikanbox/relay/internal/store"
	"github.com/mikanbox/relay/pkg/relay"
	"github.com/mikanbox/relay/pkg/transport/websocket"
)

func main() {
	configPath := flag.String("config", "", "path to config file (json or yaml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(config.LoadOptions{Path: configPath})
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := eventbus.NewInMemoryBus(1000)
	bus.Start(ctx)
	defer bus.Stop()

	hub := relay.NewHub(relay.HubOptions{
		Logger:      logger,
		EventBus:    bus,
		SendTimeout: cfg.Relay.SendTimeout.Std(),
	})
	defer hub.Stop()

	var users store.Users
	if cfg.Store.Enabled {
		mongo, err := store.Connect(ctx, store.Config{
			URI:      cfg.Store.URI,
			Database: cfg.Store.Database,
		})
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongo.Close(closeCtx)
		}()

		users = mongo.Users()

		recorder := store.NewRecorder(mongo.Messages(), bus, logger)
		recorder.Start()
		defer recorder.Stop()

		logger.Info("message log enabled", "database", cfg.Store.Database)
	}

	tokenOpts := auth.DefaultOptions([]byte(cfg.Auth.Secret))
	tokenOpts.TTL = cfg.Auth.TTL.Std()

	serverOpts := []websocket.ServerOption{
		websocket.WithHub(hub),
		websocket.WithLogger(logger),
		websocket.WithClientOptions(websocket.ClientOptions{
			WriteTimeout:   cfg.Relay.WriteTimeout.Std(),
			ReadTimeout:    cfg.Relay.ReadTimeout.Std(),
			PingInterval:   cfg.Relay.PingInterval.Std(),
			MaxMessageSize: cfg.Relay.MaxMessageSize,
			SendBufferSize: cfg.Relay.SendBuffer,
		}),
	}
	if cfg.Auth.Enabled {
		serverOpts = append(serverOpts, websocket.WithAuthenticator(auth.NewTokenAuthenticator(tokenOpts)))
		logger.Info("token authentication enabled")
	}

	wsServer := websocket.NewServer(serverOpts...)

	api := httpapi.NewHandler(users, tokenOpts, hub, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Handle("/ws", wsServer)
	r.Mount("/", api.Routes())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("relay listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
