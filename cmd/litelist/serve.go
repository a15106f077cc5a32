package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/qcom/litelist/internal/handlers"
	"github.com/qcom/litelist/internal/middleware"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local gateway that keeps the session renewed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides gateway.addr)",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	a, err := bootstrap(c, true)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Gateway.Addr
	if c.String("addr") != "" {
		addr = c.String("addr")
	}

	gateway := handlers.NewGateway(a.controller, a.client, a.logger)
	guard := middleware.NewGuard(a.controller, a.logger)

	if guard.Recover(c.Context) {
		a.logger.WithField("username", a.controller.Session().User.Username).Info("Resumed stored session")
	}
	router := handlers.NewRouter(gateway, guard, a.cfg.Gateway.AllowedOrigin, a.registry, a.logger)

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  a.cfg.Gateway.ReadTimeout,
		WriteTimeout: a.cfg.Gateway.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.WithFields(logrus.Fields{
			"addr": addr,
			"api":  a.client.BaseURL(),
		}).Info("Starting gateway")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-serverErr:
		a.logger.WithError(err).Error("Gateway failed to start")
		return err
	}

	a.logger.Info("Shutting down gateway...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Error("Gateway forced to shutdown")
		return err
	}

	a.logger.Info("Gateway exited")
	return nil
}
