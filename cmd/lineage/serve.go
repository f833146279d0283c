// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/lineage/services/lineage"
	"github.com/AleutianAI/lineage/services/lineage/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

func newServeCmd(c *cli) *cobra.Command {
	var port int
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lineage HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				c.cfg.Server.Port = port
			}
			if cmd.Flags().Changed("watch") {
				c.cfg.Dataset.Watch = watch
			}
			return c.serve(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides server.port)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload when the dataset files change")
	return cmd
}

func (c *cli) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, c.cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			c.logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := telemetry.NewMetrics(otel.Meter(c.cfg.Telemetry.ServiceName))
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	svcCfg := lineage.ServiceConfigFrom(c.cfg)
	svcCfg.Logger = c.logger
	svcCfg.Metrics = metrics
	svc := lineage.NewService(svcCfg)
	defer svc.Close()

	if _, err := svc.Load(ctx); err != nil {
		return err
	}
	if c.cfg.Dataset.Watch {
		if err := svc.Watch(ctx); err != nil {
			return err
		}
		c.logger.Info("watching dataset", slog.Any("files", svcCfg.Source.Paths()))
	}

	gin.SetMode(c.cfg.Server.Mode)
	router, err := lineage.NewRouter(svc, lineage.RouterConfig{
		ServiceName:     c.cfg.Telemetry.ServiceName,
		RateLimitRPS:    c.cfg.Server.RateLimit.RPS,
		RateLimitBurst:  c.cfg.Server.RateLimit.Burst,
		DefaultEgoDepth: c.cfg.Engine.MaxEgoDepth,
		Metrics:         metrics,
		AccessLog:       c.cfg.Server.Mode == gin.DebugMode,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", c.cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("starting lineage server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	c.logger.Info("shutting down lineage server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
