package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/jwtauth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tendant/simple-case/pkg/simplecase/api"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		addr        string
		cacheMaxAge int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the case over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			c, cfg, err := a.openCase(ctx, reg)
			if err != nil {
				return err
			}
			defer c.Close()

			routerCfg := api.RouterConfig{Logger: a.logger, CacheMaxAge: cacheMaxAge}
			if cfg.EnableMetrics {
				reg.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				routerCfg.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
			}
			if cfg.JWTSecret != "" {
				routerCfg.TokenAuth = jwtauth.New("HS256", []byte(cfg.JWTSecret), nil)
			}

			if addr == "" {
				addr = net.JoinHostPort("", cfg.Port)
			}
			srv := &http.Server{
				Addr:    addr,
				Handler: api.NewRouter(c, routerCfg),
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("server listening", "addr", addr, "case_id", c.ID(), "environment", cfg.Environment)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.settings.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :PORT)")
	cmd.Flags().IntVar(&cacheMaxAge, "cache-max-age", 300, "Seconds clients may cache object and content responses (0 disables)")
	return cmd
}
