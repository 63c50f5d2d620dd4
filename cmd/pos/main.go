package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"

	"syntra-pos/config"
	"syntra-pos/internal/database"
	"syntra-pos/internal/gateway/clients"
	"syntra-pos/internal/gateway/health"
	"syntra-pos/internal/utils"
)

const HEALTH_INTERVAL = 15 * time.Second

func main() {
	app := &cli.App{
		Name:  "pos",
		Usage: "point-of-sale order and settlement service",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			tokenCommand(),
			healthcheckCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("pos exited")
	}
}

func setupLogging(level string) {
	log.SetFormatter(&log.JSONFormatter{})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, err
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and the gRPC health endpoint",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "memory", Usage: "use the in-memory store instead of postgres"},
			&cli.BoolFlag{Name: "demo", Usage: "seed a demo catalog (with --memory)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			inMemory := c.Bool("memory")
			st, closeStore, err := openStore(cfg, inMemory, c.Bool("demo"))
			if err != nil {
				return err
			}
			defer closeStore()

			rdb, err := openRedis(ctx, cfg, inMemory)
			if err != nil {
				return err
			}
			if rdb != nil {
				defer rdb.Close()
			}

			s := buildServices(cfg, st, rdb)
			return serve(ctx, cfg, s)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, s *services) error {
	gin.SetMode(gin.ReleaseMode)
	router, err := newRouter(cfg, s)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", cfg.GRPCHealthAddr)
	}
	grpcServer := grpc.NewServer()
	s.monitor.Register(grpcServer)
	go s.monitor.Watch(ctx, HEALTH_INTERVAL)
	go func() {
		log.WithField("addr", cfg.GRPCHealthAddr).Info("gRPC health service listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.WithError(err).Error("gRPC health service stopped")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("POS API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			grpcServer.Stop()
			return errors.Wrap(err, "http server failed")
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	grpcServer.GracefulStop()
	return srv.Shutdown(shutdownCtx)
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create or update the POS schema and seed payment methods",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DB.DSN == "" {
				return errors.New("POS_DSN is not set")
			}
			db, err := database.NewConnection(cfg.DB.DSN)
			if err != nil {
				return err
			}
			if err := database.MigratePOSDB(db); err != nil {
				return err
			}
			log.Info("POS database migrated")
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint an operator token signed with JWT_SECRET",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "operator", Usage: "operator id (random when empty)"},
			&cli.StringFlag{Name: "name", Usage: "operator display name"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			operatorID := uuid.New()
			if raw := c.String("operator"); raw != "" {
				if operatorID, err = uuid.Parse(raw); err != nil {
					return errors.Wrap(err, "invalid operator id")
				}
			}

			token, exp, err := utils.GenerateToken([]byte(cfg.Auth.JWTSecret), operatorID, c.String("name"), cfg.Auth.TokenTTL)
			if err != nil {
				return errors.Wrap(err, "failed to sign token")
			}
			fmt.Fprintf(c.App.Writer, "operator: %s\nexpires:  %s\ntoken:    %s\n", operatorID, exp.Format(time.RFC3339), token)
			return nil
		},
	}
}

func healthcheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "healthcheck",
		Usage: "probe a running server over the gRPC health protocol",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := clients.NewHealthClient(cfg.GRPCHealthAddr)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(c.Context, 5*time.Second)
			defer cancel()
			if err := client.Check(ctx, health.SERVICE_NAME); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "SERVING")
			return nil
		},
	}
}
