package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fekuna/blueice-inventory-service/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	invH "github.com/fekuna/blueice-inventory-service/internal/inventory/handler"
	prodH "github.com/fekuna/blueice-inventory-service/internal/product/handler"
	routeH "github.com/fekuna/blueice-inventory-service/internal/route/handler"
	walletH "github.com/fekuna/blueice-inventory-service/internal/wallet/handler"
	walletListenerPkg "github.com/fekuna/blueice-inventory-service/internal/wallet/listener"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API, the gRPC health endpoint and the order listener",
		Action: func(c *cli.Context) error {
			cfg, appLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer appLogger.Sync()

			d, err := buildDeps(cfg, appLogger, true)
			if err != nil {
				return err
			}
			defer d.Close()

			// 1. HTTP API
			router := mux.NewRouter()
			router.Use(middleware.Identity(), middleware.RequestLogger(appLogger, d.Metrics))
			router.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)
			router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}).Methods(http.MethodGet)

			prodH.NewProductHandler(d.ProductUC, appLogger).Register(router)
			invH.NewInventoryHandler(d.InventoryUC, appLogger).Register(router)
			walletH.NewWalletHandler(d.WalletUC, appLogger).Register(router)
			routeH.NewRouteHandler(d.RouteUC, appLogger).Register(router)

			httpServer := &http.Server{
				Addr:              cfg.Server.HTTPAddr,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
			}

			// 2. gRPC health and reflection
			lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
			if err != nil {
				return err
			}
			grpcServer := grpc.NewServer(
				grpc.UnaryInterceptor(middleware.UnaryLogger(appLogger)),
			)
			healthServer := health.NewServer()
			healthpb.RegisterHealthServer(grpcServer, healthServer)
			reflection.Register(grpcServer)

			// 3. Run everything until a signal arrives
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				appLogger.Info("Starting HTTP server", zap.String("addr", cfg.Server.HTTPAddr))
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			})
			g.Go(func() error {
				appLogger.Info("Starting gRPC server", zap.String("addr", cfg.Server.GRPCAddr))
				return grpcServer.Serve(lis)
			})
			if d.Consumer != nil {
				walletListener := walletListenerPkg.NewWalletListener(d.Consumer, d.WalletUC, appLogger)
				g.Go(func() error {
					walletListener.Start(gctx)
					return nil
				})
			}
			g.Go(func() error {
				<-gctx.Done()
				appLogger.Info("Shutting down server...")
				healthServer.Shutdown()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				err := httpServer.Shutdown(shutdownCtx)
				grpcServer.GracefulStop()
				return err
			})

			if err := g.Wait(); err != nil {
				appLogger.Error("server stopped with error", zap.Error(err))
				return err
			}
			appLogger.Info("Server stopped")
			return nil
		},
	}
}
