package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/replyhub/replyhub/modules"
	"github.com/replyhub/replyhub/pkg/application"
	"github.com/replyhub/replyhub/pkg/configuration"
	"github.com/replyhub/replyhub/pkg/eventbus"
	"github.com/replyhub/replyhub/pkg/middleware"
	"github.com/replyhub/replyhub/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: conf.RedisURL})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.WithError(err).Error("failed to close redis client")
		}
	}()

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		Redis:    redisClient,
		Logger:   logger,
		EventBus: eventbus.NewEventPublisher(logger),
	})
	if err := modules.Load(app); err != nil {
		panic(err)
	}
	if err := app.ApplySchemas(ctx); err != nil {
		panic(err)
	}

	srv := server.NewHTTPServer(
		app,
		middleware.WithLogger(logger),
		middleware.WithPool(pool),
		middleware.WithTransaction(),
	)

	go func() {
		address := fmt.Sprintf("localhost:%d", conf.ServerPort)
		logger.Infof("listening on %s", address)
		if err := srv.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
