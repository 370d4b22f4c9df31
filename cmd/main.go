package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/caferp/config"
	"github.com/ray-remotestate/caferp/database"
	"github.com/ray-remotestate/caferp/server"
)

const shutdownTimeOut = 10 * time.Second

func main() {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	config.Init()

	if err := database.ConnectAndMigrate(
		config.DBHost,
		config.DBPort,
		config.DBName,
		config.DBUser,
		config.DBPassword,
		database.SSLMode(config.DBSSLMode),
	); err != nil {
		logrus.Panicf("failed to initialize database, error: %v", err)
	}
	logrus.Info("migration is successful")

	svr := server.SetupRoutes()

	go func() {
		if err := svr.Run(config.ServerPort); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Panic("server stopped unexpectedly")
		}
	}()
	logrus.Infof("server listening on %s", config.ServerPort)

	<-done

	logrus.Info("shutting down...")
	if err := svr.Shutdown(shutdownTimeOut); err != nil {
		logrus.WithError(err).Error("failed to shut down server cleanly")
	}
	if err := database.ShutdownDatabase(); err != nil {
		logrus.WithError(err).Error("failed to close database connection!")
	}

	logrus.Info("system is shut ..zzz")
}
