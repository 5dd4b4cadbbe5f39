package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sessiongate/sessiongate/config"
	"github.com/sessiongate/sessiongate/evt"
	"github.com/sessiongate/sessiongate/log"
	"github.com/sessiongate/sessiongate/server"
	"github.com/sessiongate/sessiongate/util"
)

const shutdownTimeout = 30 * time.Second

//nolint:gochecknoglobals
var signals = make(chan os.Signal, 1)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "start sessiongate server (default command)",
		RunE:  startServer,
	}
}

func startServer(_ *cobra.Command, _ []string) error {
	printBanner()

	if configPath == defaultConfigPath {
		if val, present := os.LookupEnv(configFileEnvVar); present {
			configPath = val
		}
	}

	cfg, err := config.LoadConfig(configPath, true)
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}

	log.ConfigureLogger(cfg.Log)

	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("can't start server: %w", err)
	}

	errChan := make(chan error, 1)
	done := make(chan error, 1)

	srv.Start(errChan)

	go func() {
		select {
		case <-signals:
			log.Log().Infof("Terminating...")

			stopCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			done <- srv.Stop(stopCtx)

		case err := <-errChan:
			log.Log().Error("server start failed: ", err)

			_ = srv.Stop(ctx)

			done <- err
		}
	}()

	evt.Bus().Publish(evt.ApplicationStarted, util.Version, util.BuildTime)

	return <-done
}

func printBanner() {
	log.Log().Info("_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/")
	log.Log().Info("_/                                                              _/")
	log.Log().Info("_/                      s e s s i o n g a t e                   _/")
	log.Log().Info("_/                                                              _/")
	log.Log().Infof("_/  Version: %-18s Build time: %-18s  _/", util.Version, util.BuildTime)
	log.Log().Info("_/                                                              _/")
	log.Log().Info("_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/")
}
