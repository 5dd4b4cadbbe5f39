package cmd

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sessiongate/sessiongate/config"
	"github.com/sessiongate/sessiongate/log"
)

//nolint:gochecknoglobals
var (
	configPath string
	apiHost    string
	apiPort    uint16
)

const (
	defaultPort       = 4000
	defaultHost       = "localhost"
	defaultConfigPath = "./config.yml"
	configFileEnvVar  = config.EnvConfigFile
)

// NewRootCommand creates a new root cli command instance
func NewRootCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "sessiongate",
		Short: "sessiongate pools sessions of a session-oriented vendor API",
		Long: `A REST facade which keeps vendor sessions alive between requests
and closes them after a configurable idle lifespan.`,
		PreRunE: initConfigPreRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd, args)
		},
		SilenceUsage: true,
	}

	c.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	c.PersistentFlags().StringVar(&apiHost, "apiHost", defaultHost, "host of sessiongate (API). Default overridden by config.")
	c.PersistentFlags().Uint16Var(&apiPort, "apiPort", defaultPort, "port of sessiongate (API). Default overridden by config.")

	c.AddCommand(
		newServeCommand(),
		newCacheCommand(),
		NewVersionCommand(),
		NewValidateCommand(),
		NewHealthcheckCommand(),
	)

	return c
}

func apiURL() string {
	return "http://" + net.JoinHostPort(apiHost, strconv.Itoa(int(apiPort)))
}

//nolint:revive
func initConfigPreRun(cmd *cobra.Command, args []string) error {
	return initConfig()
}

func initConfig() error {
	if configPath == defaultConfigPath {
		if val, present := os.LookupEnv(configFileEnvVar); present {
			configPath = val
		}
	}

	cfg, err := config.LoadConfig(configPath, false)
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}

	log.ConfigureLogger(cfg.Log)

	return applyAPIAddress(cfg.Ports.HTTP)
}

func applyAPIAddress(addr string) error {
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("can't parse http address '%s': %w", addr, err)
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return fmt.Errorf("can't convert port '%s' to number: %w", portStr, err)
	}

	apiPort = uint16(port)

	if host != "" {
		apiHost = host
	}

	return nil
}

// Execute starts the command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
