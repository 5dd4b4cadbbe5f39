package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sessiongate/sessiongate/api"
)

const (
	defaultIPAddress   = "127.0.0.1"
	healthcheckTimeout = 5 * time.Second
)

// NewHealthcheckCommand creates new command instance
func NewHealthcheckCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "healthcheck",
		Short: "performs healthcheck",
		RunE:  healthcheck,

		SilenceUsage: true,
	}

	c.Flags().Uint16P("port", "p", defaultPort, "sessiongate http port")
	c.Flags().StringP("bindip", "b", defaultIPAddress, "sessiongate host binding ip address")

	return c
}

func healthcheck(cmd *cobra.Command, _ []string) error {
	port, _ := cmd.Flags().GetUint16("port")
	bindIP, _ := cmd.Flags().GetString("bindip")

	ctx, cancel := context.WithTimeout(context.Background(), healthcheckTimeout)
	defer cancel()

	client := api.NewClient("http://"+net.JoinHostPort(bindIP, strconv.Itoa(int(port))),
		&http.Client{Timeout: healthcheckTimeout})

	_, err := client.CacheStats(ctx)

	if err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "OK")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "NOT OK")
	}

	return err
}
