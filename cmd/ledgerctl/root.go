package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	grpc_adapter "github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/in/grpc"
	pkggrpc "github.com/JoeShih716/go-accounts-ledger/pkg/grpc"
)

// cli 所有子命令共用的狀態
type cli struct {
	pool    *pkggrpc.Pool
	addr    string
	timeout time.Duration
}

func newRootCmd(pool *pkggrpc.Pool) *cobra.Command {
	c := &cli{pool: pool}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Command line client for the accounts ledger gRPC service",
		Long: `ledgerctl talks to the ledger server over gRPC.

Example:
  ledgerctl create-account alice
  ledgerctl post 000000000001_42 1500.00 2021-01-01 "initial deposit"
  ledgerctl statement 000000000001_42 2021-01-01 2021-01-31`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.addr, "addr", "localhost:50051", "ledger gRPC server address")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "per-call timeout")

	root.AddCommand(
		c.createAccountCmd(),
		c.infoCmd(),
		c.searchCmd(),
		c.postCmd(),
		c.queryCmd(),
		c.statementCmd(),
		c.benchCmd(),
	)
	return root
}

func (c *cli) client() (*grpc_adapter.Client, error) {
	conn, err := c.pool.GetConnection(c.addr)
	if err != nil {
		return nil, err
	}
	return grpc_adapter.NewClient(conn), nil
}

// call 以 --timeout 呼叫一次
func (c *cli) call(ctx context.Context, method string, args map[string]any) (map[string]any, error) {
	client, err := c.client()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return client.Call(ctx, method, args)
}
