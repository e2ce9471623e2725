package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	grpc_adapter "github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/in/grpc"
)

// benchCmd 建立一個帳戶後以固定併發數持續寫入存款，輸出 TPS
func (c *cli) benchCmd() *cobra.Command {
	var (
		total       int
		concurrency int
		deadline    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Post many deposits concurrently and report throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1, got %d", concurrency)
			}
			if total < 0 {
				return fmt.Errorf("--requests must not be negative, got %d", total)
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), deadline)
			defer cancel()

			acc, err := client.Call(ctx, grpc_adapter.MethodCreateAccount, map[string]any{"holderId": "bench"})
			if err != nil {
				return fmt.Errorf("create bench account: %w", err)
			}
			accountID := acc["id"]

			var (
				wg     sync.WaitGroup
				failed atomic.Int64
				sem    = make(chan struct{}, concurrency)
			)
			start := time.Now()
			for i := 0; i < total; i++ {
				sem <- struct{}{}
				wg.Add(1)
				go func(idx int) {
					defer wg.Done()
					defer func() { <-sem }()

					_, err := client.Call(ctx, grpc_adapter.MethodRecordTransaction, map[string]any{
						"id":     accountID,
						"amount": "100.00",
						"date":   "2021-01-01",
						"memo":   fmt.Sprintf("bench %d", idx),
					})
					if err != nil {
						if failed.Add(1) == 1 {
							fmt.Fprintf(cmd.ErrOrStderr(), "transaction %d failed: %v\n", idx, err)
						}
					}
				}(i)
			}
			wg.Wait()

			elapsed := time.Since(start)
			fmt.Fprintf(cmd.OutOrStdout(), "Completed %d requests (%d failed) in %v\n", total, failed.Load(), elapsed)
			fmt.Fprintf(cmd.OutOrStdout(), "TPS: %.2f\n", float64(total)/elapsed.Seconds())
			return nil
		},
	}
	cmd.Flags().IntVar(&total, "requests", 10000, "number of transactions to post")
	cmd.Flags().IntVar(&concurrency, "concurrency", 100, "concurrent in-flight requests")
	cmd.Flags().DurationVar(&deadline, "deadline", 120*time.Second, "overall deadline")
	return cmd
}
