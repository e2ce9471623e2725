package main

import (
	"fmt"
	"os"

	pkggrpc "github.com/JoeShih716/go-accounts-ledger/pkg/grpc"

	grpc_adapter "github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/in/grpc"
)

func main() {
	pool := pkggrpc.NewPool(pkggrpc.WithInterceptor(grpc_adapter.RequestIDClientInterceptor()))
	defer pool.Close()

	if err := newRootCmd(pool).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
