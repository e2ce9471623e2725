package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	grpc_adapter "github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/in/grpc"
	rest_adapter "github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/in/rest"
	kafka_adapter "github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/out/kafka"
	memory_adapter "github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/out/memory"
	redis_adapter "github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/out/redis"
	sql_adapter "github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/out/sqldb"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/repository"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/seed"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-accounts-ledger/internal/config"
	"github.com/JoeShih716/go-accounts-ledger/pkg/database"
	"github.com/JoeShih716/go-accounts-ledger/pkg/logger"
	"github.com/JoeShih716/go-accounts-ledger/pkg/wal"
)

// store 同時提供帳戶、交易與序號的儲存層 (記憶體或 SQL)
type store interface {
	repository.Sequence
	repository.AccountStore
	repository.TransactionStore
	repository.Clearer
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "設定檔路徑")
	envFile := flag.String("env", "", ".env 檔路徑 (預設嘗試 ./.env)")
	clearAll := flag.Bool("c", false, "啟動時清空所有資料")
	seedAccounts := flag.Int("seed-accounts", 0, "啟動時建立的隨機帳戶數 (會先清空資料)")
	seedTransactions := flag.Int("seed-transactions", 0, "每個隨機帳戶的交易筆數")
	flag.Parse()

	// 1. 載入設定
	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.Load(*configPath, envFiles...)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zl.Sync()

	ctx := context.Background()

	// 2. 初始化儲存層
	st, closeStore, err := openStore(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to open store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStore()

	// 3. 序號來源
	var seq repository.Sequence = st
	clearers := []repository.Clearer{st}
	if cfg.Sequence.Driver == config.SequenceRedis {
		rs, err := redis_adapter.NewSequence(ctx, cfg.Sequence.Redis, zl)
		if err != nil {
			zl.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rs.Close()
		seq = rs
		clearers = append(clearers, rs)
	}

	// 4. 事件發布
	var publisher usecase.EventPublisher = usecase.NopPublisher{}
	if cfg.Kafka.Enabled {
		kp, err := kafka_adapter.NewPublisher(cfg.Kafka, zl)
		if err != nil {
			zl.Fatal("failed to init kafka publisher", zap.Error(err))
		}
		defer kp.Close()
		publisher = kp
	}

	// 5. 初始化 UseCase
	ids := repository.NewIDGenerator(seq)
	accounts := repository.NewAccountRepository(st, ids)
	transactions := repository.NewTransactionRepository(st, accounts, ids)
	coreUseCase := usecase.NewCoreUseCase(accounts, transactions,
		usecase.WithPublisher(publisher),
		usecase.WithPublishTimeout(cfg.Kafka.PublishTimeout),
		usecase.WithLogger(zl),
	)

	// 載入隨機資料前一律先清空
	if *clearAll || *seedAccounts > 0 {
		for _, c := range clearers {
			if err := c.Clear(ctx); err != nil {
				zl.Fatal("failed to clear data", zap.Error(err))
			}
		}
		zl.Info("all data cleared")
	}
	if *seedAccounts > 0 {
		loader := seed.NewLoader(coreUseCase, zl, 8, nil)
		if _, err := loader.Load(ctx, *seedAccounts, *seedTransactions); err != nil {
			zl.Fatal("failed to load random data", zap.Error(err))
		}
	}

	// 6. 啟動 gRPC Server
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		zl.Fatal("failed to listen", zap.String("addr", cfg.Server.GRPCAddr), zap.Error(err))
	}
	grpcServer := grpc_adapter.NewServer(coreUseCase, zl)
	go func() {
		zl.Info("starting gRPC server", zap.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			zl.Fatal("failed to serve gRPC", zap.Error(err))
		}
	}()

	// 7. 啟動 HTTP Server
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: rest_adapter.NewRouter(coreUseCase, zl, cfg.Server.BasePath),
	}
	go func() {
		zl.Info("starting HTTP server", zap.String("addr", cfg.Server.HTTPAddr), zap.Bool("tls", cfg.Server.TLSCertPath != ""))
		var err error
		if cfg.Server.TLSCertPath != "" {
			err = httpServer.ListenAndServeTLS(cfg.Server.TLSCertPath, cfg.Server.TLSKeyPath)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zl.Warn("HTTP shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	zl.Info("server exited")
}

// openStore 依設定建立儲存層，回傳的 close 函式負責釋放連線或 WAL 檔
func openStore(ctx context.Context, cfg config.Config, zl *zap.Logger) (store, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		walFile, err := wal.NewWAL(cfg.Storage.WALPath)
		if err != nil {
			return nil, nil, fmt.Errorf("init WAL: %w", err)
		}
		s, err := memory_adapter.NewMutexStore(walFile)
		if err != nil {
			walFile.Close()
			return nil, nil, fmt.Errorf("recover from WAL: %w", err)
		}
		zl.Info("memory store ready", zap.String("wal", cfg.Storage.WALPath))
		return s, func() { walFile.Close() }, nil
	case config.StorageLMAX:
		walFile, err := wal.NewWAL(cfg.Storage.WALPath)
		if err != nil {
			return nil, nil, fmt.Errorf("init WAL: %w", err)
		}
		s, err := memory_adapter.NewLMAXStore(walFile)
		if err != nil {
			walFile.Close()
			return nil, nil, fmt.Errorf("recover from WAL: %w", err)
		}
		loopCtx, stopLoop := context.WithCancel(context.Background())
		s.Start(loopCtx)
		zl.Info("lmax store ready", zap.String("wal", cfg.Storage.WALPath))
		return s, func() {
			// 先讓寫入迴圈處理完剩餘請求再關閉 WAL
			stopLoop()
			<-s.Done()
			walFile.Close()
		}, nil
	case config.StorageSQL:
		client, err := database.NewClient(cfg.Storage.Database, zl)
		if err != nil {
			return nil, nil, err
		}
		s, err := sql_adapter.NewStore(ctx, client)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		zl.Info("connected to database", zap.String("driver", client.Driver()))
		return s, func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
