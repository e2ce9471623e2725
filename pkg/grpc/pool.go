package grpc

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// Pool 依目標位址快取 gRPC 連線，同一位址只保留一條，可被多個 goroutine 共用
type Pool struct {
	mu           sync.Mutex
	conns        map[string]*grpc.ClientConn
	interceptors []grpc.UnaryClientInterceptor
	dialOpts     []grpc.DialOption
	logger       *zap.Logger
}

// PoolOption Pool 的選項
type PoolOption func(*Pool)

// WithInterceptor 加入 UnaryClientInterceptor (請求 ID、日誌等)，依加入順序串接
func WithInterceptor(interceptor grpc.UnaryClientInterceptor) PoolOption {
	return func(p *Pool) {
		p.interceptors = append(p.interceptors, interceptor)
	}
}

// WithDialOptions 附加在預設選項之後的連線選項
func WithDialOptions(opts ...grpc.DialOption) PoolOption {
	return func(p *Pool) {
		p.dialOpts = append(p.dialOpts, opts...)
	}
}

// WithLogger 記錄連線建立與關閉
func WithLogger(l *zap.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = l
	}
}

func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		conns:  make(map[string]*grpc.ClientConn),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetConnection 取得 target 的連線，不存在或已關閉時建立新的
//
// 參數:
//
//	target: string - 伺服器位址，例如 "localhost:50051"
//
// 回傳值:
//
//	*grpc.ClientConn: 連線 (lazy，第一次呼叫時才真正連線)
//	error: 建立失敗
func (p *Pool) GetConnection(target string) (*grpc.ClientConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.conns[target]; ok {
		if conn.GetState() != connectivity.Shutdown {
			return conn, nil
		}
		delete(p.conns, target)
	}

	opts := []grpc.DialOption{
		// 內部服務預設不加密
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             time.Second,
			PermitWithoutStream: true,
		}),
	}
	if len(p.interceptors) > 0 {
		opts = append(opts, grpc.WithChainUnaryInterceptor(p.interceptors...))
	}
	opts = append(opts, p.dialOpts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for target %s: %w", target, err)
	}
	p.conns[target] = conn
	p.logger.Debug("grpc connection created", zap.String("target", target))
	return conn, nil
}

// Close 關閉所有連線，回傳第一個錯誤
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for target, conn := range p.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.conns, target)
	}
	return firstErr
}
