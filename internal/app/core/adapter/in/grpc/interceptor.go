package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDKey 請求 ID 在 metadata 中的鍵
const RequestIDKey = "x-request-id"

type requestIDCtxKey struct{}

// RequestIDFrom 取出攔截器放入 context 的請求 ID
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

// LoggingInterceptor 為每個呼叫指定請求 ID (沿用客戶端帶來的或產生新的 uuid)，
// 回寫到 response header 並以 zap 記錄耗時與狀態碼
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDKey); len(v) > 0 {
				id = v[0]
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		ctx = context.WithValue(ctx, requestIDCtxKey{}, id)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, id))

		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc call",
			zap.String("method", info.FullMethod),
			zap.String("request_id", id),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

// RequestIDClientInterceptor 客戶端攔截器：每次呼叫帶上新的請求 ID
func RequestIDClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if md, ok := metadata.FromOutgoingContext(ctx); !ok || len(md.Get(RequestIDKey)) == 0 {
			ctx = metadata.AppendToOutgoingContext(ctx, RequestIDKey, uuid.NewString())
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
