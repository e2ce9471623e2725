package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client LedgerService 的客戶端，參數與回應皆為 map
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Call 呼叫指定方法
//
// 參數:
//
//	method: string - 方法名稱，例如 MethodCreateAccount
//	args: map[string]any - 請求參數，金額請用 "12.34" 形式的字串
//
// 回傳值:
//
//	map[string]any: 回應內容 (數字為 float64)
//	error: gRPC status 錯誤
func (c *Client) Call(ctx context.Context, method string, args map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	in, err := structpb.NewStruct(args)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
