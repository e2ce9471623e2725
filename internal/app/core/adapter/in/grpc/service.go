package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName gRPC 服務全名
const ServiceName = "ledger.v1.LedgerService"

// 方法名稱
const (
	MethodCreateAccount     = "CreateAccount"
	MethodGetAccountInfo    = "GetAccountInfo"
	MethodSearchAccounts    = "SearchAccounts"
	MethodRecordTransaction = "RecordTransaction"
	MethodQueryTransactions = "QueryTransactions"
	MethodGenerateStatement = "GenerateStatement"
)

// FullMethod 回傳 "/ledger.v1.LedgerService/<method>"
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// LedgerServiceServer 帳本服務，請求與回應都是 google.protobuf.Struct
type LedgerServiceServer interface {
	CreateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAccountInfo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchAccounts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	QueryTransactions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateStatement(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(LedgerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(LedgerServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ServiceDesc 手寫的服務描述，等同 protoc-gen-go-grpc 產生的內容
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(MethodCreateAccount, LedgerServiceServer.CreateAccount),
		unaryMethod(MethodGetAccountInfo, LedgerServiceServer.GetAccountInfo),
		unaryMethod(MethodSearchAccounts, LedgerServiceServer.SearchAccounts),
		unaryMethod(MethodRecordTransaction, LedgerServiceServer.RecordTransaction),
		unaryMethod(MethodQueryTransactions, LedgerServiceServer.QueryTransactions),
		unaryMethod(MethodGenerateStatement, LedgerServiceServer.GenerateStatement),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger/v1/ledger.proto",
}

// RegisterLedgerServiceServer 註冊到 grpc.Server
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
