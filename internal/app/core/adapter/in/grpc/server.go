package grpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/in/request"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/usecase"
)

type GrpcServer struct {
	core   usecase.Ledger
	logger *zap.Logger
}

func NewGrpcServer(core usecase.Ledger, logger *zap.Logger) *GrpcServer {
	return &GrpcServer{
		core:   core,
		logger: logger,
	}
}

// NewServer 建立已註冊帳本服務、日誌攔截器與 reflection 的 grpc.Server
func NewServer(core usecase.Ledger, logger *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(LoggingInterceptor(logger))}, opts...)
	s := grpc.NewServer(opts...)
	RegisterLedgerServiceServer(s, NewGrpcServer(core, logger))
	reflection.Register(s) // 方便 grpcurl 等工具測試
	return s
}

func (s *GrpcServer) CreateAccount(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := request.DecodeCreateAccount(fields(in))
	if err != nil {
		return nil, toStatus(err)
	}
	id, err := s.core.CreateAccount(ctx, req.HolderID)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return reply(map[string]any{"id": id})
}

func (s *GrpcServer) GetAccountInfo(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := request.DecodeGetAccountInfo(fields(in))
	if err != nil {
		return nil, toStatus(err)
	}
	info, err := s.core.GetAccountInfo(ctx, req.ID)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return reply(request.AccountInfoFields(info))
}

func (s *GrpcServer) SearchAccounts(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := request.DecodeSearchAccounts(fields(in))
	if err != nil {
		return nil, toStatus(err)
	}
	page, err := s.core.SearchAccounts(ctx, req.Filter, req.Page)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return reply(request.PageFields(page, request.AccountFields))
}

func (s *GrpcServer) RecordTransaction(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := request.DecodeRecordTransaction(fields(in))
	if err != nil {
		return nil, toStatus(err)
	}
	id, err := s.core.RecordTransaction(ctx, req.AccountID, req.AmountCents, req.Date, req.Memo)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return reply(map[string]any{"id": id})
}

func (s *GrpcServer) QueryTransactions(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := request.DecodeQueryTransactions(fields(in))
	if err != nil {
		return nil, toStatus(err)
	}
	page, err := s.core.QueryTransactions(ctx, req.AccountID, req.Filter, req.Page)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return reply(request.PageFields(page, request.TransactionFields))
}

func (s *GrpcServer) GenerateStatement(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := request.DecodeGenerateStatement(fields(in))
	if err != nil {
		return nil, toStatus(err)
	}
	entries, err := s.core.GenerateStatement(ctx, req.AccountID, req.From, req.To)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	result := make([]any, 0, len(entries))
	for _, e := range entries {
		result = append(result, request.StatementFields(e))
	}
	return reply(map[string]any{"result": result})
}

// fail 記錄儲存層錯誤後轉成 gRPC status
func (s *GrpcServer) fail(ctx context.Context, err error) error {
	if domain.KindOf(err) != domain.KindNotFound {
		s.logger.Error("ledger operation failed", zap.String("request_id", RequestIDFrom(ctx)), zap.Error(err))
	}
	return toStatus(err)
}

func fields(in *structpb.Struct) request.Fields {
	if in == nil {
		return request.Fields{}
	}
	return request.Fields(in.AsMap())
}

func reply(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// toStatus 錯誤類別對應 gRPC 狀態碼
func toStatus(err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		return status.Error(codes.Internal, err.Error())
	}
	switch de.Kind {
	case domain.KindNotFound:
		return status.Error(codes.NotFound, de.Error())
	case domain.KindValidation:
		return status.Error(codes.InvalidArgument, de.Error())
	default:
		return status.Error(codes.Internal, de.Error())
	}
}

var _ LedgerServiceServer = (*GrpcServer)(nil)
