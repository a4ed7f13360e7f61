package codec

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/splitshift/internal/cipher"
	"github.com/danielpatrickdp/splitshift/internal/verify"
)

// #region server-struct
// Server exposes the cipher package over gRPC.
type Server struct {
	log        *zap.Logger
	verifyOpts verify.Options
}

var _ CipherServiceServer = (*Server)(nil)

// NewServer creates a Server. A nil logger discards output.
func NewServer(logger *zap.Logger, verifyOpts verify.Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{log: logger, verifyOpts: verifyOpts}
}
// #endregion server-struct

// #region encode
// Encode handles {text, shift1, shift2} -> {cipher_text, metadata}.
func (s *Server) Encode(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	text, err := stringField(in, "text")
	if err != nil {
		return nil, err
	}
	p, err := shiftPair(in)
	if err != nil {
		return nil, err
	}
	enc, meta := cipher.Encode(text, p)
	return newStruct(map[string]any{
		"cipher_text": enc,
		"metadata":    metadataValue(meta),
	})
}
// #endregion encode

// #region decode
// Decode handles {cipher_text, shift1, shift2, metadata?} ->
// {text, mode, warning, ambiguities}. Missing or invalid metadata selects
// brute force recovery and is reported in warning.
func (s *Server) Decode(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	enc, err := stringField(in, "cipher_text")
	if err != nil {
		return nil, err
	}
	p, err := shiftPair(in)
	if err != nil {
		return nil, err
	}
	meta, metaErr := metadataField(in)
	d := cipher.Decrypt(enc, meta, metaErr, p)

	warning := ""
	if d.Warning != nil {
		warning = d.Warning.Error()
		s.log.Warn("decode fell back to brute force", zap.Error(d.Warning))
	}
	return newStruct(map[string]any{
		"text":        d.Text,
		"mode":        string(d.Mode),
		"warning":     warning,
		"ambiguities": ambiguityValues(d.Ambiguities),
	})
}
// #endregion decode

// #region recover
// Recover handles {cipher_text, shift1, shift2} -> {text, ambiguities}.
func (s *Server) Recover(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	enc, err := stringField(in, "cipher_text")
	if err != nil {
		return nil, err
	}
	p, err := shiftPair(in)
	if err != nil {
		return nil, err
	}
	rec := cipher.Recover(enc, p)
	return newStruct(map[string]any{
		"text":        rec.Text,
		"ambiguities": ambiguityValues(rec.Ambiguities),
	})
}
// #endregion recover

// #region verify
// Verify handles {original, recovered} -> verify.Outcome fields.
func (s *Server) Verify(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	original, err := stringField(in, "original")
	if err != nil {
		return nil, err
	}
	recovered, err := stringField(in, "recovered")
	if err != nil {
		return nil, err
	}
	out := verify.Verify(original, recovered, s.verifyOpts)
	return newStruct(map[string]any{
		"match":     out.Match,
		"position":  out.Position,
		"line":      out.Line,
		"column":    out.Column,
		"want":      out.Want,
		"got":       out.Got,
		"diff":      out.Diff,
		"truncated": out.Truncated,
	})
}
// #endregion verify

// #region serve
// LoggingInterceptor logs every unary call with its status code.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("rpc",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("elapsed", time.Since(start)))
		return resp, err
	}
}

// Serve runs srv on lis until ctx is cancelled, then stops gracefully.
func Serve(ctx context.Context, lis net.Listener, srv *Server) error {
	gs := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(srv.log)))
	RegisterCipherServiceServer(gs, srv)

	errc := make(chan error, 1)
	go func() { errc <- gs.Serve(lis) }()
	srv.log.Info("cipher service listening", zap.String("addr", lis.Addr().String()))

	select {
	case <-ctx.Done():
		gs.GracefulStop()
		<-errc
		return nil
	case err := <-errc:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	}
}
// #endregion serve

func newStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return s, nil
}
