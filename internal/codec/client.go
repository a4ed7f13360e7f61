// Package codec serves the cipher over gRPC and wraps the client side in
// typed calls.
package codec

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/splitshift/internal/cipher"
	"github.com/danielpatrickdp/splitshift/internal/verify"
)

// #region types
// EncodeResult holds the response from an Encode RPC call.
type EncodeResult struct {
	CipherText string
	Metadata   cipher.Metadata
}
// #endregion types

// #region client-struct
// CodecClient wraps the gRPC connection to a cipher service.
type CodecClient struct {
	conn   *grpc.ClientConn
	client CipherServiceClient
}
// #endregion client-struct

// #region constructor
// NewCodecClient connects to the cipher gRPC server.
func NewCodecClient(addr string, opts ...grpc.DialOption) (*CodecClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &CodecClient{
		conn:   conn,
		client: NewCipherServiceClient(conn),
	}, nil
}

// NewCodecClientWithService creates a CodecClient with an injected service implementation.
// Used for testing without a real gRPC connection.
func NewCodecClientWithService(svc CipherServiceClient) *CodecClient {
	return &CodecClient{client: svc}
}
// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *CodecClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region encode
// Encode sends text to the service for encoding.
func (c *CodecClient) Encode(ctx context.Context, text string, p cipher.ShiftPair) (EncodeResult, error) {
	in, err := structpb.NewStruct(map[string]any{
		"text":   text,
		"shift1": p.Shift1,
		"shift2": p.Shift2,
	})
	if err != nil {
		return EncodeResult{}, fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.client.Encode(ctx, in)
	if err != nil {
		return EncodeResult{}, fmt.Errorf("encode rpc: %w", err)
	}

	enc, err := stringField(resp, "cipher_text")
	if err != nil {
		return EncodeResult{}, fmt.Errorf("encode response: %w", err)
	}
	meta, err := metadataField(resp)
	if err != nil {
		return EncodeResult{}, fmt.Errorf("encode response: %w", err)
	}
	return EncodeResult{CipherText: enc, Metadata: meta}, nil
}
// #endregion encode

// #region decode
// Decode asks the service to decrypt cipherText. A nil meta omits the
// metadata so the service recovers by brute force.
func (c *CodecClient) Decode(ctx context.Context, cipherText string, meta cipher.Metadata, p cipher.ShiftPair) (cipher.Decryption, error) {
	req := map[string]any{
		"cipher_text": cipherText,
		"shift1":      p.Shift1,
		"shift2":      p.Shift2,
	}
	if meta != nil {
		req["metadata"] = metadataValue(meta)
	}
	in, err := structpb.NewStruct(req)
	if err != nil {
		return cipher.Decryption{}, fmt.Errorf("decode request: %w", err)
	}
	resp, err := c.client.Decode(ctx, in)
	if err != nil {
		return cipher.Decryption{}, fmt.Errorf("decode rpc: %w", err)
	}

	fields := resp.GetFields()
	amb, err := parseAmbiguities(fields["ambiguities"])
	if err != nil {
		return cipher.Decryption{}, fmt.Errorf("decode response: %w", err)
	}
	return cipher.Decryption{
		Text:        fields["text"].GetStringValue(),
		Mode:        cipher.Mode(fields["mode"].GetStringValue()),
		Ambiguities: amb,
		Warning:     remoteWarning(fields["warning"].GetStringValue()),
	}, nil
}

// remoteWarning rebuilds a metadata warning so errors.Is still matches
// cipher.ErrInvalidMetadata on the client side.
func remoteWarning(w string) error {
	if w == "" {
		return nil
	}
	prefix := cipher.ErrInvalidMetadata.Error()
	rest := strings.TrimPrefix(strings.TrimPrefix(w, prefix), ": ")
	if rest == "" {
		return cipher.ErrInvalidMetadata
	}
	return fmt.Errorf("%w: %s", cipher.ErrInvalidMetadata, rest)
}
// #endregion decode

// #region recover
// Recover asks the service for a brute force recovery.
func (c *CodecClient) Recover(ctx context.Context, cipherText string, p cipher.ShiftPair) (cipher.Recovery, error) {
	in, err := structpb.NewStruct(map[string]any{
		"cipher_text": cipherText,
		"shift1":      p.Shift1,
		"shift2":      p.Shift2,
	})
	if err != nil {
		return cipher.Recovery{}, fmt.Errorf("recover request: %w", err)
	}
	resp, err := c.client.Recover(ctx, in)
	if err != nil {
		return cipher.Recovery{}, fmt.Errorf("recover rpc: %w", err)
	}
	amb, err := parseAmbiguities(resp.GetFields()["ambiguities"])
	if err != nil {
		return cipher.Recovery{}, fmt.Errorf("recover response: %w", err)
	}
	return cipher.Recovery{
		Text:        resp.GetFields()["text"].GetStringValue(),
		Ambiguities: amb,
	}, nil
}
// #endregion recover

// #region verify
// Verify asks the service to compare two texts.
func (c *CodecClient) Verify(ctx context.Context, original, recovered string) (verify.Outcome, error) {
	in, err := structpb.NewStruct(map[string]any{
		"original":  original,
		"recovered": recovered,
	})
	if err != nil {
		return verify.Outcome{}, fmt.Errorf("verify request: %w", err)
	}
	resp, err := c.client.Verify(ctx, in)
	if err != nil {
		return verify.Outcome{}, fmt.Errorf("verify rpc: %w", err)
	}
	f := resp.GetFields()
	if f == nil {
		return verify.Outcome{}, errors.New("verify response: empty")
	}
	return verify.Outcome{
		Match:     f["match"].GetBoolValue(),
		Position:  int(f["position"].GetNumberValue()),
		Line:      int(f["line"].GetNumberValue()),
		Column:    int(f["column"].GetNumberValue()),
		Want:      f["want"].GetStringValue(),
		Got:       f["got"].GetStringValue(),
		Diff:      f["diff"].GetStringValue(),
		Truncated: f["truncated"].GetBoolValue(),
	}, nil
}
// #endregion verify
