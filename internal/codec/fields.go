package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/splitshift/internal/cipher"
)

// #region request-fields

// maxExactInt is the largest integer a float64 number value holds exactly.
const maxExactInt = 1 << 53

func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "missing field %q", name)
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "field %q must be a string", name)
	}
	return str.StringValue, nil
}

func intField(s *structpb.Struct, name string) (int, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "missing field %q", name)
	}
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "field %q must be a number", name)
	}
	f := num.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > maxExactInt {
		return 0, status.Errorf(codes.InvalidArgument, "field %q must be an integer, got %v", name, f)
	}
	return int(f), nil
}

func shiftPair(s *structpb.Struct) (cipher.ShiftPair, error) {
	s1, err := intField(s, "shift1")
	if err != nil {
		return cipher.ShiftPair{}, err
	}
	s2, err := intField(s, "shift2")
	if err != nil {
		return cipher.ShiftPair{}, err
	}
	return cipher.ShiftPair{Shift1: s1, Shift2: s2}, nil
}

// metadataField reads the optional "metadata" list. Problems are returned as
// metadata errors, never as RPC errors, so the caller can fall back.
func metadataField(s *structpb.Struct) (cipher.Metadata, error) {
	v, ok := s.GetFields()["metadata"]
	if !ok {
		return nil, fmt.Errorf("%w: not supplied", cipher.ErrInvalidMetadata)
	}
	data, err := json.Marshal(v.AsInterface())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cipher.ErrInvalidMetadata, err)
	}
	return cipher.ParseMetadata(data)
}

// #endregion request-fields

// #region response-values

func metadataValue(meta cipher.Metadata) []any {
	out := make([]any, len(meta))
	for i, k := range meta {
		out[i] = k.String()
	}
	return out
}

func ambiguityValues(amb []cipher.Ambiguity) []any {
	out := make([]any, len(amb))
	for i, a := range amb {
		cands := make([]any, len(a.Candidates))
		for j, c := range a.Candidates {
			cands[j] = string(c)
		}
		out[i] = map[string]any{
			"position":   a.Position,
			"cipher":     string(a.Cipher),
			"candidates": cands,
		}
	}
	return out
}

func parseAmbiguities(v *structpb.Value) ([]cipher.Ambiguity, error) {
	list := v.GetListValue().GetValues()
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]cipher.Ambiguity, len(list))
	for i, item := range list {
		fields := item.GetStructValue()
		if fields == nil {
			return nil, fmt.Errorf("ambiguity %d: not an object", i)
		}
		pos, err := intField(fields, "position")
		if err != nil {
			return nil, fmt.Errorf("ambiguity %d: %w", i, err)
		}
		c, err := stringField(fields, "cipher")
		if err != nil {
			return nil, fmt.Errorf("ambiguity %d: %w", i, err)
		}
		r, _ := utf8.DecodeRuneInString(c)
		a := cipher.Ambiguity{Position: pos, Cipher: r}
		for _, cv := range fields.GetFields()["candidates"].GetListValue().GetValues() {
			cr, _ := utf8.DecodeRuneInString(cv.GetStringValue())
			a.Candidates = append(a.Candidates, cr)
		}
		out[i] = a
	}
	return out, nil
}

// #endregion response-values
