package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	e "github.com/gartstein/matchmaker/internal/matchmaker/errors"
	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// recommendationRequest is the body of GetRecommendations.
type recommendationRequest struct {
	UserProfile *models.UserProfile `json:"userProfile"`
	Limit       *int                `json:"limit,omitempty"`
}

// toStruct converts a JSON-tagged value into a Struct document.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

// fromStruct decodes a Struct document into a JSON-tagged value.
func fromStruct(s *structpb.Struct, v interface{}) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// stringField returns the string value of key, or "" when missing or not a string.
func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func (h *MatchHandler) respond(v interface{}) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

// mapServiceError maps domain errors to appropriate gRPC status codes.
func (h *MatchHandler) mapServiceError(err error) error {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, e.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, fmt.Sprintf("internal server error: %v", err))
	}
}
