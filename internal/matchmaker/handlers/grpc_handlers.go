package handlers

import (
	"context"

	"github.com/gartstein/matchmaker/internal/matchmaker/auth"
	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// CompanyController defines the catalog operations the handlers invoke.
type CompanyController interface {
	ListCompanies(ctx context.Context, industry string) ([]models.Company, error)
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	CreateCompany(ctx context.Context, input *models.CompanyInput) (*models.Company, error)
	ListIndustries(ctx context.Context) []models.Industry
	Health(ctx context.Context) *models.Health
}

// RecommendationController produces recommendations for a profile.
type RecommendationController interface {
	Recommend(ctx context.Context, profile *models.UserProfile, limit *int) (*models.RecommendationResult, error)
}

// MatchHandler implements MatchServiceServer on top of the controllers.
type MatchHandler struct {
	companies       CompanyController
	recommendations RecommendationController
	limiter         *rate.Limiter
	logger          *zap.Logger
}

// NewMatchHandler constructs a MatchHandler. limiter bounds the rate of
// recommendation requests; nil means unlimited.
func NewMatchHandler(companies CompanyController, recommendations RecommendationController, limiter *rate.Limiter, logger *zap.Logger) *MatchHandler {
	return &MatchHandler{
		companies:       companies,
		recommendations: recommendations,
		limiter:         limiter,
		logger:          logger.Named("grpc_handler"),
	}
}

// ListCompanies returns {"companies": [...]}, filtered by the optional
// "industry" field.
func (h *MatchHandler) ListCompanies(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	companies, err := h.companies.ListCompanies(ctx, stringField(req, "industry"))
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return h.respond(map[string]interface{}{"companies": companies})
}

// GetCompany returns {"company": {...}} for the "id" field.
func (h *MatchHandler) GetCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "company id required")
	}
	company, err := h.companies.GetCompany(ctx, id)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return h.respond(map[string]interface{}{"company": company})
}

// CreateCompany takes the company fields as the request document.
func (h *MatchHandler) CreateCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if len(req.GetFields()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "company data required")
	}
	var input models.CompanyInput
	if err := fromStruct(req, &input); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid company data: %v", err)
	}

	created, err := h.companies.CreateCompany(ctx, &input)
	if err != nil {
		h.logger.Error("Create company failed", zap.Error(err))
		return nil, h.mapServiceError(err)
	}

	fields := []zap.Field{zap.String("company_id", created.ID)}
	if sub, ok := auth.Subject(ctx); ok {
		fields = append(fields, zap.String("created_by", sub))
	}
	h.logger.Info("Company created", fields...)

	return h.respond(map[string]interface{}{
		"message": "Company created successfully",
		"company": created,
	})
}

// ListIndustries returns {"industries": [...]}.
func (h *MatchHandler) ListIndustries(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return h.respond(map[string]interface{}{"industries": h.companies.ListIndustries(ctx)})
}

// GetRecommendations takes {"userProfile": {...}, "limit": n}.
func (h *MatchHandler) GetRecommendations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if h.limiter != nil && !h.limiter.Allow() {
		return nil, status.Error(codes.ResourceExhausted, "too many recommendation requests")
	}

	var body recommendationRequest
	if err := fromStruct(req, &body); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if body.UserProfile == nil {
		return nil, status.Error(codes.InvalidArgument, "User profile is required")
	}

	result, err := h.recommendations.Recommend(ctx, body.UserProfile, body.Limit)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return h.respond(result)
}

func (h *MatchHandler) Health(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return h.respond(h.companies.Health(ctx))
}
