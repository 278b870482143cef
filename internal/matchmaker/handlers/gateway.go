package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var jsonMarshaler = &runtime.JSONPb{
	MarshalOptions:   protojson.MarshalOptions{EmitUnpopulated: true},
	UnmarshalOptions: protojson.UnmarshalOptions{DiscardUnknown: true},
}

// NewGatewayMux returns the HTTP API served by h.
func NewGatewayMux(h MatchServiceServer, logger *zap.Logger) (*runtime.ServeMux, error) {
	logger = logger.Named("http_gateway")
	mux := runtime.NewServeMux(
		runtime.WithMarshalerOption(runtime.MIMEWildcard, jsonMarshaler),
		runtime.WithErrorHandler(errorHandler),
	)

	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/api/health", route(mux, logger, h.Health, http.StatusOK, nil, noBody)},
		{http.MethodGet, "/api/companies", route(mux, logger, h.ListCompanies, http.StatusOK, field("companies"), industryQuery)},
		{http.MethodGet, "/api/companies/{id}", route(mux, logger, h.GetCompany, http.StatusOK, field("company"), pathParams)},
		{http.MethodGet, "/api/companies/industry/{industry}", route(mux, logger, h.ListCompanies, http.StatusOK, field("companies"), pathParams)},
		{http.MethodPost, "/api/companies", route(mux, logger, h.CreateCompany, http.StatusCreated, nil, jsonBody)},
		{http.MethodGet, "/api/industries", route(mux, logger, h.ListIndustries, http.StatusOK, field("industries"), noBody)},
		{http.MethodPost, "/api/recommendations", route(mux, logger, h.GetRecommendations, http.StatusOK, nil, jsonBody)},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.pattern, r.handler); err != nil {
			return nil, err
		}
	}
	return mux, nil
}

// requestReader builds the request document of a route.
type requestReader func(r *http.Request, params map[string]string) (*structpb.Struct, error)

// responseSelector picks the part of the response document that is written.
type responseSelector func(*structpb.Struct) *structpb.Value

func route(
	mux *runtime.ServeMux,
	logger *zap.Logger,
	call func(context.Context, *structpb.Struct) (*structpb.Struct, error),
	okStatus int,
	selector responseSelector,
	read requestReader,
) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		ctx := r.Context()
		_, outbound := runtime.MarshalerForRequest(mux, r)

		req, err := read(r, params)
		if err != nil {
			runtime.HTTPError(ctx, mux, outbound, w, r, err)
			return
		}
		resp, err := call(ctx, req)
		if err != nil {
			runtime.HTTPError(ctx, mux, outbound, w, r, err)
			return
		}

		var body interface{} = resp
		if selector != nil {
			body = selector(resp)
		}
		data, err := outbound.Marshal(body)
		if err != nil {
			runtime.HTTPError(ctx, mux, outbound, w, r, status.Error(codes.Internal, "failed to encode response"))
			return
		}
		w.Header().Set("Content-Type", outbound.ContentType(body))
		w.WriteHeader(okStatus)
		if _, err := w.Write(data); err != nil {
			logger.Warn("Failed to write response", zap.Error(err), zap.String("path", r.URL.Path))
		}
	}
}

func field(name string) responseSelector {
	return func(s *structpb.Struct) *structpb.Value {
		if v, ok := s.GetFields()[name]; ok {
			return v
		}
		return structpb.NewNullValue()
	}
}

func noBody(*http.Request, map[string]string) (*structpb.Struct, error) {
	return &structpb.Struct{}, nil
}

func pathParams(_ *http.Request, params map[string]string) (*structpb.Struct, error) {
	fields := make(map[string]interface{}, len(params))
	for k, v := range params {
		fields[k] = v
	}
	return structpb.NewStruct(fields)
}

func industryQuery(r *http.Request, _ map[string]string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{"industry": r.URL.Query().Get("industry")})
}

// jsonBody reads a JSON object body. An empty body is an empty document.
func jsonBody(r *http.Request, _ map[string]string) (*structpb.Struct, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "failed to read body: %v", err)
	}
	out := &structpb.Struct{}
	if len(data) == 0 {
		return out, nil
	}
	if err := jsonMarshaler.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid JSON body: %v", err)
	}
	return out, nil
}

// errorHandler writes errors as {"error": message} with the HTTP status of
// the gRPC code.
func errorHandler(_ context.Context, _ *runtime.ServeMux, _ runtime.Marshaler, w http.ResponseWriter, _ *http.Request, err error) {
	st := status.Convert(err)
	body, merr := structpb.NewStruct(map[string]interface{}{"error": st.Message()})
	if merr != nil {
		http.Error(w, st.Message(), runtime.HTTPStatusFromCode(st.Code()))
		return
	}
	data, merr := jsonMarshaler.Marshal(body)
	if merr != nil {
		http.Error(w, st.Message(), runtime.HTTPStatusFromCode(st.Code()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(runtime.HTTPStatusFromCode(st.Code()))
	_, _ = w.Write(data)
}
