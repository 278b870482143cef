package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/gartstein/matchmaker/internal/matchmaker/catalog"
	"github.com/gartstein/matchmaker/internal/matchmaker/handlers"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// matchCaller is satisfied by *handlers.MatchClient.
type matchCaller interface {
	Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

var render = protojson.MarshalOptions{Multiline: true, Indent: "  ", EmitUnpopulated: true}

func registerTools(s *server.MCPServer, client matchCaller) {
	listTool := mcp.NewTool("list_companies",
		mcp.WithDescription("List catalog companies, optionally filtered by industry"),
	)
	listTool.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"industry": map[string]interface{}{"type": "string", "description": "Industry slug or name, e.g. fintech (optional)"},
		},
	}
	s.AddTool(listTool, listCompanies(client))

	getTool := mcp.NewTool("get_company",
		mcp.WithDescription("Fetch one company by id"),
	)
	getTool.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"id": map[string]interface{}{"type": "string", "description": "Company id, e.g. fintech-1"},
		},
		Required: []string{"id"},
	}
	s.AddTool(getTool, getCompany(client))

	s.AddTool(mcp.NewTool("list_industries",
		mcp.WithDescription("List industries with their company counts"),
	), forward(client, handlers.MethodListIndustries))

	recTool := mcp.NewTool("recommend_companies",
		mcp.WithDescription("Rank companies against a job seeker profile"),
	)
	recTool.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"interests": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Areas of interest, e.g. AI, payments",
			},
			"size":     map[string]interface{}{"type": "string", "description": "Preferred company size: startup, medium or large"},
			"culture":  map[string]interface{}{"type": "string", "description": "Most important culture value"},
			"benefits": map[string]interface{}{"type": "string", "description": "Most important benefit"},
			"location": map[string]interface{}{"type": "string", "description": "remote, hybrid or office"},
			"limit":    map[string]interface{}{"type": "integer", "description": "Max results (default 8)"},
		},
	}
	s.AddTool(recTool, recommend(client))

	s.AddTool(mcp.NewTool("health",
		mcp.WithDescription("Report matchmaker health and catalog size"),
	), forward(client, handlers.MethodHealth))
}

func arguments(request mcp.CallToolRequest) (map[string]interface{}, bool) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, true
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	return args, ok
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func forward(client matchCaller, method string) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return call(ctx, client, method, nil)
	}
}

func listCompanies(client matchCaller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := arguments(request)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		industry := stringArg(args, "industry")
		req, err := structpb.NewStruct(map[string]interface{}{"industry": industry})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := call(ctx, client, handlers.MethodListCompanies, req)
		if err == nil && res.IsError && industry != "" {
			return mcp.NewToolResultError(fmt.Sprintf("No %s companies found", catalog.DisplayName(industry))), nil
		}
		return res, err
	}
}

func getCompany(client matchCaller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := arguments(request)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		id := stringArg(args, "id")
		if id == "" {
			return mcp.NewToolResultError("id is required"), nil
		}
		req, err := structpb.NewStruct(map[string]interface{}{"id": id})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return call(ctx, client, handlers.MethodGetCompany, req)
	}
}

func recommend(client matchCaller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := arguments(request)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var interests []interface{}
		if list, ok := args["interests"].([]interface{}); ok {
			for _, item := range list {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					interests = append(interests, strings.TrimSpace(s))
				}
			}
		}
		profile := map[string]interface{}{
			"interests": interests,
			"companyPreferences": map[string]interface{}{
				"size":     stringArg(args, "size"),
				"culture":  stringArg(args, "culture"),
				"benefits": stringArg(args, "benefits"),
			},
			"workPreferences": map[string]interface{}{
				"location": stringArg(args, "location"),
			},
		}
		body := map[string]interface{}{"userProfile": profile}
		if v, ok := args["limit"].(float64); ok {
			body["limit"] = v
		}

		req, err := structpb.NewStruct(body)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return call(ctx, client, handlers.MethodGetRecommendations, req)
	}
}

// call forwards to the match service. Service errors become tool errors.
func call(ctx context.Context, client matchCaller, method string, req *structpb.Struct) (*mcp.CallToolResult, error) {
	resp, err := client.Call(ctx, method, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %s", method, status.Convert(err).Message())), nil
	}
	out, err := render.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}
