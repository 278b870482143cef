// Command matchmaker-mcp exposes the match service to MCP clients over stdio.
// It talks to a running matchmaker over gRPC.
package main

import (
	"os"

	"github.com/gartstein/matchmaker/internal/matchmaker/handlers"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	addrEnv     = "MATCHMAKER_GRPC_ADDR"
	defaultAddr = "localhost:50051"
)

func main() {
	// stdout carries the MCP protocol, so logs go to stderr.
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	addr := os.Getenv(addrEnv)
	if addr == "" {
		addr = defaultAddr
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Fatal("Failed to dial matchmaker", zap.String("addr", addr), zap.Error(err))
	}
	defer conn.Close()

	s := server.NewMCPServer("matchmaker", "1.0.0")
	registerTools(s, handlers.NewMatchClient(conn))

	logger.Info("MCP server ready", zap.String("matchmaker", addr))
	if err := server.ServeStdio(s); err != nil {
		logger.Error("Server error", zap.Error(err))
	}
}
