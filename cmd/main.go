package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kalorikollen/cmd/config"
	"kalorikollen/internal/mcpserver"
	"kalorikollen/internal/utils"

	"github.com/gofiber/fiber/v2/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const version = "1.0.0"

func main() {
	transport := flag.String("transport", "http", "Transport mode: http, mcp (stdio) or mcp-http")
	mcpPort := flag.String("mcp-port", "8081", "MCP HTTP port (only used with --transport mcp-http)")
	deviceID := flag.String("device", mcpserver.DefaultDeviceID, "Device whose ledger the MCP tools operate on")
	flag.Parse()

	utils.LoadConfig()
	if tz := utils.GetConfig("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("invalid TIMEZONE %q: %v", tz, err)
		}
		time.Local = loc
	}

	provider, closeStore := config.MustStore()
	defer closeStore()
	ledgerService := config.NewLedgerService(provider)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch *transport {
	case "http":
		app, err := config.NewApp(ledgerService)
		if err != nil {
			log.Fatalf("error creating app: %v", err)
		}
		go func() {
			<-ctx.Done()
			if err := app.Shutdown(); err != nil {
				log.Errorf("error shutting down: %v", err)
			}
		}()
		if err := app.Listen(":" + utils.GetConfig("APP_PORT")); err != nil {
			log.Fatalf("error starting server: %v", err)
		}
	case "mcp":
		// stdout carries the protocol, so logs go to stderr.
		log.SetOutput(os.Stderr)
		srv := mcpserver.New(ledgerService, *deviceID, version)
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			log.Fatalf("MCP server error: %v", err)
		}
	case "mcp-http":
		srv := mcpserver.New(ledgerService, *deviceID, version)
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			return srv
		}, nil)
		addr := ":" + *mcpPort
		log.Infof("KaloriKollen MCP server listening on %s", addr)
		if err := http.ListenAndServe(addr, handler); err != nil {
			log.Fatalf("MCP HTTP server error: %v", err)
		}
	default:
		log.Fatalf("unknown transport: %s (use http, mcp or mcp-http)", *transport)
	}
}
