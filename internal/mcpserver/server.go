// Package mcpserver exposes one device's ledger as MCP tools so an assistant
// can read the day's numbers and log water or weight.
package mcpserver

import (
	"kalorikollen/pkg/ledger"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const DefaultDeviceID = "local"

// New creates an MCP server with all ledger tools registered for deviceID.
func New(svc ledger.LedgerService, deviceID string, version string) *mcp.Server {
	if deviceID == "" {
		deviceID = DefaultDeviceID
	}
	lt := &LedgerTools{Ledger: svc, DeviceID: deviceID}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "kalorikollen",
		Version: version,
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "today_summary",
		Description: "Today's calories, macros, water and goal progress, plus BMI and the current streak",
	}, lt.TodaySummary)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "weekly_stats",
		Description: "Calories and meal count over the last seven days, with the average per active day",
	}, lt.WeeklyStats)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "streak",
		Description: "Number of consecutive days, ending today, with at least one logged meal, and the badges earned",
	}, lt.Streak)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "add_water",
		Description: "Log a drink of water in milliliters",
	}, lt.AddWater)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "add_weight",
		Description: "Log a body weight reading in kilograms",
	}, lt.AddWeight)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "export_data",
		Description: "Export the whole ledger as the JSON backup document",
	}, lt.ExportData)

	return srv
}
