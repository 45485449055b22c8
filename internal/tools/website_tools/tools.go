package website_tools

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/server"
	"github.com/teemow/agentdesk/internal/tools/common"
	"github.com/teemow/agentdesk/internal/website"
)

var errNotConfigured = errors.New("the website toolset is not configured")

// RegisterWebsiteTools registers website_contextualize.
func RegisterWebsiteTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	contextualizeTool := mcp.NewTool("website_contextualize",
		mcp.WithDescription("Request the user's email address to scrape their domain and personalize the conversation"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("The user's email address (must be a business email)"),
		),
	)

	s.AddTool(contextualizeTool, common.InstrumentedToolHandlerWithService("website_contextualize",
		instrumentation.ServiceReader, instrumentation.OperationFetchSite, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleContextualize(ctx, request, sc)
		}))

	return nil
}

func handleContextualize(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	const action = "fetching website"
	args := request.GetArguments()

	reader := sc.Reader()
	if reader == nil {
		return common.ErrorResult(ctx, action, errNotConfigured), nil
	}

	domain, err := website.DomainFromEmail(common.StringArg(args, "email"))
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	text, err := reader.Fetch(ctx, domain)
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}
	if strings.TrimSpace(text) == "" {
		common.MarkNotFound(ctx)
		return mcp.NewToolResultText("The website of " + domain + " returned no readable content."), nil
	}

	return mcp.NewToolResultText(text), nil
}
