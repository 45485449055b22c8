package knowledge_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/agentdesk/internal/knowledge"
	"github.com/teemow/agentdesk/internal/server"
	"github.com/teemow/agentdesk/internal/tools/common"
)

var errNotConfigured = errors.New("the knowledge toolset is not configured")

// RegisterKnowledgeTools registers knowledge_get_information.
func RegisterKnowledgeTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getInformationTool := mcp.NewTool("knowledge_get_information",
		mcp.WithDescription("Retrieve detailed information from the knowledge base for vendor-specific queries"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The user's question"),
		),
		mcp.WithString("vendorName",
			mcp.Description(fmt.Sprintf("The name of the vendor the user is asking about (default: %s)", knowledge.DefaultVendor)),
		),
		mcp.WithBoolean("includeSources",
			mcp.Description("Append the source pages the answer was drawn from (default: false)"),
		),
	)

	s.AddTool(getInformationTool, common.InstrumentedToolHandler("knowledge_get_information", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetInformation(ctx, request, sc)
		}))

	return nil
}

func handleGetInformation(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	const action = "retrieving information"
	args := request.GetArguments()

	svc := sc.Knowledge()
	if svc == nil {
		return common.ErrorResult(ctx, action, errNotConfigured), nil
	}

	answer, err := svc.Answer(ctx, common.StringArg(args, "question"), common.StringArg(args, "vendorName"))
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}
	if !answer.Found() {
		common.MarkNotFound(ctx)
		return mcp.NewToolResultText(answer.Text()), nil
	}

	text := answer.Text()
	if includeSources, _ := args["includeSources"].(bool); includeSources && len(answer.Sources) > 0 {
		sources, _ := json.MarshalIndent(answer.Sources, "", "    ")
		text += fmt.Sprintf("\n\n<sources>\n%s\n</sources>", sources)
	}
	return mcp.NewToolResultText(text), nil
}
