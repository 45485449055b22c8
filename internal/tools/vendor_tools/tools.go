package vendor_tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/server"
	"github.com/teemow/agentdesk/internal/teleperson"
	"github.com/teemow/agentdesk/internal/tools/batch"
	"github.com/teemow/agentdesk/internal/tools/common"
	"github.com/teemow/agentdesk/internal/validation"
)

// vendorBatchWidth bounds concurrent vendor lookups of one call.
const vendorBatchWidth = 3

var errNotConfigured = errors.New("the vendor toolset is not configured")

func getClient(sc *server.ServerContext) (*teleperson.Client, error) {
	client := sc.TelepersonClient()
	if client == nil {
		return nil, errNotConfigured
	}
	return client, nil
}

// RegisterVendorTools registers the vendor tools with the MCP server.
func RegisterVendorTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listVendorsTool := mcp.NewTool("vendor_list_user_vendors",
		mcp.WithDescription("Retrieve a list of vendors and their descriptions from the user's vendor hub or vendor lounge"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("The user's email"),
		),
		mcp.WithString("scope",
			mcp.Description("Which vendors to list: 'hub' (default), 'lounge' or 'all'"),
			mcp.Enum(string(teleperson.ScopeHub), string(teleperson.ScopeLounge), string(teleperson.ScopeAll)),
		),
	)

	s.AddTool(listVendorsTool, common.InstrumentedToolHandlerWithService("vendor_list_user_vendors",
		instrumentation.ServiceTeleperson, instrumentation.OperationVendors, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListUserVendors(ctx, request, sc)
		}))

	transactionsTool := mcp.NewTool("vendor_get_transactions",
		mcp.WithDescription("Get a list of the user's recent transactions"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("The user's email"),
		),
	)

	s.AddTool(transactionsTool, common.InstrumentedToolHandlerWithService("vendor_get_transactions",
		instrumentation.ServiceTeleperson, instrumentation.OperationTransactions, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetTransactions(ctx, request, sc)
		}))

	getVendorTool := mcp.NewTool("vendor_get",
		mcp.WithDescription("Get the full record of one or more vendors"),
		mcp.WithString("vendorId",
			mcp.Required(),
			mcp.Description("Vendor ID, or a JSON array of up to 10 vendor IDs"),
		),
	)

	s.AddTool(getVendorTool, common.InstrumentedToolHandlerWithService("vendor_get",
		instrumentation.ServiceTeleperson, instrumentation.OperationVendors, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetVendor(ctx, request, sc)
		}))

	return nil
}

func handleListUserVendors(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	const action = "listing vendors"
	args := request.GetArguments()

	email, err := validation.Email("email", common.StringArg(args, "email"))
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}
	scope, err := teleperson.ParseScope(strings.ToLower(common.StringArg(args, "scope")))
	if err != nil {
		return common.ErrorResult(ctx, action, &validation.ValidationError{Field: "scope", Reason: err.Error()}), nil
	}

	client, err := getClient(sc)
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	vendors, err := client.VendorsByEmail(ctx, email, scope)
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}
	if vendors.Count() == 0 {
		common.MarkNotFound(ctx)
	}

	return mcp.NewToolResultText(formatVendors(scope, vendors)), nil
}

// formatVendors renders the vendor lists as indented JSON inside tags, one
// tag per collection in scope.
func formatVendors(scope teleperson.Scope, vendors *teleperson.Vendors) string {
	switch scope {
	case teleperson.ScopeLounge:
		return fmt.Sprintf("The user has %d vendors in their vendor lounge. Vendors are below:\n<vendors>\n%s\n</vendors>",
			len(vendors.Lounge), indentJSON(vendors.Lounge))
	case teleperson.ScopeAll:
		return fmt.Sprintf("The user has %d vendors in their vendor hub and %d in their vendor lounge. Vendors are below:\n"+
			"<hub>\n%s\n</hub>\n<lounge>\n%s\n</lounge>",
			len(vendors.Hub), len(vendors.Lounge), indentJSON(vendors.Hub), indentJSON(vendors.Lounge))
	default:
		return fmt.Sprintf("The user has %d vendors in their vendor hub. Vendors are below:\n<vendors>\n%s\n</vendors>",
			len(vendors.Hub), indentJSON(vendors.Hub))
	}
}

func handleGetTransactions(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	const action = "fetching transactions"
	args := request.GetArguments()

	email, err := validation.Email("email", common.StringArg(args, "email"))
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	client, err := getClient(sc)
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	transactions, err := client.TransactionsByEmail(ctx, email)
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("<transactions>\n%s\n</transactions>", indentRaw(transactions))), nil
}

func handleGetVendor(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	const action = "fetching vendor"
	args := request.GetArguments()

	ids, err := batch.ParseStringOrArray(args["vendorId"], "vendorId")
	if err != nil {
		return common.ErrorResult(ctx, action, &validation.ValidationError{Field: "vendorId", Reason: err.Error()}), nil
	}

	client, err := getClient(sc)
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	if len(ids) == 1 {
		vendor, err := client.VendorByID(ctx, sc.TelepersonUsername(), ids[0])
		if err != nil {
			return common.ErrorResult(ctx, action, err), nil
		}
		return mcp.NewToolResultText(indentRaw(vendor)), nil
	}

	session, err := client.Login(ctx, sc.TelepersonUsername())
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}
	results := batch.ProcessBatch(ctx, ids, vendorBatchWidth, session.Vendor)
	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

// indentRaw indents a JSON payload, returning it unchanged when it is not
// valid JSON.
func indentRaw(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return string(raw)
	}
	return buf.String()
}
