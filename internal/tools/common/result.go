package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/agentdesk/internal/availability"
)

type outcomeKey struct{}

// outcome is shared between InstrumentedToolHandler and the handler it
// wraps, so a handler can report an expected empty answer.
type outcome struct {
	notFound bool
}

func withOutcome(ctx context.Context) (context.Context, *outcome) {
	o := &outcome{}
	return context.WithValue(ctx, outcomeKey{}, o), o
}

// MarkNotFound records that the call found nothing to return. It is a
// no-op outside an instrumented handler.
func MarkNotFound(ctx context.Context) {
	if o, ok := ctx.Value(outcomeKey{}).(*outcome); ok {
		o.notFound = true
	}
}

// ErrorResult turns err into a tool result. A *availability.NotFoundError
// is an expected answer and comes back as plain text; anything else is an
// error result reading "Error <action>: <err>".
func ErrorResult(ctx context.Context, action string, err error) *mcp.CallToolResult {
	var notFound *availability.NotFoundError
	if errors.As(err, &notFound) {
		MarkNotFound(ctx)
		return mcp.NewToolResultText(notFound.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("Error %s: %v", action, err))
}
