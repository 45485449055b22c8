package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/agentdesk/internal/cal"
	"github.com/teemow/agentdesk/internal/server"
	"github.com/teemow/agentdesk/internal/upstream"
)

var calResponses = map[string]string{
	"/me":          `{"status":"success","data":{"id":1,"email":"ryan@teleperson.com","username":"ryan","timeZone":"America/Denver","defaultScheduleId":7}}`,
	"/schedules":   `{"status":"success","data":[{"id":7,"name":"Working hours","timeZone":"America/Denver","isDefault":true,"availability":[{"days":["Monday"],"startTime":"09:00","endTime":"15:00"}]}]}`,
	"/event-types": `{"status":"success","data":[{"id":2485287,"title":"Discovery call","slug":"discovery","lengthInMinutes":30}]}`,
}

func newTestContext(t *testing.T, configured bool) *server.ServerContext {
	t.Helper()
	sc := server.NewServerContext(context.Background(), nil)
	t.Cleanup(func() { _ = sc.Shutdown() })
	if !configured {
		return sc
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := calResponses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	sc.SetCalClient(cal.NewClient("cal_live_test", upstream.Config{BaseURL: srv.URL}))
	return sc
}

func readRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{Params: mcp.ReadResourceParams{URI: uri}}
}

func decode(t *testing.T, contents []mcp.ResourceContents) map[string]interface{} {
	t.Helper()
	require.Len(t, contents, 1)
	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestHandleProfile(t *testing.T) {
	sc := newTestContext(t, true)

	contents, err := handleProfile(context.Background(), readRequest("calendar://profile"), sc)
	require.NoError(t, err)
	profile := decode(t, contents)
	assert.Equal(t, "America/Denver", profile["timeZone"])
	assert.Equal(t, "calendar://profile", contents[0].(*mcp.TextResourceContents).URI)
}

func TestHandleSchedule(t *testing.T) {
	sc := newTestContext(t, true)

	contents, err := handleSchedule(context.Background(), readRequest("calendar://schedule"), sc)
	require.NoError(t, err)
	schedule := decode(t, contents)
	assert.Equal(t, "Working hours", schedule["name"])
	assert.Len(t, schedule["availability"], 1)
}

func TestHandleEventTypes(t *testing.T) {
	sc := newTestContext(t, true)
	sc.SetEventTypeID(cal.EventTypeSales)

	contents, err := handleEventTypes(context.Background(), readRequest("calendar://event-types"), sc)
	require.NoError(t, err)
	out := decode(t, contents)
	assert.Equal(t, float64(cal.EventTypeSales), out["bookedEventTypeId"])
	assert.Len(t, out["eventTypes"], 1)
}

func TestHandlers_NotConfigured(t *testing.T) {
	sc := newTestContext(t, false)

	_, err := handleProfile(context.Background(), readRequest("calendar://profile"), sc)
	assert.ErrorIs(t, err, errNotConfigured)
	_, err = handleSchedule(context.Background(), readRequest("calendar://schedule"), sc)
	assert.ErrorIs(t, err, errNotConfigured)
	_, err = handleEventTypes(context.Background(), readRequest("calendar://event-types"), sc)
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestRegisterCalendarResources_ReadOverJSONRPC(t *testing.T) {
	sc := newTestContext(t, true)
	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithResourceCapabilities(false, false))
	require.NoError(t, RegisterCalendarResources(s, sc))

	resp := s.HandleMessage(context.Background(), []byte(
		`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"calendar://schedule"}}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Working hours")
	assert.NotContains(t, string(raw), `"error"`)
}
