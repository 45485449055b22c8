package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/agentdesk/internal/cal"
	"github.com/teemow/agentdesk/internal/upstream"
)

func newFakeCalServer(t *testing.T) *httptest.Server {
	t.Helper()
	responses := map[string]string{
		"/me":        `{"status":"success","data":{"id":1,"email":"owner@example.com","timeZone":"America/Denver","defaultScheduleId":7}}`,
		"/schedules": `{"status":"success","data":[{"id":7,"timeZone":"America/Denver","isDefault":true,"availability":[{"days":["Monday","Tuesday","Wednesday","Thursday","Friday"],"startTime":"09:00","endTime":"15:00"}]}]}`,
		"/calendars": `{"status":"success","data":{"connectedCalendars":[{"credentialId":55,"primary":{"externalId":"owner@example.com","credentialId":55}}]}}`,
		"/calendars/busy-times": `{"status":"success","data":[
			{"start":"2025-05-29T15:00:00.000Z","end":"2025-05-29T15:30:00.000Z"}]}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, ok := responses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunCheckAvailability(t *testing.T) {
	srv := newFakeCalServer(t)
	client := cal.NewClient("cal_live_test", upstream.Config{BaseURL: srv.URL})

	tests := []struct {
		name     string
		date     string
		timeZone string
		contains []string
	}{
		{
			name:     "owner time zone",
			date:     "2025-05-29",
			contains: []string{"Available hours: 9:00 AM - 3:00 PM (America/Denver)", "9:00 AM - 9:30 AM"},
		},
		{
			name:     "viewer time zone",
			date:     "2025-05-29",
			timeZone: "America/Chicago",
			contains: []string{"Available hours: 10:00 AM - 4:00 PM (America/Chicago)", "10:00 AM - 10:30 AM"},
		},
		{
			name:     "no working window",
			date:     "2025-05-31",
			contains: []string{"Saturday"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, runCheckAvailability(context.Background(), client, &out, tt.date, tt.timeZone))
			for _, want := range tt.contains {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRunCheckAvailability_InvalidInput(t *testing.T) {
	srv := newFakeCalServer(t)
	client := cal.NewClient("cal_live_test", upstream.Config{BaseURL: srv.URL})

	tests := []struct {
		name     string
		date     string
		timeZone string
		errMsg   string
	}{
		{name: "bad date", date: "29/05/2025", errMsg: "date"},
		{name: "bad zone", date: "2025-05-29", timeZone: "Mars/Olympus", errMsg: "tz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runCheckAvailability(context.Background(), client, &out, tt.date, tt.timeZone)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Empty(t, out.String())
		})
	}
}
