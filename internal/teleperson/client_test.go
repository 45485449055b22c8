package teleperson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/agentdesk/internal/upstream"
	"github.com/teemow/agentdesk/internal/validation"
)

// fakeAPI is a Teleperson stand-in. loungeTotal vendors are spread over
// pages of 50.
type fakeAPI struct {
	t            *testing.T
	loungeTotal  int
	loungeCalls  atomic.Int32
	logins       atomic.Int32
	failLounge   bool
	transactions string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/auth/login" {
		f.logins.Add(1)
		var body map[string]string
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		if body["username"] == "" {
			http.Error(w, `{"message":"username missing"}`, http.StatusBadRequest)
			return
		}
		_, _ = fmt.Fprintf(w, `{"access_token":"tok-%s"}`, body["username"])
		return
	}

	if got := r.Header.Get("x-api-key"); got != "Bearer svc-key" {
		http.Error(w, `{"message":"bad api key"}`, http.StatusForbidden)
		return
	}
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok-") {
		http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	switch {
	case r.URL.Path == "/users/jane@example.com":
		_, _ = w.Write([]byte(`{"id":42,"email":"jane@example.com"}`))
	case r.URL.Path == "/users/nobody@example.com":
		http.Error(w, `{"message":"User not found"}`, http.StatusNotFound)
	case r.URL.Path == "/vendors/top/42":
		_, _ = w.Write([]byte(`{"data":[
			{"id":1,"companyName":"Acme","companyOverview":"Anvils"},
			{"id":2,"companyName":"","companyOverview":"ghost"},
			{"id":"3","companyName":"Globex","companyOverview":"Everything"}]}`))
	case r.URL.Path == "/vendors/removed/42":
		f.loungeCalls.Add(1)
		if f.failLounge {
			http.Error(w, `{"message":"lounge down"}`, http.StatusBadGateway)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(loungePage(page, f.loungeTotal)))
	case r.URL.Path == "/vendors/7":
		_, _ = w.Write([]byte(`{"id":7,"companyName":"Initech"}`))
	case r.URL.Path == "/transactions":
		if r.URL.Query().Get("userId") != "42" {
			http.Error(w, `{"message":"wrong user"}`, http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(f.transactions))
	default:
		http.NotFound(w, r)
	}
}

func loungePage(page, total int) string {
	var items []string
	for i := (page - 1) * 50; i < page*50 && i < total; i++ {
		items = append(items, fmt.Sprintf(`{"id":%d,"companyName":"Lounge %d","companyOverview":"d%d"}`, 1000+i, i, i))
	}
	return `{"data":[` + strings.Join(items, ",") + `]}`
}

func newTestClient(t *testing.T, f *fakeAPI) *Client {
	f.t = t
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewClient("svc-key", upstream.Config{BaseURL: srv.URL})
}

func TestVendorsByEmail_Hub(t *testing.T) {
	f := &fakeAPI{}
	c := newTestClient(t, f)

	vendors, err := c.VendorsByEmail(context.Background(), "jane@example.com", ScopeHub)
	require.NoError(t, err)
	assert.Equal(t, []VendorSummary{
		{Name: "Acme", Description: "Anvils"},
		{Name: "Globex", Description: "Everything"},
	}, vendors.Hub)
	assert.Nil(t, vendors.Lounge)
	assert.Equal(t, 2, vendors.Count())
	assert.Zero(t, f.loungeCalls.Load())
}

func TestVendorsByEmail_LoungePaging(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		wantCalls int32
	}{
		{name: "empty", total: 0, wantCalls: 3},
		{name: "partial first batch", total: 120, wantCalls: 3},
		{name: "exactly one full batch", total: 150, wantCalls: 6},
		{name: "two batches", total: 170, wantCalls: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeAPI{loungeTotal: tt.total}
			c := newTestClient(t, f)

			vendors, err := c.VendorsByEmail(context.Background(), "jane@example.com", ScopeLounge)
			require.NoError(t, err)
			assert.Len(t, vendors.Lounge, tt.total)
			assert.Equal(t, tt.wantCalls, f.loungeCalls.Load())
			if tt.total > 0 {
				assert.Equal(t, "Lounge 0", vendors.Lounge[0].Name)
				assert.Equal(t, fmt.Sprintf("Lounge %d", tt.total-1), vendors.Lounge[tt.total-1].Name)
			}
		})
	}
}

func TestVendorsByEmail_All(t *testing.T) {
	f := &fakeAPI{loungeTotal: 5}
	c := newTestClient(t, f)

	vendors, err := c.VendorsByEmail(context.Background(), "jane@example.com", ScopeAll)
	require.NoError(t, err)
	assert.Len(t, vendors.Hub, 2)
	assert.Len(t, vendors.Lounge, 5)
	assert.Equal(t, 7, vendors.Count())
}

func TestVendorsByEmail_LoungeFailureFailsAll(t *testing.T) {
	f := &fakeAPI{failLounge: true}
	c := newTestClient(t, f)

	_, err := c.VendorsByEmail(context.Background(), "jane@example.com", ScopeAll)
	var upErr *upstream.Error
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusBadGateway, upErr.StatusCode)
	assert.Contains(t, err.Error(), "lounge down")
}

func TestVendorsByEmail_UnknownUser(t *testing.T) {
	f := &fakeAPI{}
	c := newTestClient(t, f)

	_, err := c.VendorsByEmail(context.Background(), "nobody@example.com", ScopeHub)
	var upErr *upstream.Error
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, "User not found", upErr.Message)
}

func TestVendorsByEmail_InvalidEmail(t *testing.T) {
	f := &fakeAPI{}
	c := newTestClient(t, f)

	_, err := c.VendorsByEmail(context.Background(), "not-an-email", ScopeHub)
	var vErr *validation.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Zero(t, f.logins.Load())
}

func TestTransactionsByEmail(t *testing.T) {
	f := &fakeAPI{transactions: `[{"id":"t1","amount":12.5}]`}
	c := newTestClient(t, f)

	raw, err := c.TransactionsByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"t1","amount":12.5}]`, string(raw))
	assert.Equal(t, int32(1), f.logins.Load())
}

func TestVendorByID(t *testing.T) {
	f := &fakeAPI{}
	c := newTestClient(t, f)

	raw, err := c.VendorByID(context.Background(), "svc-user", "7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"companyName":"Initech"}`, string(raw))

	_, err = c.VendorByID(context.Background(), "svc-user", " ")
	var vErr *validation.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestSessionUserVendors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_, _ = w.Write([]byte(`{"access_token":"abc"}`))
		case "/vendors/user/42":
			assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"data":[{"id":9,"companyName":"Hooli"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient("k", upstream.Config{BaseURL: srv.URL})
	session, err := c.Login(context.Background(), "jane@example.com")
	require.NoError(t, err)

	vendors, err := session.UserVendors(context.Background(), IDFromInt(42))
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, ID("9"), vendors[0].ID)
}

func TestLogin_MissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("k", upstream.Config{BaseURL: srv.URL})
	_, err := c.Login(context.Background(), "jane@example.com")
	var upErr *upstream.Error
	require.True(t, errors.As(err, &upErr))
}
