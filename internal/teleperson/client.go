package teleperson

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/paginate"
	"github.com/teemow/agentdesk/internal/upstream"
	"github.com/teemow/agentdesk/internal/validation"
)

// DefaultBaseURL is the Teleperson integration API root.
const DefaultBaseURL = "https://intapi.teleperson.com"

// Lounge paging: 50 vendors per page, three pages per batch.
const (
	loungePageSize   = 50
	loungeBatchWidth = 3
	loungeMaxPages   = 60
)

// Client talks to the Teleperson API with a service API key.
type Client struct {
	api *upstream.Client
}

// NewClient returns a client sending apiKey as x-api-key. An empty
// base.BaseURL means DefaultBaseURL.
func NewClient(apiKey string, base upstream.Config) *Client {
	base.Service = instrumentation.ServiceTeleperson
	if base.BaseURL == "" {
		base.BaseURL = DefaultBaseURL
	}
	base.Headers = map[string]string{"x-api-key": "Bearer " + apiKey}
	return &Client{api: upstream.New(base)}
}

// Session is a logged-in call chain for one user.
type Session struct {
	api   *upstream.Client
	token string
}

// Login exchanges username for an access token.
func (c *Client) Login(ctx context.Context, username string) (*Session, error) {
	username, err := validation.Required("username", username)
	if err != nil {
		return nil, err
	}
	var resp loginResponse
	if err := c.api.PostJSON(ctx, instrumentation.OperationLogin, "/auth/login",
		map[string]string{"username": username}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &upstream.Error{Service: c.api.Service(), Op: instrumentation.OperationLogin,
			Message: "login response carried no access token"}
	}
	return &Session{api: c.api, token: resp.AccessToken}, nil
}

func (s *Session) get(ctx context.Context, op, path string, query url.Values, dest any) ([]byte, error) {
	return s.api.Do(ctx, upstream.Request{
		Op:     op,
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
		Header: http.Header{"Authorization": {"Bearer " + s.token}},
	}, dest)
}

// User looks a user up by email.
func (s *Session) User(ctx context.Context, email string) (*User, error) {
	var user User
	if _, err := s.get(ctx, instrumentation.OperationUser, "/users/"+url.PathEscape(email), nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, &upstream.Error{Service: s.api.Service(), Op: instrumentation.OperationUser,
			Message: "user " + email + " has no id"}
	}
	return &user, nil
}

// HubVendors returns the vendors of the user's vendor hub.
func (s *Session) HubVendors(ctx context.Context, userID ID) ([]Vendor, error) {
	var resp dataEnvelope[[]Vendor]
	if _, err := s.get(ctx, instrumentation.OperationVendors, "/vendors/top/"+userID.String(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// LoungeVendors returns every page of the user's vendor lounge.
func (s *Session) LoungeVendors(ctx context.Context, userID ID) ([]Vendor, error) {
	path := "/vendors/removed/" + userID.String()
	return paginate.FetchAll(ctx, paginate.Pages{
		PageSize:   loungePageSize,
		BatchWidth: loungeBatchWidth,
		MaxPages:   loungeMaxPages,
	}, func(ctx context.Context, page int) ([]Vendor, error) {
		var resp dataEnvelope[[]Vendor]
		query := url.Values{"page": {strconv.Itoa(page)}}
		if _, err := s.get(ctx, instrumentation.OperationVendors, path, query, &resp); err != nil {
			return nil, err
		}
		return resp.Data, nil
	})
}

// AllVendors fetches hub and lounge concurrently.
func (s *Session) AllVendors(ctx context.Context, userID ID) (hub, lounge []Vendor, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hub, err = s.HubVendors(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		lounge, err = s.LoungeVendors(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return hub, lounge, nil
}

// UserVendors returns every vendor assigned to the user.
func (s *Session) UserVendors(ctx context.Context, userID ID) ([]Vendor, error) {
	var resp dataEnvelope[[]Vendor]
	if _, err := s.get(ctx, instrumentation.OperationVendors, "/vendors/user/"+userID.String(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Vendor returns the raw vendor record.
func (s *Session) Vendor(ctx context.Context, id string) (json.RawMessage, error) {
	id, err := validation.Required("vendorId", id)
	if err != nil {
		return nil, err
	}
	body, err := s.get(ctx, instrumentation.OperationVendors, "/vendors/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Transactions returns the user's transactions as sent by the API.
func (s *Session) Transactions(ctx context.Context, userID ID) (json.RawMessage, error) {
	body, err := s.get(ctx, instrumentation.OperationTransactions, "/transactions",
		url.Values{"userId": {userID.String()}}, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// userSession logs in as email and resolves the user behind it.
func (c *Client) userSession(ctx context.Context, email string) (*Session, *User, error) {
	email, err := validation.Email("email", email)
	if err != nil {
		return nil, nil, err
	}
	session, err := c.Login(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	user, err := session.User(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// VendorsByEmail logs in as email and returns the vendors in scope with
// nameless vendors dropped.
func (c *Client) VendorsByEmail(ctx context.Context, email string, scope Scope) (*Vendors, error) {
	session, user, err := c.userSession(ctx, email)
	if err != nil {
		return nil, err
	}

	switch scope {
	case ScopeLounge:
		lounge, err := session.LoungeVendors(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return &Vendors{Lounge: Summarize(lounge)}, nil
	case ScopeAll:
		hub, lounge, err := session.AllVendors(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return &Vendors{Hub: Summarize(hub), Lounge: Summarize(lounge)}, nil
	default:
		hub, err := session.HubVendors(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return &Vendors{Hub: Summarize(hub)}, nil
	}
}

// TransactionsByEmail logs in as email and returns the user's transactions.
func (c *Client) TransactionsByEmail(ctx context.Context, email string) (json.RawMessage, error) {
	session, user, err := c.userSession(ctx, email)
	if err != nil {
		return nil, err
	}
	return session.Transactions(ctx, user.ID)
}

// VendorByID logs in as username and fetches one vendor record.
func (c *Client) VendorByID(ctx context.Context, username, id string) (json.RawMessage, error) {
	id, err := validation.Required("vendorId", id)
	if err != nil {
		return nil, err
	}
	session, err := c.Login(ctx, username)
	if err != nil {
		return nil, err
	}
	return session.Vendor(ctx, id)
}
