package prisma

import (
	"context"
	"net/http"
	"net/url"

	"github.com/prismanotify/prismanotify/internal/query"
	"github.com/prismanotify/prismanotify/internal/types"
)

func (s *Session) authorized(ctx context.Context, method, path string, params url.Values, body, out any) error {
	if s.token == "" {
		return ErrNoToken
	}
	return s.client.do(ctx, method, path, params, s.token, body, out)
}

// ListAlerts returns the alerts matching q, in server order.
func (s *Session) ListAlerts(ctx context.Context, q query.Query) (*types.AlertList, error) {
	var list types.AlertList
	if err := s.authorized(ctx, http.MethodPost, "v2/alert", nil, q, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// AlertCountsByPolicy returns alert counts grouped by policy for q.
func (s *Session) AlertCountsByPolicy(ctx context.Context, q query.Query) ([]types.PolicyAlertCount, error) {
	var counts []types.PolicyAlertCount
	if err := s.authorized(ctx, http.MethodPost, "alert/policy", nil, q, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// ListPolicies returns the slim policy listing used for id -> name lookups.
func (s *Session) ListPolicies(ctx context.Context) ([]types.Policy, error) {
	params := url.Values{}
	params.Set("slimView", "true")
	params.Set("detailedComplianceMappings", "false")

	var policies []types.Policy
	if err := s.authorized(ctx, http.MethodGet, "v2/policy", params, nil, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}
