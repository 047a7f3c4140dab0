package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/mirrorops/storesync-worker/internal/models"
	"github.com/mirrorops/storesync-worker/internal/service"
)

const defaultTimeout = 30 * time.Second

// Client talks to a shop's admin GraphQL endpoint. It implements
// service.StorefrontClient: every fetch returns one page of mirrored
// entities plus a continuation cursor.
type Client struct {
	httpClient *http.Client
	// overrides the https://<domain> endpoint derivation, used in tests
	baseURL string
}

func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: defaultTimeout}}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// execute posts one GraphQL query to the shop's endpoint, authenticated with
// the shop's access token, and unmarshals the data payload into out
func (c *Client) execute(ctx context.Context, shop *models.Shop, query string, variables map[string]interface{}, out interface{}) error {
	if shop.AccessToken == nil || *shop.AccessToken == "" {
		return service.ErrNoCredential
	}

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	endpoint := c.baseURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s/admin/graphql", shop.Domain)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Authenticate with the shop's token over the shared bounded-timeout client
	token := &oauth2.Token{AccessToken: *shop.AccessToken, TokenType: "Bearer"}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: API returned status %d", service.ErrNoCredential, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("GraphQL error: %s", envelope.Errors[0].Message)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode data payload: %w", err)
	}

	return nil
}

// buildVariables assembles the shared pagination and filter variables
func buildVariables(filter service.FeedFilter, cursor string, pageSize int) map[string]interface{} {
	variables := map[string]interface{}{
		"first": pageSize,
	}
	if cursor != "" {
		variables["after"] = cursor
	}
	if filter.UpdatedAfter != nil {
		variables["updatedAfter"] = filter.UpdatedAfter.UTC().Format(time.RFC3339)
	}
	return variables
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
