// Where: cli/internal/search/client.go
// What: HTTP client for the managed vector-search collection.
// Why: Map signed HEAD/PUT round trips to the provisioner's probe model.
package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ragkit/rag-demo/cli/internal/provision"
)

// Sender signs and sends a single HTTP request. Implementations never retry;
// retry policy belongs to the provisioner.
type Sender interface {
	Send(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client issues index operations against one collection endpoint.
type Client struct {
	Endpoint string
	Sender   Sender
}

// NewClient builds a collection client for the given HTTPS endpoint.
func NewClient(endpoint string, sender Sender) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("collection endpoint is required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid collection endpoint: %w", err)
	}
	if sender == nil {
		return nil, fmt.Errorf("request sender is required")
	}
	return &Client{Endpoint: endpoint, Sender: sender}, nil
}

// CheckIndex implements the lightweight existence check.
func (c *Client) CheckIndex(ctx context.Context, name string) (provision.Probe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.indexURL(name), nil)
	if err != nil {
		return provision.Probe{}, err
	}

	resp, err := c.Sender.Send(ctx, req)
	if err != nil {
		return provision.Probe{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return provision.Probe{State: provision.StateExists, HTTPStatus: resp.StatusCode}, nil
	case resp.StatusCode == http.StatusNotFound:
		return provision.Probe{State: provision.StateMissing, HTTPStatus: resp.StatusCode}, nil
	case denied(resp.StatusCode):
		return provision.Probe{State: provision.StateDenied, HTTPStatus: resp.StatusCode}, nil
	default:
		return provision.Probe{
			State:      provision.StateError,
			HTTPStatus: resp.StatusCode,
			Detail:     fmt.Sprintf("unexpected status %d on existence check", resp.StatusCode),
		}, nil
	}
}

// CreateIndex submits the full index mapping derived from the spec.
func (c *Client) CreateIndex(ctx context.Context, spec provision.IndexSpec) (provision.Probe, error) {
	body, err := MappingBody(spec)
	if err != nil {
		return provision.Probe{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.indexURL(spec.Name), bytes.NewReader(body))
	if err != nil {
		return provision.Probe{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Sender.Send(ctx, req)
	if err != nil {
		return provision.Probe{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return provision.Probe{State: provision.StateExists, HTTPStatus: resp.StatusCode}, nil
	case denied(resp.StatusCode):
		return provision.Probe{State: provision.StateDenied, HTTPStatus: resp.StatusCode}, nil
	default:
		return provision.Probe{
			State:      provision.StateError,
			HTTPStatus: resp.StatusCode,
			Detail:     errorDetail(resp),
		}, nil
	}
}

func (c *Client) indexURL(name string) string {
	return c.Endpoint + "/" + url.PathEscape(name)
}

func denied(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

const maxErrorBody = 2048

// errorDetail extracts a bounded slice of the error response for the attempt log.
func errorDetail(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}
