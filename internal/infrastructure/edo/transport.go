package edo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
)

const errorBodyLimit = 4096

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return domain.WrapError(domain.ErrRemote, "create request", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return domain.WrapError(domain.ErrRemote, "marshal request", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return domain.WrapError(domain.ErrRemote, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getBinary(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRemote, "create request", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRemote, "edo request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, c.statusError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRemote, "read response", err)
	}
	return data, nil
}

func (c *Client) do(req *http.Request, out any) error {
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrRemote, "edo request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return c.statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.WrapError(domain.ErrRemote, "decode response", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// statusError maps remote status codes onto domain error kinds:
// 403 is an authorization denial, 422 carries per-field rejections,
// anything else is a generic remote failure.
func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))

	switch resp.StatusCode {
	case http.StatusForbidden:
		return domain.WrapError(domain.ErrAccessDenied, "edo request", fmt.Errorf("status %s", resp.Status))
	case http.StatusUnprocessableEntity:
		var fields domain.FieldErrors
		if err := json.Unmarshal(body, &fields); err == nil && len(fields) > 0 {
			return fields
		}
		return domain.WrapError(domain.ErrRemote, "edo request", fmt.Errorf("unreadable 422 payload: %s", trimBody(body)))
	}

	msg := trimBody(body)
	if msg == "" {
		return domain.WrapError(domain.ErrRemote, "edo request", fmt.Errorf("status %s", resp.Status))
	}
	return domain.WrapError(domain.ErrRemote, "edo request", fmt.Errorf("status %s: %s", resp.Status, msg))
}

func trimBody(body []byte) string {
	return strings.TrimSpace(string(body))
}
