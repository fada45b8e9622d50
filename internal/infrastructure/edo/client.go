// Package edo is the HTTP adapter for the remote EDO service. It is a
// thin wrapper: it maps transport and envelope errors onto domain
// error kinds and never retries.
package edo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
	"github.com/mycent-kz/edo-orchestrator/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	exec       *resilience.Executor
}

type Option func(*Client)

// WithToken sets the service-to-service bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func WithExecutor(exec *resilience.Executor) Option {
	return func(c *Client) {
		c.exec = exec
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// documentEnvelope is the remote response wrapper. A forbidden
// document comes back with a 200 status and error_code 403 in the
// envelope, so both places are checked.
type documentEnvelope struct {
	Data      *domain.Document `json:"data"`
	ErrorCode int              `json:"error_code"`
}

func (c *Client) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	var envelope documentEnvelope
	err := c.execute(ctx, "edo.get_document", func(ctx context.Context) error {
		return c.getJSON(ctx, fmt.Sprintf("/api/edo/document/%d", id), &envelope)
	})
	if err != nil {
		return nil, err
	}
	if envelope.ErrorCode == http.StatusForbidden {
		return nil, domain.WrapError(domain.ErrAccessDenied, "get document", fmt.Errorf("document %d is forbidden", id))
	}
	if envelope.Data == nil {
		return nil, domain.WrapError(domain.ErrRemote, "get document", fmt.Errorf("empty payload for document %d", id))
	}
	return envelope.Data, nil
}

func (c *Client) GetSettings(ctx context.Context, classID int64) (*domain.Settings, error) {
	var envelope struct {
		Data *domain.Settings `json:"data"`
	}
	err := c.execute(ctx, "edo.get_settings", func(ctx context.Context) error {
		query := url.Values{"id": []string{fmt.Sprintf("%d", classID)}}
		return c.getJSON(ctx, "/api/edo/settings?"+query.Encode(), &envelope)
	})
	if err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, domain.WrapError(domain.ErrRemote, "get settings", fmt.Errorf("empty payload for class %d", classID))
	}
	return envelope.Data, nil
}

func (c *Client) GetSurveyData(ctx context.Context, documentID int64) ([]domain.SurveyEntry, error) {
	var envelope struct {
		Data []domain.SurveyEntry `json:"data"`
	}
	err := c.execute(ctx, "edo.get_survey", func(ctx context.Context) error {
		return c.getJSON(ctx, fmt.Sprintf("/api/edo/survey/%d", documentID), &envelope)
	})
	if err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func (c *Client) AddDocument(ctx context.Context, draft domain.DocumentDraft) (*domain.Document, error) {
	var doc domain.Document
	err := c.execute(ctx, "edo.add_document", func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/edo/document", draft, &doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) AddAttributes(ctx context.Context, rows []domain.AttributeValue) ([]domain.AttributeValue, error) {
	var envelope struct {
		Data []domain.AttributeValue `json:"data"`
	}
	err := c.execute(ctx, "edo.add_attribute", func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/edo/attribute", rows, &envelope)
	})
	if err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func (c *Client) AddTabular(ctx context.Context, cells []domain.TabularCell) ([]domain.AssignedRowID, error) {
	// The bulk save answers with row ids grouped the way the rows were
	// grouped on screen; the grouping carries no meaning here.
	var envelope struct {
		Data [][]domain.AssignedRowID `json:"data"`
	}
	err := c.execute(ctx, "edo.add_tabular", func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/edo/tabular", cells, &envelope)
	})
	if err != nil {
		return nil, err
	}
	var flat []domain.AssignedRowID
	for _, group := range envelope.Data {
		flat = append(flat, group...)
	}
	return flat, nil
}

func (c *Client) AddRemark(ctx context.Context, documentID int64, remark, remark2 string) error {
	payload := map[string]any{
		"document_id": documentID,
		"remark":      remark,
		"remark2":     remark2,
	}
	return c.execute(ctx, "edo.add_remark", func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/edo/remark", payload, nil)
	})
}

func (c *Client) UpdateDocumentForm(ctx context.Context, documentID int64, values domain.FieldValues) error {
	payload := map[string]any{
		"document_id": documentID,
		"data":        values,
	}
	return c.execute(ctx, "edo.update_document_form", func(ctx context.Context) error {
		return c.postJSON(ctx, fmt.Sprintf("/api/edo/document/%d/form", documentID), payload, nil)
	})
}

func (c *Client) ResendToKias(ctx context.Context, documentID int64) (bool, error) {
	var response struct {
		Success bool `json:"success"`
	}
	err := c.execute(ctx, "edo.resend_kias", func(ctx context.Context) error {
		return c.postJSON(ctx, fmt.Sprintf("/api/edo/document/%d/resend-kias", documentID), nil, &response)
	})
	if err != nil {
		return false, err
	}
	return response.Success, nil
}

func (c *Client) GetPrintForm(ctx context.Context, documentID int64, documentType string) ([]byte, error) {
	var data []byte
	err := c.execute(ctx, "edo.get_print_form", func(ctx context.Context) error {
		var err error
		query := url.Values{"type": []string{documentType}}
		data, err = c.getBinary(ctx, fmt.Sprintf("/api/edo/document/%d/print-form?%s", documentID, query.Encode()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// execute routes the call through the circuit breaker. Only genuine
// remote failures count against it; business rejections pass through
// without recording a failure.
func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.exec == nil {
		return fn(ctx)
	}
	return c.exec.Execute(ctx, operation, fn, func(err error) bool {
		return domain.IsKind(err, domain.ErrRemote)
	})
}
