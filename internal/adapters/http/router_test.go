package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
	"github.com/mycent-kz/edo-orchestrator/internal/core/usecase"
)

const testSecret = "test-secret"

type gatewayFake struct {
	doc            *domain.Document
	getDocumentErr error
	resendSuccess  bool
}

func (f *gatewayFake) GetDocument(context.Context, int64) (*domain.Document, error) {
	if f.getDocumentErr != nil {
		return nil, f.getDocumentErr
	}
	return f.doc, nil
}

func (f *gatewayFake) GetSettings(_ context.Context, classID int64) (*domain.Settings, error) {
	return &domain.Settings{ID: classID}, nil
}

func (f *gatewayFake) GetSurveyData(context.Context, int64) ([]domain.SurveyEntry, error) {
	return nil, nil
}

func (f *gatewayFake) AddDocument(_ context.Context, draft domain.DocumentDraft) (*domain.Document, error) {
	id := int64(42)
	return &domain.Document{ID: &id, DocumentID: "ЭДО-1001", Class: domain.DocumentClass{ID: draft.ClassID}}, nil
}

func (f *gatewayFake) AddAttributes(_ context.Context, rows []domain.AttributeValue) ([]domain.AttributeValue, error) {
	return rows, nil
}

func (f *gatewayFake) AddTabular(context.Context, []domain.TabularCell) ([]domain.AssignedRowID, error) {
	return nil, nil
}

func (f *gatewayFake) AddRemark(context.Context, int64, string, string) error { return nil }

func (f *gatewayFake) UpdateDocumentForm(context.Context, int64, domain.FieldValues) error {
	return nil
}

func (f *gatewayFake) ResendToKias(context.Context, int64) (bool, error) {
	return f.resendSuccess, nil
}

func (f *gatewayFake) GetPrintForm(context.Context, int64, string) ([]byte, error) {
	return []byte("not a pdf"), nil
}

func newTestServer(t *testing.T, gw *gatewayFake) (*httptest.Server, *usecase.SessionManager) {
	t.Helper()
	sessions := usecase.NewSessionManager()
	resolver := usecase.NewSettingsResolver(gw)
	loader := usecase.NewLoadDocumentUseCase(gw, resolver, nil)
	creator := usecase.NewCreateDocumentUseCase(gw, resolver, nil, nil)
	submitter := usecase.NewSubmitUseCase(gw, nil, nil, nil, nil)
	resender := usecase.NewResendUseCase(gw, nil, nil, nil)
	printer := usecase.NewPrintFormUseCase(gw, nil)

	router := NewRouter(sessions, loader, creator, submitter, resender, printer, nil, Options{
		JWTSecret: testSecret,
	})
	server := httptest.NewServer(router.Handler())
	t.Cleanup(server.Close)
	return server, sessions
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token error = %v", err)
	}
	return token
}

func doRequest(t *testing.T, method, url, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request error = %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request error = %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestOpenSessionRequiresToken(t *testing.T) {
	server, _ := newTestServer(t, &gatewayFake{})

	resp, _ := doRequest(t, http.MethodPost, server.URL+"/v1/sessions", "", "{}")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestOpenSessionWithoutDocument(t *testing.T) {
	server, _ := newTestServer(t, &gatewayFake{})
	token := signToken(t, jwt.MapClaims{"user_id": "u-1"})

	resp, body := doRequest(t, http.MethodPost, server.URL+"/v1/sessions", token, "{}")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if sessionID, _ := body["session_id"].(string); sessionID == "" {
		t.Fatalf("missing session_id in %v", body)
	}
	if body["step"] != float64(1) {
		t.Fatalf("step = %v, want 1", body["step"])
	}
}

func TestOpenSessionForbiddenDocumentStillYieldsSession(t *testing.T) {
	gw := &gatewayFake{
		getDocumentErr: domain.WrapError(domain.ErrAccessDenied, "get document", domain.ErrAccessDenied),
	}
	server, sessions := newTestServer(t, gw)
	token := signToken(t, jwt.MapClaims{"user_id": "u-1"})

	resp, body := doRequest(t, http.MethodPost, server.URL+"/v1/sessions", token, `{"document_id":42}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if body["access_denied"] != true {
		t.Fatalf("access_denied = %v", body["access_denied"])
	}

	// The session survives so the client can render the denied view.
	sessionID, _ := body["session_id"].(string)
	if _, err := sessions.Get(sessionID); err != nil {
		t.Fatalf("session must survive a forbidden load: %v", err)
	}
}

func TestChooseClassMovesToDetail(t *testing.T) {
	server, _ := newTestServer(t, &gatewayFake{})
	token := signToken(t, jwt.MapClaims{"user_id": "u-1", "employee_id": 100, "department_id": 200})

	_, created := doRequest(t, http.MethodPost, server.URL+"/v1/sessions", token, "{}")
	sessionID := created["session_id"].(string)

	resp, body := doRequest(t, http.MethodPost, server.URL+"/v1/sessions/"+sessionID+"/class", token, `{"class_id":7}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	state := body["state"].(map[string]any)
	if state["step"] != float64(2) {
		t.Fatalf("step = %v, want 2", state["step"])
	}
	if state["can_render_detail"] != true {
		t.Fatalf("can_render_detail = %v", state["can_render_detail"])
	}
}

func TestBackReturnsToClassSelection(t *testing.T) {
	server, _ := newTestServer(t, &gatewayFake{})
	token := signToken(t, jwt.MapClaims{"user_id": "u-1"})

	_, created := doRequest(t, http.MethodPost, server.URL+"/v1/sessions", token, "{}")
	sessionID := created["session_id"].(string)
	doRequest(t, http.MethodPost, server.URL+"/v1/sessions/"+sessionID+"/class", token, `{"class_id":7}`)

	resp, body := doRequest(t, http.MethodPost, server.URL+"/v1/sessions/"+sessionID+"/back", token, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["step"] != float64(1) {
		t.Fatalf("step = %v, want 1", body["step"])
	}
	if body["document"] != nil || body["settings"] != nil {
		t.Fatalf("back must clear document and settings: %v", body)
	}
}

func TestResendRequiresAdmin(t *testing.T) {
	server, _ := newTestServer(t, &gatewayFake{})
	token := signToken(t, jwt.MapClaims{"user_id": "u-1"})

	_, created := doRequest(t, http.MethodPost, server.URL+"/v1/sessions", token, "{}")
	sessionID := created["session_id"].(string)

	resp, _ := doRequest(t, http.MethodPost, server.URL+"/v1/sessions/"+sessionID+"/resend", token, "")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestResendRequiresPendingFailure(t *testing.T) {
	server, _ := newTestServer(t, &gatewayFake{})
	token := signToken(t, jwt.MapClaims{"user_id": "u-1", "is_admin": true})

	_, created := doRequest(t, http.MethodPost, server.URL+"/v1/sessions", token, "{}")
	sessionID := created["session_id"].(string)

	resp, _ := doRequest(t, http.MethodPost, server.URL+"/v1/sessions/"+sessionID+"/resend", token, "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	server, _ := newTestServer(t, &gatewayFake{})
	token := signToken(t, jwt.MapClaims{"user_id": "u-1"})

	resp, _ := doRequest(t, http.MethodGet, server.URL+"/v1/sessions/unknown", token, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSubmitWithoutDocumentIs400(t *testing.T) {
	server, _ := newTestServer(t, &gatewayFake{})
	token := signToken(t, jwt.MapClaims{"user_id": "u-1"})

	_, created := doRequest(t, http.MethodPost, server.URL+"/v1/sessions", token, "{}")
	sessionID := created["session_id"].(string)

	resp, _ := doRequest(t, http.MethodPost, server.URL+"/v1/sessions/"+sessionID+"/submit", token, "{}")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCloseSession(t *testing.T) {
	server, sessions := newTestServer(t, &gatewayFake{})
	token := signToken(t, jwt.MapClaims{"user_id": "u-1"})

	_, created := doRequest(t, http.MethodPost, server.URL+"/v1/sessions", token, "{}")
	sessionID := created["session_id"].(string)

	resp, _ := doRequest(t, http.MethodDelete, server.URL+"/v1/sessions/"+sessionID, token, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if _, err := sessions.Get(sessionID); err == nil {
		t.Fatalf("session must be gone")
	}
}

func TestHealthzIsPublic(t *testing.T) {
	server, _ := newTestServer(t, &gatewayFake{})

	resp, body := doRequest(t, http.MethodGet, server.URL+"/healthz", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}
