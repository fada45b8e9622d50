package edo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
)

func TestGetDocumentEnvelopeForbidden(t *testing.T) {
	// The remote side answers 200 with error_code 403 in the envelope.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":null,"error_code":403}`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.GetDocument(context.Background(), 42)
	if !domain.IsKind(err, domain.ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestGetDocumentHTTPForbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.GetDocument(context.Background(), 42)
	if !domain.IsKind(err, domain.ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestGetDocumentSendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"data":{"id":42,"document_id":"ЭДО-1001"}}`))
	}))
	defer server.Close()

	client := New(server.URL, WithToken("secret-token"))
	doc, err := client.GetDocument(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetDocument error = %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if doc.DocumentID != "ЭДО-1001" {
		t.Fatalf("document = %+v", doc)
	}
}

func TestAddDocumentFieldErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"date_beg":["required"],"class_id":["unknown class"]}`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.AddDocument(context.Background(), domain.DocumentDraft{ClassID: 7})
	fields, ok := domain.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
	if fields["date_beg"][0] != "required" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestAddTabularFlattensGroupedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[[{"id":"501","display_no":"1","order_no":"1"}],[{"id":"502","display_no":"2","order_no":"1"}]]}`))
	}))
	defer server.Close()

	client := New(server.URL)
	assigned, err := client.AddTabular(context.Background(), []domain.TabularCell{{DisplayNo: 1, OrderNo: 1}})
	if err != nil {
		t.Fatalf("AddTabular error = %v", err)
	}
	if len(assigned) != 2 {
		t.Fatalf("assigned = %v, want flattened pair", assigned)
	}
	if assigned[0].ID != "501" || assigned[1].ID != "502" {
		t.Fatalf("assigned = %v", assigned)
	}
}

func TestAddRemarkPayloadCarriesBothTexts(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL)
	if err := client.AddRemark(context.Background(), 42, "основной", "дополнение"); err != nil {
		t.Fatalf("AddRemark error = %v", err)
	}
	if payload["remark"] != "основной" || payload["remark2"] != "дополнение" {
		t.Fatalf("payload = %v", payload)
	}
	if payload["document_id"] != float64(42) {
		t.Fatalf("document_id = %v", payload["document_id"])
	}
}

func TestServerErrorIsRemoteKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.GetSettings(context.Background(), 7)
	if !domain.IsKind(err, domain.ErrRemote) {
		t.Fatalf("expected remote kind, got %v", err)
	}
}

func TestGetPrintFormReturnsRawBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "pdf" {
			t.Errorf("type query = %q", r.URL.Query().Get("type"))
		}
		_, _ = w.Write([]byte("%PDF-1.4 payload"))
	}))
	defer server.Close()

	client := New(server.URL)
	data, err := client.GetPrintForm(context.Background(), 42, "pdf")
	if err != nil {
		t.Fatalf("GetPrintForm error = %v", err)
	}
	if string(data) != "%PDF-1.4 payload" {
		t.Fatalf("data = %q", data)
	}
}
