package ports

import (
	"context"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
)

// DocumentGateway is the contract of the remote EDO service. Transport
// failures come back as domain.ErrRemote; a forbidden document as
// domain.ErrAccessDenied; server-side field validation as
// domain.FieldErrors. The gateway never retries on its own.
type DocumentGateway interface {
	GetDocument(ctx context.Context, id int64) (*domain.Document, error)
	GetSettings(ctx context.Context, classID int64) (*domain.Settings, error)
	GetSurveyData(ctx context.Context, documentID int64) ([]domain.SurveyEntry, error)
	AddDocument(ctx context.Context, draft domain.DocumentDraft) (*domain.Document, error)
	AddAttributes(ctx context.Context, rows []domain.AttributeValue) ([]domain.AttributeValue, error)
	AddTabular(ctx context.Context, cells []domain.TabularCell) ([]domain.AssignedRowID, error)
	AddRemark(ctx context.Context, documentID int64, remark, remark2 string) error
	UpdateDocumentForm(ctx context.Context, documentID int64, values domain.FieldValues) error
	ResendToKias(ctx context.Context, documentID int64) (bool, error)
	GetPrintForm(ctx context.Context, documentID int64, documentType string) ([]byte, error)
}

// EventPublisher emits document lifecycle events for downstream
// consumers. Publishing is best-effort: a failed publish never fails
// the user-facing operation.
type EventPublisher interface {
	PublishDocumentCreated(ctx context.Context, documentID int64) error
	PublishDocumentSubmitted(ctx context.Context, documentID int64) error
	PublishDocumentResent(ctx context.Context, documentID int64, success bool) error
}

// SubmissionJournal records every orchestrated write for audit.
type SubmissionJournal interface {
	Record(ctx context.Context, entry domain.JournalEntry) error
}
