package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
	"github.com/mycent-kz/edo-orchestrator/internal/core/ports"
)

// Defaults seeded into a brand-new document. The remote workflow
// engine owns the meaning of these identifiers; the editor only seeds
// the well-known "registered" status and the initial stage.
const (
	newDocumentStatusID = 2516
	newDocumentStageID  = 1
)

// CreateRequest carries the step-1 input: the chosen class plus the
// creation-only header fields the class configuration exposes.
type CreateRequest struct {
	ClassID      int64            `json:"class_id"`
	ClientID     int64            `json:"client_id,omitempty"`
	DateBeg      domain.CivilDate `json:"date_beg,omitempty"`
	DateEnd      domain.CivilDate `json:"date_end,omitempty"`
	DateDenounce domain.CivilDate `json:"date_denounce,omitempty"`
}

// CreateDocumentUseCase finishes step 1: resolves class settings,
// registers the document on the remote side and moves the session to
// the detail step. The returned document carries the id the client
// navigates to.
type CreateDocumentUseCase struct {
	gateway  ports.DocumentGateway
	resolver *SettingsResolver
	events   ports.EventPublisher
	logger   *slog.Logger
}

func NewCreateDocumentUseCase(
	gateway ports.DocumentGateway,
	resolver *SettingsResolver,
	events ports.EventPublisher,
	logger *slog.Logger,
) *CreateDocumentUseCase {
	return &CreateDocumentUseCase{gateway: gateway, resolver: resolver, events: events, logger: logger}
}

func (uc *CreateDocumentUseCase) Create(ctx context.Context, sess *Session, req CreateRequest) (*domain.Document, error) {
	if req.ClassID == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "create document", errors.New("class_id is required"))
	}

	sess.SetState(sess.State().WithLoadingSettings(true))
	defer func() {
		sess.SetState(sess.State().WithLoadingSettings(false))
	}()

	settings, err := uc.resolver.Resolve(ctx, sess, req.ClassID)
	if err != nil {
		return nil, err
	}

	identity := sess.Identity()
	draft := domain.DocumentDraft{
		ClassID:      req.ClassID,
		DateReg:      domain.DateOf(time.Now()),
		DateBeg:      req.DateBeg,
		DateEnd:      req.DateEnd,
		DateDenounce: req.DateDenounce,
		DepartmentID: identity.DepartmentID,
		EmployeeID:   identity.EmployeeID,
		StageID:      newDocumentStageID,
		StatusID:     newDocumentStatusID,
		ClientID:     req.ClientID,
	}

	doc, err := uc.gateway.AddDocument(ctx, draft)
	if err != nil {
		// Per-field rejections surface as-is so the client maps them
		// onto form fields; anything else is a single notification.
		return nil, fmt.Errorf("add document: %w", err)
	}

	state := sess.State().WithSettings(settings).WithDocument(doc)
	state, err = state.EnterDetail()
	if err != nil {
		return nil, fmt.Errorf("enter detail step: %w", err)
	}
	sess.SetForms(&domain.SubForms{Header: headerFromDocument(doc)})
	sess.SetState(state)

	if uc.events != nil && doc.ID != nil {
		if err := uc.events.PublishDocumentCreated(ctx, *doc.ID); err != nil && uc.logger != nil {
			uc.logger.Warn("publish_document_created_failed", "document_id", *doc.ID, "error", err)
		}
	}
	if uc.logger != nil {
		uc.logger.Info("document_created", "session_id", sess.ID, "class_id", req.ClassID, "document_id", doc.DocumentID)
	}
	return doc, nil
}
