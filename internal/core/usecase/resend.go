package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
	"github.com/mycent-kz/edo-orchestrator/internal/core/ports"
)

// ResendUseCase re-pushes a document to the KIAS integration system
// after a failed attempt. A declined push is not an error: it keeps
// the resend affordance visible and moves on.
type ResendUseCase struct {
	gateway  ports.DocumentGateway
	events   ports.EventPublisher
	observer ResendObserver
	logger   *slog.Logger
}

// ResendObserver counts resend outcomes; nil is fine.
type ResendObserver interface {
	ResendFinished(success bool)
}

func NewResendUseCase(gateway ports.DocumentGateway, events ports.EventPublisher, observer ResendObserver, logger *slog.Logger) *ResendUseCase {
	return &ResendUseCase{gateway: gateway, events: events, observer: observer, logger: logger}
}

func (uc *ResendUseCase) Resend(ctx context.Context, sess *Session) (bool, error) {
	state := sess.State()
	if !state.Document.Exists() {
		return false, domain.WrapError(domain.ErrValidation, "resend", errors.New("no document under edit"))
	}
	documentID := *state.Document.ID

	success, err := uc.gateway.ResendToKias(ctx, documentID)
	if err != nil {
		return false, fmt.Errorf("resend document %d: %w", documentID, err)
	}

	sess.SetState(sess.State().WithResendNeeded(!success))

	if uc.observer != nil {
		uc.observer.ResendFinished(success)
	}
	if uc.events != nil {
		if perr := uc.events.PublishDocumentResent(ctx, documentID, success); perr != nil && uc.logger != nil {
			uc.logger.Warn("publish_document_resent_failed", "document_id", documentID, "error", perr)
		}
	}
	if uc.logger != nil {
		uc.logger.Info("document_resent", "session_id", sess.ID, "document_id", documentID, "success", success)
	}
	return success, nil
}
