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

// Submission step names, in execution order. The order is a contract:
// a failure at any step leaves earlier steps applied and later steps
// untouched.
const (
	StepRemark     = "remark"
	StepAttributes = "attributes"
	StepTabular    = "tabular"
	StepHeader     = "header"
)

// SubmitObserver receives submission telemetry. Implemented by the
// metrics layer; a nil observer is fine.
type SubmitObserver interface {
	StepFinished(step, outcome string, elapsed time.Duration)
	SubmissionFinished(action, outcome string, elapsed time.Duration)
}

// SubmitUseCase is the submission coordinator: validates the whole
// registry as a unit, branches on the post-submit decision table and
// persists each populated slot in fixed order. There is no rollback;
// every step is independently re-submittable, so partial progress is
// journaled instead of compensated.
type SubmitUseCase struct {
	gateway  ports.DocumentGateway
	journal  ports.SubmissionJournal
	events   ports.EventPublisher
	observer SubmitObserver
	logger   *slog.Logger
}

func NewSubmitUseCase(
	gateway ports.DocumentGateway,
	journal ports.SubmissionJournal,
	events ports.EventPublisher,
	observer SubmitObserver,
	logger *slog.Logger,
) *SubmitUseCase {
	return &SubmitUseCase{gateway: gateway, journal: journal, events: events, observer: observer, logger: logger}
}

func (uc *SubmitUseCase) Submit(ctx context.Context, sess *Session, forms *domain.SubForms) (domain.PostSubmitAction, error) {
	started := time.Now()
	state := sess.State()
	if !state.Document.Exists() {
		return 0, domain.WrapError(domain.ErrValidation, "submit", errors.New("no document under edit"))
	}
	documentID := *state.Document.ID

	// The class constant is runtime data: re-fetch rather than trust
	// the snapshot taken when the session entered the detail step.
	doc, err := uc.gateway.GetDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("refresh document %d: %w", documentID, err)
	}

	// All registered sub-forms validate together; a single failure
	// means zero remote writes.
	if err := forms.Validate(state.Settings); err != nil {
		return 0, err
	}

	formColumns := 0
	if state.Settings != nil {
		formColumns = len(state.Settings.FormColumns)
	}
	action := domain.DecidePostSubmit(doc.Class.Constant, state.HasSurvey, formColumns)

	sess.SetForms(forms)

	switch action {
	case domain.ConfirmOnly:
		sess.SetState(sess.State().ShowConfirmModal())
		uc.observe(action, "ok", started)
		return action, nil
	case domain.SurveyAndSubmit:
		// Survey capture is independent of the submission; the modal
		// opens before the writes start.
		sess.SetState(sess.State().ShowSurveyModal())
	}

	if err := uc.submitAll(ctx, sess, documentID, forms); err != nil {
		uc.observe(action, "failed", started)
		return action, err
	}

	if action == domain.ConfirmAndSubmit {
		sess.SetState(sess.State().ShowConfirmModal())
	}

	if uc.events != nil {
		if err := uc.events.PublishDocumentSubmitted(ctx, documentID); err != nil && uc.logger != nil {
			uc.logger.Warn("publish_document_submitted_failed", "document_id", documentID, "error", err)
		}
	}
	uc.observe(action, "ok", started)
	return action, nil
}

// submitAll persists populated slots in the fixed order
// remark(+secondary) -> attributes -> tabular -> header. Absent slots
// are skipped, not errors.
func (uc *SubmitUseCase) submitAll(ctx context.Context, sess *Session, documentID int64, forms *domain.SubForms) error {
	if forms.Remark != nil {
		if err := uc.runStep(ctx, sess, documentID, StepRemark, func() error {
			if err := uc.gateway.AddRemark(ctx, documentID, forms.Remark.Remark, ""); err != nil {
				return err
			}
			if forms.Remark2 == nil {
				return nil
			}
			// The secondary remark is layered on top of the first as
			// an additional call carrying both texts; the first write
			// stays in the audit trail.
			return uc.gateway.AddRemark(ctx, documentID, forms.Remark.Remark, forms.Remark2.Remark2)
		}); err != nil {
			return err
		}
	}

	if forms.Attributes != nil {
		if err := uc.runStep(ctx, sess, documentID, StepAttributes, func() error {
			rows, err := forms.Attributes.Normalized()
			if err != nil {
				return err
			}
			returned, err := uc.gateway.AddAttributes(ctx, rows)
			if err != nil {
				return err
			}
			forms.Attributes.ApplyServerRows(returned)
			return nil
		}); err != nil {
			return err
		}
	}

	if forms.Tabular != nil {
		if err := uc.runStep(ctx, sess, documentID, StepTabular, func() error {
			cells, err := forms.Tabular.Flatten()
			if err != nil {
				return err
			}
			assigned, err := uc.gateway.AddTabular(ctx, cells)
			if err != nil {
				return err
			}
			forms.Tabular.ApplyAssignedIDs(assigned)
			return nil
		}); err != nil {
			return err
		}
	}

	if forms.Header != nil {
		if err := uc.runStep(ctx, sess, documentID, StepHeader, func() error {
			return uc.gateway.UpdateDocumentForm(ctx, documentID, forms.Header.Values())
		}); err != nil {
			return err
		}
	}

	return nil
}

func (uc *SubmitUseCase) runStep(ctx context.Context, sess *Session, documentID int64, step string, fn func() error) error {
	started := time.Now()
	err := fn()

	outcome := domain.JournalOK
	detail := ""
	if err != nil {
		outcome = domain.JournalFailed
		detail = err.Error()
	}
	if uc.journal != nil {
		entry := domain.JournalEntry{
			SessionID:  sess.ID,
			DocumentID: documentID,
			Step:       step,
			Outcome:    outcome,
			Detail:     detail,
			At:         time.Now().UTC(),
		}
		if jerr := uc.journal.Record(ctx, entry); jerr != nil && uc.logger != nil {
			uc.logger.Warn("journal_record_failed", "step", step, "error", jerr)
		}
	}
	if uc.observer != nil {
		uc.observer.StepFinished(step, outcome, time.Since(started))
	}
	if err != nil {
		return fmt.Errorf("submit %s: %w", step, err)
	}
	return nil
}

func (uc *SubmitUseCase) observe(action domain.PostSubmitAction, outcome string, started time.Time) {
	if uc.observer == nil {
		return
	}
	uc.observer.SubmissionFinished(action.String(), outcome, time.Since(started))
}
