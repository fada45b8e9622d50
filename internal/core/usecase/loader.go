package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
	"github.com/mycent-kz/edo-orchestrator/internal/core/ports"
)

// LoadDocumentUseCase opens an existing document for editing: document
// fetch, dismissal survey check, settings resolution and header
// population, in that order. A forbidden document short-circuits the
// whole chain and flips the session into the access-denied view.
type LoadDocumentUseCase struct {
	gateway  ports.DocumentGateway
	resolver *SettingsResolver
	logger   *slog.Logger
}

func NewLoadDocumentUseCase(gateway ports.DocumentGateway, resolver *SettingsResolver, logger *slog.Logger) *LoadDocumentUseCase {
	return &LoadDocumentUseCase{gateway: gateway, resolver: resolver, logger: logger}
}

func (uc *LoadDocumentUseCase) Load(ctx context.Context, sess *Session, documentID int64) error {
	sess.SetState(sess.State().WithLoadingSettings(true))
	defer func() {
		sess.SetState(sess.State().WithLoadingSettings(false))
	}()

	doc, err := uc.gateway.GetDocument(ctx, documentID)
	if err != nil {
		if domain.IsKind(err, domain.ErrAccessDenied) {
			// Suppress everything downstream: no settings fetch, no
			// survey check, no form population.
			sess.SetState(sess.State().WithAccessDenied())
		}
		return fmt.Errorf("load document %d: %w", documentID, err)
	}

	state := sess.State()

	if doc.Class.Constant == domain.ClassAppForDismissal {
		entries, err := uc.gateway.GetSurveyData(ctx, documentID)
		if err != nil {
			return fmt.Errorf("check survey for document %d: %w", documentID, err)
		}
		state = state.WithHasSurvey(len(entries) > 0)
	}

	if state.Settings == nil {
		settings, err := uc.resolver.Resolve(ctx, sess, doc.Class.ID)
		if err != nil {
			return err
		}
		state = state.WithSettings(settings)
	}

	state = state.WithDocument(doc)
	state, err = state.EnterDetail()
	if err != nil {
		return fmt.Errorf("enter detail step: %w", err)
	}

	sess.SetForms(&domain.SubForms{Header: headerFromDocument(doc)})
	sess.SetState(state)

	if uc.logger != nil {
		uc.logger.Info("document_loaded",
			"session_id", sess.ID,
			"document_id", documentID,
			"class_id", doc.Class.ID,
			"has_survey", state.HasSurvey,
		)
	}
	return nil
}

// headerFromDocument populates the detail header from the fetched
// document. Dates absent in the source stay blank rather than
// defaulting to today.
func headerFromDocument(doc *domain.Document) *domain.HeaderForm {
	statusID := doc.Status.ForeignID
	if statusID == 0 {
		statusID = doc.StatusID
	}
	var id int64
	if doc.ID != nil {
		id = *doc.ID
	}
	return &domain.HeaderForm{
		DocumentID:   id,
		ClassID:      doc.Class.ID,
		StatusID:     statusID,
		StageID:      doc.Stage.ID,
		EmployeeID:   doc.EmployeeID,
		DepartmentID: doc.DepartmentID,
		ClientID:     doc.ClientID,
		DateReg:      doc.DateReg,
		DateBeg:      doc.DateBeg,
		DateEnd:      doc.DateEnd,
		DateDenounce: doc.DateDenounce,
	}
}
