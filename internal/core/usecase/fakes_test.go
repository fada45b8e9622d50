package usecase

import (
	"context"
	"fmt"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
)

// fakeGateway records every remote call in arrival order so tests can
// assert both the call set and the call sequence.
type fakeGateway struct {
	calls []string

	doc            *domain.Document
	getDocumentErr error

	settings       *domain.Settings
	getSettingsErr error

	survey       []domain.SurveyEntry
	getSurveyErr error

	addedDraft     domain.DocumentDraft
	addDocumentErr error

	attributesIn  []domain.AttributeValue
	attributesOut []domain.AttributeValue
	addAttrErr    error

	tabularIn  []domain.TabularCell
	assigned   []domain.AssignedRowID
	addTabErr  error

	remarkCalls [][2]string
	addRemErr   error

	formValues    domain.FieldValues
	updateFormErr error

	resendSuccess bool
	resendErr     error

	printData    []byte
	printFormErr error
}

func (f *fakeGateway) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeGateway) GetDocument(_ context.Context, id int64) (*domain.Document, error) {
	f.record("get_document")
	if f.getDocumentErr != nil {
		return nil, f.getDocumentErr
	}
	if f.doc == nil {
		return nil, domain.WrapError(domain.ErrRemote, "get document", fmt.Errorf("no document %d", id))
	}
	return f.doc, nil
}

func (f *fakeGateway) GetSettings(_ context.Context, classID int64) (*domain.Settings, error) {
	f.record("get_settings")
	if f.getSettingsErr != nil {
		return nil, f.getSettingsErr
	}
	if f.settings == nil {
		return &domain.Settings{ID: classID}, nil
	}
	return f.settings, nil
}

func (f *fakeGateway) GetSurveyData(context.Context, int64) ([]domain.SurveyEntry, error) {
	f.record("get_survey")
	return f.survey, f.getSurveyErr
}

func (f *fakeGateway) AddDocument(_ context.Context, draft domain.DocumentDraft) (*domain.Document, error) {
	f.record("add_document")
	if f.addDocumentErr != nil {
		return nil, f.addDocumentErr
	}
	f.addedDraft = draft
	if f.doc != nil {
		return f.doc, nil
	}
	id := int64(42)
	return &domain.Document{ID: &id, DocumentID: "ЭДО-1001", Class: domain.DocumentClass{ID: draft.ClassID}}, nil
}

func (f *fakeGateway) AddAttributes(_ context.Context, rows []domain.AttributeValue) ([]domain.AttributeValue, error) {
	f.record("add_attributes")
	if f.addAttrErr != nil {
		return nil, f.addAttrErr
	}
	f.attributesIn = rows
	if f.attributesOut != nil {
		return f.attributesOut, nil
	}
	return rows, nil
}

func (f *fakeGateway) AddTabular(_ context.Context, cells []domain.TabularCell) ([]domain.AssignedRowID, error) {
	f.record("add_tabular")
	if f.addTabErr != nil {
		return nil, f.addTabErr
	}
	f.tabularIn = cells
	return f.assigned, nil
}

func (f *fakeGateway) AddRemark(_ context.Context, _ int64, remark, remark2 string) error {
	f.record("add_remark")
	if f.addRemErr != nil {
		return f.addRemErr
	}
	f.remarkCalls = append(f.remarkCalls, [2]string{remark, remark2})
	return nil
}

func (f *fakeGateway) UpdateDocumentForm(_ context.Context, _ int64, values domain.FieldValues) error {
	f.record("update_form")
	if f.updateFormErr != nil {
		return f.updateFormErr
	}
	f.formValues = values
	return nil
}

func (f *fakeGateway) ResendToKias(context.Context, int64) (bool, error) {
	f.record("resend_kias")
	return f.resendSuccess, f.resendErr
}

func (f *fakeGateway) GetPrintForm(context.Context, int64, string) ([]byte, error) {
	f.record("get_print_form")
	return f.printData, f.printFormErr
}

type fakePublisher struct {
	created   []int64
	submitted []int64
	resent    []int64
	err       error
}

func (f *fakePublisher) PublishDocumentCreated(_ context.Context, id int64) error {
	f.created = append(f.created, id)
	return f.err
}

func (f *fakePublisher) PublishDocumentSubmitted(_ context.Context, id int64) error {
	f.submitted = append(f.submitted, id)
	return f.err
}

func (f *fakePublisher) PublishDocumentResent(_ context.Context, id int64, _ bool) error {
	f.resent = append(f.resent, id)
	return f.err
}

type fakeJournal struct {
	entries []domain.JournalEntry
	err     error
}

func (f *fakeJournal) Record(_ context.Context, entry domain.JournalEntry) error {
	f.entries = append(f.entries, entry)
	return f.err
}

func documentWithID(id int64, classConstant string) *domain.Document {
	return &domain.Document{
		ID:         &id,
		DocumentID: "ЭДО-1001",
		Class:      domain.DocumentClass{ID: 7, Constant: classConstant},
	}
}

// detailSession builds a session already sitting on the detail step.
func detailSession(t interface{ Fatalf(string, ...any) }, doc *domain.Document, settings *domain.Settings) *Session {
	sess := newSession(domain.Identity{UserID: "u-1", EmployeeID: 100, DepartmentID: 200})
	state := sess.State().WithSettings(settings).WithDocument(doc)
	state, err := state.EnterDetail()
	if err != nil {
		t.Fatalf("EnterDetail error = %v", err)
	}
	sess.SetState(state)
	sess.CacheSettings(doc.Class.ID, settings)
	return sess
}
