package usecase

import (
	"context"
	"reflect"
	"testing"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
)

func TestLoadRegularDocument(t *testing.T) {
	doc := documentWithID(42, "cAgreement")
	doc.Status.ForeignID = 2520
	doc.StatusID = 9
	gw := &fakeGateway{doc: doc, settings: &domain.Settings{ID: 7, ShowPeriod: true}}
	sess := newSession(domain.Identity{UserID: "u-1"})
	uc := NewLoadDocumentUseCase(gw, NewSettingsResolver(gw), nil)

	if err := uc.Load(context.Background(), sess, 42); err != nil {
		t.Fatalf("Load error = %v", err)
	}

	if !reflect.DeepEqual(gw.calls, []string{"get_document", "get_settings"}) {
		t.Fatalf("calls = %v", gw.calls)
	}

	state := sess.State()
	if !state.CanRenderDetail() {
		t.Fatalf("detail must be renderable after load")
	}
	if state.LoadingSettings {
		t.Fatalf("loading flag must reset")
	}
	if state.HasSurvey {
		t.Fatalf("regular class never checks the survey")
	}

	header := sess.Forms().Header
	if header == nil {
		t.Fatalf("header form must be registered")
	}
	if header.StatusID != 2520 {
		t.Fatalf("header must prefer the foreign status id, got %d", header.StatusID)
	}
}

func TestLoadDismissalChecksSurvey(t *testing.T) {
	gw := &fakeGateway{
		doc:    documentWithID(42, domain.ClassAppForDismissal),
		survey: []domain.SurveyEntry{{ID: 1, DocumentID: 42}},
	}
	sess := newSession(domain.Identity{UserID: "u-1"})
	uc := NewLoadDocumentUseCase(gw, NewSettingsResolver(gw), nil)

	if err := uc.Load(context.Background(), sess, 42); err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if !reflect.DeepEqual(gw.calls, []string{"get_document", "get_survey", "get_settings"}) {
		t.Fatalf("calls = %v", gw.calls)
	}
	if !sess.State().HasSurvey {
		t.Fatalf("existing survey entries must set the flag")
	}
}

func TestLoadForbiddenDocumentShortCircuits(t *testing.T) {
	gw := &fakeGateway{
		getDocumentErr: domain.WrapError(domain.ErrAccessDenied, "get document", errNoSession("42")),
	}
	sess := newSession(domain.Identity{UserID: "u-1"})
	uc := NewLoadDocumentUseCase(gw, NewSettingsResolver(gw), nil)

	err := uc.Load(context.Background(), sess, 42)
	if !domain.IsKind(err, domain.ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}

	// Nothing downstream of the document fetch may run.
	if !reflect.DeepEqual(gw.calls, []string{"get_document"}) {
		t.Fatalf("calls = %v", gw.calls)
	}
	state := sess.State()
	if !state.AccessDenied {
		t.Fatalf("state must flip to access denied")
	}
	if state.Step != domain.StepSelectClass {
		t.Fatalf("forbidden load must not advance the step")
	}
}

func TestLoadReusesCachedSettings(t *testing.T) {
	gw := &fakeGateway{doc: documentWithID(42, "cAgreement")}
	sess := newSession(domain.Identity{UserID: "u-1"})
	sess.CacheSettings(7, &domain.Settings{ID: 7})
	uc := NewLoadDocumentUseCase(gw, NewSettingsResolver(gw), nil)

	if err := uc.Load(context.Background(), sess, 42); err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if !reflect.DeepEqual(gw.calls, []string{"get_document"}) {
		t.Fatalf("cached settings must suppress the fetch, calls = %v", gw.calls)
	}
}

func TestLoadSurveyFailureAborts(t *testing.T) {
	gw := &fakeGateway{
		doc:          documentWithID(42, domain.ClassAppForDismissal),
		getSurveyErr: domain.WrapError(domain.ErrRemote, "get survey", errNoSession("x")),
	}
	sess := newSession(domain.Identity{UserID: "u-1"})
	uc := NewLoadDocumentUseCase(gw, NewSettingsResolver(gw), nil)

	if err := uc.Load(context.Background(), sess, 42); !domain.IsKind(err, domain.ErrRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if sess.State().Step != domain.StepSelectClass {
		t.Fatalf("failed load must not advance the step")
	}
}
