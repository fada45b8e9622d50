package domain

import "errors"

type Step int

const (
	StepSelectClass Step = 1
	StepEditDetail  Step = 2
)

var ErrSettingsNotResolved = errors.New("settings not resolved")

// EditorState is the single source of truth for one editing session.
// It is a value type: every mutation goes through a named transition
// returning the next state, so transitions stay auditable and testable
// in isolation. Nothing outside this file writes its fields.
type EditorState struct {
	Step     Step
	Document *Document
	Settings *Settings

	LoadingSettings         bool
	ConfirmModalVisible     bool
	SurveyModalVisible      bool
	DownloadFormRequested   bool
	IntegrationResendNeeded bool
	AccessDenied            bool
	HasSurvey               bool
}

func NewEditorState() EditorState {
	return EditorState{Step: StepSelectClass}
}

func (s EditorState) WithLoadingSettings(loading bool) EditorState {
	s.LoadingSettings = loading
	return s
}

func (s EditorState) WithSettings(settings *Settings) EditorState {
	s.Settings = settings
	return s
}

// WithDocument stores the loaded/created document and mirrors its
// integration failure flag into the resend affordance.
func (s EditorState) WithDocument(doc *Document) EditorState {
	s.Document = doc
	if doc != nil {
		s.IntegrationResendNeeded = doc.KiasErr
	}
	return s
}

// EnterDetail moves to step 2. Settings must already be resolved:
// the detail view renders class-dependent sections and must never
// come up half-configured.
func (s EditorState) EnterDetail() (EditorState, error) {
	if s.Settings == nil {
		return s, ErrSettingsNotResolved
	}
	s.Step = StepEditDetail
	return s, nil
}

// Back is the only reverse transition. It clears Document and Settings
// together; a partial clear would let stale settings leak into the
// next class selection.
func (s EditorState) Back() EditorState {
	s.Step = StepSelectClass
	s.Document = nil
	s.Settings = nil
	s.HasSurvey = false
	s.ConfirmModalVisible = false
	s.SurveyModalVisible = false
	return s
}

func (s EditorState) WithHasSurvey(has bool) EditorState {
	s.HasSurvey = has
	return s
}

func (s EditorState) WithAccessDenied() EditorState {
	s.AccessDenied = true
	return s
}

func (s EditorState) ShowConfirmModal() EditorState {
	s.ConfirmModalVisible = true
	return s
}

func (s EditorState) HideConfirmModal() EditorState {
	s.ConfirmModalVisible = false
	return s
}

func (s EditorState) ShowSurveyModal() EditorState {
	s.SurveyModalVisible = true
	return s
}

func (s EditorState) HideSurveyModal() EditorState {
	s.SurveyModalVisible = false
	return s
}

func (s EditorState) WithDownloadRequested(requested bool) EditorState {
	s.DownloadFormRequested = requested
	return s
}

func (s EditorState) WithResendNeeded(needed bool) EditorState {
	s.IntegrationResendNeeded = needed
	return s
}

// CanRenderDetail is the conjunction guard for the detail view: both
// Document and Settings must be present, not either.
func (s EditorState) CanRenderDetail() bool {
	return s.Step == StepEditDetail && s.Document != nil && s.Settings != nil
}
