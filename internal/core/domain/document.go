package domain

// ClassAppForDismissal is the class constant that switches the editor
// into the dismissal-application flow (survey before finalization).
const ClassAppForDismissal = "cAppForDismissal"

type DocumentClass struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Constant string `json:"constant1"`
}

type DocumentStatus struct {
	ID        int64  `json:"id"`
	ForeignID int64  `json:"foreign_id"`
	Constant  string `json:"constant"`
}

// DocumentStage is a legacy routing field: read and displayed, never
// acted upon by the editor.
type DocumentStage struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
}

// Document is the entity under edit. Once ID is non-nil the document
// exists on the remote side and most header fields become immutable.
type Document struct {
	ID           *int64         `json:"id"`
	DocumentID   string         `json:"document_id"`
	Class        DocumentClass  `json:"class"`
	ClassID      int64          `json:"class_id"`
	EmployeeID   int64          `json:"employee_id"`
	DepartmentID int64          `json:"department_id"`
	ClientID     int64          `json:"client_id"`
	DateReg      CivilDate      `json:"date_reg"`
	DateBeg      CivilDate      `json:"date_beg"`
	DateEnd      CivilDate      `json:"date_end"`
	DateDenounce CivilDate      `json:"date_denounce"`
	Status       DocumentStatus `json:"status"`
	StatusID     int64          `json:"status_id"`
	Stage        DocumentStage  `json:"stage"`
	StageID      int64          `json:"stage_id"`
	KiasErr      bool           `json:"kias_err"`
	Active       bool           `json:"active"`
}

func (d *Document) Exists() bool {
	return d != nil && d.ID != nil
}

// FormColumn describes one section of the class-specific dynamic form
// (the dismissal survey is built from these).
type FormColumn struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Order int    `json:"order"`
}

// Settings is the per-class editor configuration. Fetched once per
// distinct class within a session and discarded on back navigation.
type Settings struct {
	ID               int64        `json:"id"`
	ShowClient       bool         `json:"show_client"`
	ShowStage        bool         `json:"show_stage"`
	ShowPeriod       bool         `json:"show_period"`
	DisablePeriod    bool         `json:"disable_period"`
	ShowDateDenounce bool         `json:"show_date_denounce"`
	FormColumns      []FormColumn `json:"form_columns"`
}

// SurveyEntry is one captured answer of a dismissal survey. The editor
// only cares whether any exist.
type SurveyEntry struct {
	ID         int64  `json:"id"`
	DocumentID int64  `json:"document_id"`
	Answer     string `json:"answer"`
}

// DocumentDraft is the creation/update payload for the document header.
// Idempotency on the remote side is keyed by the presence of ID.
type DocumentDraft struct {
	ID           *int64    `json:"id,omitempty"`
	ClassID      int64     `json:"class_id"`
	DateReg      CivilDate `json:"date_reg"`
	DateBeg      CivilDate `json:"date_beg,omitempty"`
	DateEnd      CivilDate `json:"date_end,omitempty"`
	DateDenounce CivilDate `json:"date_denounce,omitempty"`
	DepartmentID int64     `json:"department_id"`
	EmployeeID   int64     `json:"employee_id"`
	StageID      int64     `json:"stage_id"`
	StatusID     int64     `json:"status_id"`
	ClientID     int64     `json:"client_id"`
}
