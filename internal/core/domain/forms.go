package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FieldValues is the loosely-typed value bag a sub-form submits to the
// EDO API. Keys are the remote field names.
type FieldValues map[string]any

// HeaderForm carries the document header fields of the detail step.
type HeaderForm struct {
	DocumentID   int64     `json:"document_id"`
	ClassID      int64     `json:"class_id"`
	StatusID     int64     `json:"status_id"`
	StageID      int64     `json:"stage_id"`
	EmployeeID   int64     `json:"employee_id"`
	DepartmentID int64     `json:"department_id"`
	ClientID     int64     `json:"client_id"`
	DateReg      CivilDate `json:"date_reg"`
	DateBeg      CivilDate `json:"date_beg"`
	DateEnd      CivilDate `json:"date_end"`
	DateDenounce CivilDate `json:"date_denounce"`
}

// Validate applies the settings-driven requiredness of the rendered
// sections. Dates are day-granular already; only presence is checked.
func (f *HeaderForm) Validate(settings *Settings) error {
	var missing []string
	if f.ClassID == 0 {
		missing = append(missing, "class_id")
	}
	if f.DateReg.IsZero() {
		missing = append(missing, "date_reg")
	}
	if settings != nil && settings.ShowPeriod && !settings.DisablePeriod {
		if f.DateBeg.IsZero() {
			missing = append(missing, "date_beg")
		}
		if f.DateEnd.IsZero() {
			missing = append(missing, "date_end")
		}
	}
	if settings != nil && settings.ShowDateDenounce && f.DateDenounce.IsZero() {
		missing = append(missing, "date_denounce")
	}
	if len(missing) > 0 {
		return WrapError(ErrValidation, "header", fmt.Errorf("required fields: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// Values renders the wire payload for updateDocumentForm. The three
// period dates go out midnight-UTC-normalized so structured encoding
// cannot shift them a day.
func (f *HeaderForm) Values() FieldValues {
	return FieldValues{
		"document_id":   f.DocumentID,
		"class_id":      f.ClassID,
		"status_id":     f.StatusID,
		"stage_id":      f.StageID,
		"employee_id":   f.EmployeeID,
		"department_id": f.DepartmentID,
		"client_id":     f.ClientID,
		"date_reg":      f.DateReg.Wire(),
		"date_beg":      f.DateBeg.Wire(),
		"date_end":      f.DateEnd.Wire(),
		"date_denounce": f.DateDenounce.Wire(),
	}
}

// AttributeValue is one custom attribute of the attributes sub-form.
// NumberValue arrives as either a JSON number or a numeric string and
// is coerced before submission.
type AttributeValue struct {
	ID          int64  `json:"id,omitempty"`
	EditorID    int64  `json:"editor_id"`
	TextValue   string `json:"text_value,omitempty"`
	NumberValue any    `json:"number_value,omitempty"`
	DateValue   string `json:"date_value,omitempty"`
}

type AttributeForm struct {
	Rows []AttributeValue `json:"rows"`
}

func (f *AttributeForm) Validate() error {
	for i := range f.Rows {
		if _, err := coerceNumber(f.Rows[i].NumberValue); err != nil {
			return WrapError(ErrValidation, "attributes", fmt.Errorf("row %d: %w", i, err))
		}
	}
	return nil
}

// Normalized returns submission-ready rows with numeric strings coerced.
func (f *AttributeForm) Normalized() ([]AttributeValue, error) {
	out := make([]AttributeValue, len(f.Rows))
	for i, row := range f.Rows {
		n, err := coerceNumber(row.NumberValue)
		if err != nil {
			return nil, WrapError(ErrValidation, "attributes", fmt.Errorf("row %d: %w", i, err))
		}
		row.NumberValue = n
		out[i] = row
	}
	return out, nil
}

// ApplyServerRows replaces the slot content with the rows the server
// returned, re-parsing date values into the shared representation.
// A date the server sends back unparseable becomes blank, never raw text.
func (f *AttributeForm) ApplyServerRows(rows []AttributeValue) {
	for i := range rows {
		if rows[i].DateValue == "" {
			continue
		}
		parsed, err := ParseCivilDate(rows[i].DateValue)
		if err != nil || parsed.IsZero() {
			rows[i].DateValue = ""
			continue
		}
		rows[i].DateValue = parsed.Wire()
	}
	f.Rows = rows
}

// TabularCell is one cell of the grid sub-form. DisplayNo and OrderNo
// together identify the cell for server id reconciliation.
type TabularCell struct {
	ID        *int64 `json:"id,omitempty"`
	DisplayNo int    `json:"display_no"`
	OrderNo   int    `json:"order_no"`
	TextValue string `json:"text_value,omitempty"`
	NumValue  any    `json:"num_value,omitempty"`
	DateValue string `json:"date_value,omitempty"`
}

type TabularForm struct {
	Rows [][]TabularCell `json:"row_column_editor"`
}

func (f *TabularForm) Validate() error {
	for i := range f.Rows {
		for j := range f.Rows[i] {
			if _, err := coerceNumber(f.Rows[i][j].NumValue); err != nil {
				return WrapError(ErrValidation, "tabular", fmt.Errorf("row %d cell %d: %w", i, j, err))
			}
		}
	}
	return nil
}

// Flatten produces the single ordered sequence submitted to the bulk
// save: numeric strings coerced, date cells re-rendered canonically so
// the encoder cannot apply a timezone shift.
func (f *TabularForm) Flatten() ([]TabularCell, error) {
	var out []TabularCell
	for i := range f.Rows {
		for j, cell := range f.Rows[i] {
			n, err := coerceNumber(cell.NumValue)
			if err != nil {
				return nil, WrapError(ErrValidation, "tabular", fmt.Errorf("row %d cell %d: %w", i, j, err))
			}
			cell.NumValue = n
			if cell.DateValue != "" {
				if parsed, err := ParseCivilDate(cell.DateValue); err == nil && !parsed.IsZero() {
					cell.DateValue = parsed.Wire()
				}
			}
			out = append(out, cell)
		}
	}
	return out, nil
}

// AssignedRowID is the server's answer to a bulk tabular save. The
// numbers come back as strings.
type AssignedRowID struct {
	ID        string `json:"id"`
	DisplayNo string `json:"display_no"`
	OrderNo   string `json:"order_no"`
}

// ApplyAssignedIDs stamps server identifiers back onto client cells,
// matching purely on the (display_no, order_no) pair. Cells with no
// matching server entry keep a nil ID: not yet persisted, not an error.
func (f *TabularForm) ApplyAssignedIDs(assigned []AssignedRowID) {
	for i := range f.Rows {
		for j := range f.Rows[i] {
			cell := &f.Rows[i][j]
			for _, a := range assigned {
				displayNo, err1 := strconv.Atoi(a.DisplayNo)
				orderNo, err2 := strconv.Atoi(a.OrderNo)
				if err1 != nil || err2 != nil {
					continue
				}
				if displayNo != cell.DisplayNo || orderNo != cell.OrderNo {
					continue
				}
				id, err := strconv.ParseInt(a.ID, 10, 64)
				if err != nil {
					continue
				}
				cell.ID = &id
				break
			}
		}
	}
}

// RemarkForm is the remark sub-form. The secondary remark is held
// separately: both remark calls carry the primary text.
type RemarkForm struct {
	DocumentID int64  `json:"document_id"`
	Remark     string `json:"remark"`
}

func (f *RemarkForm) Validate() error {
	if strings.TrimSpace(f.Remark) == "" {
		return WrapError(ErrValidation, "remark", errors.New("remark text is required"))
	}
	return nil
}

type SecondaryRemarkForm struct {
	Remark2 string `json:"remark2"`
}

// SubForms is the registry: five well-known, optionally-present slots.
// A nil slot means the section was not rendered and there is nothing
// to submit for it.
type SubForms struct {
	Header     *HeaderForm          `json:"header,omitempty"`
	Attributes *AttributeForm       `json:"attributes,omitempty"`
	Tabular    *TabularForm         `json:"tabular,omitempty"`
	Remark     *RemarkForm          `json:"remark,omitempty"`
	Remark2    *SecondaryRemarkForm `json:"remark2,omitempty"`
}

func (f *SubForms) Empty() bool {
	return f == nil ||
		(f.Header == nil && f.Attributes == nil && f.Tabular == nil && f.Remark == nil && f.Remark2 == nil)
}

// Validate checks every populated slot as a unit; the first failing
// slot aborts. No remote write happens unless all slots pass.
func (f *SubForms) Validate(settings *Settings) error {
	if f == nil {
		return nil
	}
	if f.Header != nil {
		if err := f.Header.Validate(settings); err != nil {
			return err
		}
	}
	if f.Attributes != nil {
		if err := f.Attributes.Validate(); err != nil {
			return err
		}
	}
	if f.Tabular != nil {
		if err := f.Tabular.Validate(); err != nil {
			return err
		}
	}
	if f.Remark != nil {
		if err := f.Remark.Validate(); err != nil {
			return err
		}
	}
	if f.Remark2 != nil && f.Remark == nil {
		return WrapError(ErrValidation, "remark2", errors.New("secondary remark requires the remark slot"))
	}
	return nil
}

// coerceNumber turns numeric strings into numbers and passes numbers
// through. JSON decoding hands us float64 for numbers and string for
// text-typed inputs.
func coerceNumber(v any) (any, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64, int, int64:
		return n, nil
	case string:
		if strings.TrimSpace(n) == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil, fmt.Errorf("numeric value %q", n)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("unsupported numeric type %T", v)
	}
}
