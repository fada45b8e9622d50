package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
	"github.com/mycent-kz/edo-orchestrator/internal/core/ports"
)

// PrintFormUseCase fetches the printable export of a document and
// builds the attachment the client downloads. The remote side has been
// seen returning HTML error pages with a 200, so the payload is
// checked to actually be a readable PDF before it reaches the user.
type PrintFormUseCase struct {
	gateway ports.DocumentGateway
	logger  *slog.Logger
}

func NewPrintFormUseCase(gateway ports.DocumentGateway, logger *slog.Logger) *PrintFormUseCase {
	return &PrintFormUseCase{gateway: gateway, logger: logger}
}

// Fetch returns the printable PDF and its user-facing filename,
// formatted around the human-readable document number.
func (uc *PrintFormUseCase) Fetch(ctx context.Context, sess *Session) (string, []byte, error) {
	state := sess.State()
	if !state.Document.Exists() {
		return "", nil, domain.WrapError(domain.ErrValidation, "print form", errors.New("no document under edit"))
	}
	documentID := *state.Document.ID

	sess.SetState(sess.State().WithDownloadRequested(true))
	defer func() {
		sess.SetState(sess.State().WithDownloadRequested(false))
	}()

	data, err := uc.gateway.GetPrintForm(ctx, documentID, "pdf")
	if err != nil {
		return "", nil, fmt.Errorf("fetch print form for document %d: %w", documentID, err)
	}
	if _, err := pdf.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		return "", nil, domain.WrapError(domain.ErrRemote, "print form", fmt.Errorf("payload is not a readable pdf: %w", err))
	}

	filename := fmt.Sprintf("Печатная форма %s.pdf", state.Document.DocumentID)
	if uc.logger != nil {
		uc.logger.Info("print_form_fetched", "session_id", sess.ID, "document_id", documentID, "bytes", len(data))
	}
	return filename, data, nil
}

// ExportTabular renders the current tabular slot as an .xlsx workbook.
// Requires a tabular slot registered by a prior submit.
func (uc *PrintFormUseCase) ExportTabular(ctx context.Context, sess *Session) (string, []byte, error) {
	state := sess.State()
	if !state.Document.Exists() {
		return "", nil, domain.WrapError(domain.ErrValidation, "export tabular", errors.New("no document under edit"))
	}
	forms := sess.Forms()
	if forms == nil || forms.Tabular == nil {
		return "", nil, domain.WrapError(domain.ErrValidation, "export tabular", errors.New("tabular slot is empty"))
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Tabular"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"display_no", "order_no", "id", "text_value", "num_value", "date_value"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", nil, fmt.Errorf("write header: %w", err)
		}
	}

	rowIdx := 2
	for _, row := range forms.Tabular.Rows {
		for _, c := range row {
			values := []any{c.DisplayNo, c.OrderNo, nil, c.TextValue, c.NumValue, c.DateValue}
			if c.ID != nil {
				values[2] = *c.ID
			}
			for col, v := range values {
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
				if err != nil {
					return "", nil, fmt.Errorf("cell name: %w", err)
				}
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return "", nil, fmt.Errorf("write cell: %w", err)
				}
			}
			rowIdx++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("build workbook: %w", err)
	}
	filename := fmt.Sprintf("Табличная часть %s.xlsx", state.Document.DocumentID)
	return filename, buf.Bytes(), nil
}
