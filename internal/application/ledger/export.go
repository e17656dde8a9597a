package ledger

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/erp/cashbook/internal/domain/institution"
	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CSVHeader is the first row of every export
var CSVHeader = []string{"ID", "Date", "Type", "Account", "Description", "Amount", "Category", "Reference", "Institution"}

// ErrArchiveDisabled is returned by Archive when no archive is configured
var ErrArchiveDisabled = errors.New("export archive is not configured")

// ArchivedExport describes an uploaded export
type ArchivedExport struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Rows      int       `json:"rows"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportArchive stores an export document and returns a time-limited link
type ExportArchive interface {
	Store(ctx context.Context, filename string, body []byte, contentType string) (*ArchivedExport, error)
}

// Exporter renders filtered transactions as CSV
type Exporter struct {
	repo    ledger.TransactionRepository
	archive ExportArchive
	logger  *zap.Logger
	now     func() time.Time
}

// NewExporter creates an Exporter. archive may be nil.
func NewExporter(repo ledger.TransactionRepository, archive ExportArchive, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{repo: repo, archive: archive, logger: logger, now: time.Now}
}

// ArchiveEnabled reports whether Archive can be used
func (e *Exporter) ArchiveEnabled() bool {
	return e.archive != nil
}

// Filename returns the download name for an export generated now
func (e *Exporter) Filename() string {
	return fmt.Sprintf("transactions-%s.csv", e.now().Format("20060102-150405"))
}

// Export writes every transaction matching f to w
func (e *Exporter) Export(ctx context.Context, f TransactionListFilter, w io.Writer) (int, error) {
	txns, err := e.load(ctx, f)
	if err != nil {
		return 0, err
	}
	if err := WriteCSV(w, txns); err != nil {
		return 0, err
	}
	return len(txns), nil
}

// Archive uploads the export and returns a download link
func (e *Exporter) Archive(ctx context.Context, f TransactionListFilter) (*ArchivedExport, error) {
	if e.archive == nil {
		return nil, ErrArchiveDisabled
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "export", "archive")
	defer span.End()

	txns, err := e.load(ctx, f)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, txns); err != nil {
		return nil, err
	}

	archived, err := e.archive.Store(ctx, e.Filename(), buf.Bytes(), "text/csv")
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to archive export: %w", err)
	}
	archived.Rows = len(txns)
	telemetry.SetAttributes(span, telemetry.SpanAttrRows, archived.Rows)

	e.logger.Info("export archived",
		zap.String("key", archived.Key),
		zap.Int("rows", archived.Rows),
	)
	return archived, nil
}

func (e *Exporter) load(ctx context.Context, f TransactionListFilter) ([]*ledger.Transaction, error) {
	filter, err := f.ToDomain()
	if err != nil {
		return nil, err
	}
	filter.Filter = filter.Unpaged()
	return e.repo.FindWithFilter(ctx, filter)
}

// WriteCSV writes the header and one row per transaction. The description is
// always quoted; other fields are quoted only when they need to be.
func WriteCSV(w io.Writer, txns []*ledger.Transaction) error {
	bw := bufio.NewWriter(w)

	writeRow := func(fields []string, quoted int) error {
		for i, f := range fields {
			if i > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(csvField(f, i == quoted)); err != nil {
				return err
			}
		}
		_, err := bw.WriteString("\n")
		return err
	}

	if err := writeRow(CSVHeader, -1); err != nil {
		return err
	}
	for _, t := range txns {
		var instName string
		if inst, ok := institution.FindByID(t.InstitutionID); ok {
			instName = inst.Name
		}
		row := []string{
			t.ID.String(),
			t.Date.Format(ledger.DateLayout),
			string(t.Type),
			t.Account,
			t.Description,
			t.Amount.String(),
			t.Category,
			t.Reference,
			instName,
		}
		if err := writeRow(row, 4); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func csvField(s string, force bool) string {
	if !force && !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
