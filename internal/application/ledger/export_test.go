package ledger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	filename    string
	body        []byte
	contentType string
	err         error
}

func (a *fakeArchive) Store(ctx context.Context, filename string, body []byte, contentType string) (*ArchivedExport, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.filename, a.body, a.contentType = filename, body, contentType
	return &ArchivedExport{Key: "exports/" + filename, URL: "https://example.test/" + filename}, nil
}

func TestWriteCSV(t *testing.T) {
	txn := manualTxn(ledger.TransactionTypeInflow, "M-Pesa", 1500, day(2026, 10, 3))
	txn.Description = `Paid "in full", thanks`
	txn.Reference = "R-1"
	txn.InstitutionID = "mpesa"
	plain := manualTxn(ledger.TransactionTypeOutflow, "Cash, petty", 20, day(2026, 10, 4))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*ledger.Transaction{txn, plain}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Date,Type,Account,Description,Amount,Category,Reference,Institution", lines[0])
	assert.Equal(t,
		txn.ID.String()+`,2026-10-03,inflow,M-Pesa,"Paid ""in full"", thanks",1500,Other,R-1,M-Pesa`,
		lines[1])
	assert.Equal(t,
		plain.ID.String()+`,2026-10-04,outflow,"Cash, petty","manual",20,Other,,`,
		lines[2])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(CSVHeader, ",")+"\n", buf.String())
}

func TestExporter_ExportIsUnpaged(t *testing.T) {
	repo := new(MockTransactionRepository)
	txns := []*ledger.Transaction{manualTxn(ledger.TransactionTypeInflow, "Cash", 10, day(2026, 10, 1))}
	repo.On("FindWithFilter", mock.Anything, mock.MatchedBy(func(f ledger.TransactionFilter) bool {
		return f.Page == 0 && f.PageSize == 0 && f.Account == "Cash"
	})).Return(txns, nil)

	var buf bytes.Buffer
	rows, err := NewExporter(repo, nil, nil).Export(context.Background(), TransactionListFilter{Account: "Cash", Page: 3}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
	assert.Contains(t, buf.String(), txns[0].ID.String())
	repo.AssertExpectations(t)
}

func TestExporter_InvalidFilter(t *testing.T) {
	repo := new(MockTransactionRepository)
	_, err := NewExporter(repo, nil, nil).Export(context.Background(), TransactionListFilter{FromDate: "yesterday"}, &bytes.Buffer{})
	require.Error(t, err)
	repo.AssertNotCalled(t, "FindWithFilter", mock.Anything, mock.Anything)
}

func TestExporter_Archive(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		e := NewExporter(new(MockTransactionRepository), nil, nil)
		assert.False(t, e.ArchiveEnabled())
		_, err := e.Archive(context.Background(), TransactionListFilter{})
		assert.ErrorIs(t, err, ErrArchiveDisabled)
	})

	t.Run("uploads csv", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		repo.On("FindWithFilter", mock.Anything, mock.Anything).Return([]*ledger.Transaction{
			manualTxn(ledger.TransactionTypeInflow, "Cash", 10, day(2026, 10, 1)),
			manualTxn(ledger.TransactionTypeInflow, "Cash", 20, day(2026, 10, 2)),
		}, nil)
		archive := &fakeArchive{}
		e := NewExporter(repo, archive, nil)
		e.now = func() time.Time { return time.Date(2026, 10, 15, 9, 30, 5, 0, time.UTC) }

		got, err := e.Archive(context.Background(), TransactionListFilter{})
		require.NoError(t, err)
		assert.Equal(t, 2, got.Rows)
		assert.Equal(t, "transactions-20261015-093005.csv", archive.filename)
		assert.Equal(t, "text/csv", archive.contentType)
		assert.True(t, strings.HasPrefix(string(archive.body), "ID,Date"))
	})

	t.Run("upload error", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		repo.On("FindWithFilter", mock.Anything, mock.Anything).Return([]*ledger.Transaction{}, nil)
		archive := &fakeArchive{err: errors.New("bucket missing")}

		_, err := NewExporter(repo, archive, nil).Archive(context.Background(), TransactionListFilter{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket missing")
	})
}
