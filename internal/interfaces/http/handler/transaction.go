package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	appledger "github.com/erp/cashbook/internal/application/ledger"
	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/erp/cashbook/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionService is the ledger use-case surface the handler needs
type TransactionService interface {
	Create(ctx context.Context, req appledger.TransactionRequest) (*appledger.TransactionResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*appledger.TransactionResponse, error)
	List(ctx context.Context, f appledger.TransactionListFilter) (shared.Paginated[appledger.TransactionResponse], error)
	Update(ctx context.Context, id uuid.UUID, req appledger.TransactionRequest) (*appledger.TransactionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ClearCheque(ctx context.Context, id uuid.UUID) (*appledger.TransactionResponse, error)
	BounceCheque(ctx context.Context, id uuid.UUID) (*appledger.TransactionResponse, error)
}

// Exporter renders and archives CSV exports
type Exporter interface {
	Export(ctx context.Context, f appledger.TransactionListFilter, w io.Writer) (int, error)
	Archive(ctx context.Context, f appledger.TransactionListFilter) (*appledger.ArchivedExport, error)
	Filename() string
}

// TransactionHandler serves manual entries, the cheque lifecycle and exports
type TransactionHandler struct {
	BaseHandler
	service  TransactionService
	exporter Exporter
}

// NewTransactionHandler creates a TransactionHandler
func NewTransactionHandler(service TransactionService, exporter Exporter) *TransactionHandler {
	return &TransactionHandler{service: service, exporter: exporter}
}

// List returns a filtered page of transactions.
// GET /transactions
func (h *TransactionHandler) List(c *gin.Context) {
	var filter appledger.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Create records a manual entry.
// POST /transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	var req appledger.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	txn, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txn)
}

// Get returns a transaction.
// GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	txn, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// Update replaces the editable fields of a transaction.
// PUT /transactions/:id
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req appledger.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	txn, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// Delete removes a transaction.
// DELETE /transactions/:id
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Clear marks a pending cheque as cleared.
// POST /transactions/:id/clear
func (h *TransactionHandler) Clear(c *gin.Context) {
	h.transition(c, h.service.ClearCheque)
}

// Bounce marks a pending cheque as bounced.
// POST /transactions/:id/bounce
func (h *TransactionHandler) Bounce(c *gin.Context) {
	h.transition(c, h.service.BounceCheque)
}

func (h *TransactionHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID) (*appledger.TransactionResponse, error)) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	txn, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// Export downloads the filtered transactions as CSV. The list filters apply;
// paging does not.
// GET /transactions/export
func (h *TransactionHandler) Export(c *gin.Context) {
	var filter appledger.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	var buf bytes.Buffer
	rows, err := h.exporter.Export(c.Request.Context(), filter, &buf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+h.exporter.Filename()+`"`)
	c.Header("X-Total-Count", strconv.Itoa(rows))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Archive uploads the filtered export and returns a time-limited link.
// POST /transactions/export/archive
func (h *TransactionHandler) Archive(c *gin.Context) {
	var filter appledger.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	archived, err := h.exporter.Archive(c.Request.Context(), filter)
	if errors.Is(err, appledger.ErrArchiveDisabled) {
		h.ErrorWithCode(c, dto.ErrCodeUnavailable, "Export archiving is not configured")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, archived)
}
