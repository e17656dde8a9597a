package handler

import (
	"strings"

	"github.com/erp/cashbook/internal/domain/institution"
	"github.com/erp/cashbook/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// InstitutionHandler serves the read-only institution directory
type InstitutionHandler struct {
	BaseHandler
}

// NewInstitutionHandler creates an InstitutionHandler
func NewInstitutionHandler() *InstitutionHandler {
	return &InstitutionHandler{}
}

// InstitutionQuery filters the directory
type InstitutionQuery struct {
	Type    string `form:"type" binding:"omitempty,oneof=bank mobile_money digital_wallet"`
	Country string `form:"country" binding:"max=50"`
}

// List returns the directory, optionally filtered by type and country
func (h *InstitutionHandler) List(c *gin.Context) {
	var q InstitutionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	var items []institution.Institution
	if q.Type != "" {
		items = institution.ListByType(institution.Type(q.Type))
	} else {
		items = institution.ListAll()
	}

	if country := strings.TrimSpace(q.Country); country != "" {
		filtered := make([]institution.Institution, 0, len(items))
		for _, inst := range items {
			if inst.InCountry(country) {
				filtered = append(filtered, inst)
			}
		}
		items = filtered
	}

	h.Success(c, items)
}

// Get returns one institution by its id
func (h *InstitutionHandler) Get(c *gin.Context) {
	inst, ok := institution.FindByID(c.Param("id"))
	if !ok {
		h.ErrorWithCode(c, dto.ErrCodeNotFound, "Institution not found")
		return
	}
	h.Success(c, inst)
}
