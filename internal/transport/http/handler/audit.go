package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gopherai-pdfqa/internal/model"
	"gopherai-pdfqa/internal/transport/http/response"
)

type RecordLister interface {
	ListRecent(limit int) ([]model.QueryRecord, error)
}

type AuditHandler struct {
	records RecordLister
}

func NewAuditHandler(records RecordLister) *AuditHandler {
	return &AuditHandler{records: records}
}

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// ListQueries returns the most recent audit records, newest first.
func (h *AuditHandler) ListQueries(c *gin.Context) {
	limit, err := parseAuditLimit(c.Query("limit"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.records.ListRecent(limit)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "list query records failed")
		return
	}
	response.OK(c, gin.H{"records": records})
}

// parseAuditLimit accepts a positive integer. Values above maxAuditLimit fall
// back to the default.
func parseAuditLimit(raw string) (int, error) {
	if raw == "" {
		return defaultAuditLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	if n > maxAuditLimit {
		return defaultAuditLimit, nil
	}
	return n, nil
}
