package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gopherai-pdfqa/internal/app"
	"gopherai-pdfqa/internal/rag"
	"gopherai-pdfqa/internal/transport/http/middleware"
	"gopherai-pdfqa/internal/transport/http/response"
)

// room for multipart boundaries and the question field
const multipartOverhead = 1 << 20

type Asker interface {
	Ask(ctx context.Context, in app.AskInput) (*app.AskResult, error)
}

type UploadHandler struct {
	qa       Asker
	maxBytes int64
}

func NewUploadHandler(qa Asker, maxBytes int64) *UploadHandler {
	return &UploadHandler{qa: qa, maxBytes: maxBytes}
}

func (h *UploadHandler) UploadPDF(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusBadRequest, h.tooLargeMessage())
			return
		}
		response.Error(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > h.maxBytes {
		response.Error(c, http.StatusBadRequest, h.tooLargeMessage())
		return
	}
	question := c.PostForm("question")
	if strings.TrimSpace(question) == "" {
		response.Error(c, http.StatusBadRequest, "question is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "read uploaded file failed")
		return
	}
	defer file.Close()

	result, err := h.qa.Ask(c.Request.Context(), app.AskInput{
		RequestID: c.GetString(middleware.ContextRequestIDKey),
		Filename:  fileHeader.Filename,
		File:      file,
		Question:  question,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, rag.ErrEmptyDocument):
			response.Error(c, http.StatusBadRequest, rag.ErrEmptyDocument.Error())
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "RAG Error: "+err.Error())
		}
		return
	}
	response.OK(c, result)
}

func (h *UploadHandler) tooLargeMessage() string {
	return fmt.Sprintf("file exceeds the %d MB upload limit", h.maxBytes>>20)
}
