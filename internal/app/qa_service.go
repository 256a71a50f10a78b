package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"gopherai-pdfqa/internal/model"
	"gopherai-pdfqa/internal/rag"
)

var ErrInvalidInput = errors.New("invalid input")

const StatusSuccess = "success"

const publishTimeout = 2 * time.Second

type DocumentStore interface {
	Save(r io.Reader, filename string) (string, error)
	Remove(path string) error
}

type Answerer interface {
	Run(ctx context.Context, in rag.Input) (*rag.Output, error)
}

// EventPublisher receives one audit record per question.
type EventPublisher interface {
	Publish(ctx context.Context, record model.QueryRecord) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, model.QueryRecord) error { return nil }

type AskInput struct {
	RequestID string
	Filename  string
	File      io.Reader
	Question  string
}

type AskResult struct {
	Answer   string `json:"answer"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

type QAService struct {
	store     DocumentStore
	answerer  Answerer
	publisher EventPublisher
	extension string
}

func NewQAService(store DocumentStore, answerer Answerer, publisher EventPublisher, extension string) *QAService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &QAService{
		store:     store,
		answerer:  answerer,
		publisher: publisher,
		extension: strings.ToLower(extension),
	}
}

// Ask answers a question about one uploaded document. The document is on disk
// only while Ask runs.
func (s *QAService) Ask(ctx context.Context, in AskInput) (*AskResult, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	requestID := in.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := log.With().Str("request_id", requestID).Str("filename", in.Filename).Logger()
	started := time.Now()

	path, err := s.store.Save(in.File, in.Filename)
	if err != nil {
		s.publish(ctx, requestID, in.Filename, started, nil, err)
		return nil, err
	}
	defer func() {
		if err := s.store.Remove(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("remove upload failed")
		}
	}()

	out, err := s.answerer.Run(ctx, rag.Input{
		Path:     path,
		Source:   in.Filename,
		Question: strings.TrimSpace(in.Question),
	})
	s.publish(ctx, requestID, in.Filename, started, out, err)
	if err != nil {
		logger.Error().Err(err).Str("stage", string(rag.FailedStage(err))).Msg("answer question failed")
		return nil, err
	}

	logger.Info().
		Int("pages", out.PageCount).
		Int("chunks", out.ChunkCount).
		Dur("elapsed", time.Since(started)).
		Msg("question answered")
	return &AskResult{
		Answer:   out.Answer,
		Filename: in.Filename,
		Status:   StatusSuccess,
	}, nil
}

func (s *QAService) validate(in AskInput) error {
	if in.File == nil {
		return fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Question) == "" {
		return fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	name := strings.TrimSpace(in.Filename)
	if name == "" || !strings.HasSuffix(strings.ToLower(filepath.Base(name)), s.extension) {
		return fmt.Errorf("%w: please upload a %s file", ErrInvalidInput, strings.ToUpper(strings.TrimPrefix(s.extension, ".")))
	}
	return nil
}

func (s *QAService) publish(ctx context.Context, requestID, filename string, started time.Time, out *rag.Output, runErr error) {
	record := model.QueryRecord{
		RequestID:  requestID,
		Filename:   filepath.Base(filename),
		Status:     model.QueryStatusSuccess,
		DurationMS: time.Since(started).Milliseconds(),
		CreatedAt:  started.UTC(),
	}
	if out != nil {
		record.PageCount = out.PageCount
		record.ChunkCount = out.ChunkCount
	}
	if runErr != nil {
		record.Status = model.QueryStatusError
		record.FailedStage = string(rag.FailedStage(runErr))
		record.Error = runErr.Error()
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, record); err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Msg("publish query record failed")
	}
}
