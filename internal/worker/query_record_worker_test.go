package worker

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherai-pdfqa/internal/model"
)

type memoryStore struct {
	records []model.QueryRecord
	err     error
}

func (s *memoryStore) Create(record *model.QueryRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, *record)
	return nil
}

func TestHandleStoresRecord(t *testing.T) {
	store := &memoryStore{}
	w := NewQueryRecordWorker(nil, store, "q")

	body, err := json.Marshal(model.QueryRecord{
		ID:         99,
		RequestID:  "req-1",
		Filename:   "a.pdf",
		Status:     model.QueryStatusSuccess,
		ChunkCount: 3,
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, w.handle(body))
	require.Len(t, store.records, 1)
	assert.Equal(t, "req-1", store.records[0].RequestID)
	assert.Equal(t, 3, store.records[0].ChunkCount)
	assert.Zero(t, store.records[0].ID)
}

func TestHandleRejectsInvalidRecords(t *testing.T) {
	w := NewQueryRecordWorker(nil, &memoryStore{}, "q")

	assert.ErrorIs(t, w.handle([]byte("{not json")), errInvalidRecord)
	assert.ErrorIs(t, w.handle([]byte(`{"filename":"a.pdf"}`)), errInvalidRecord)
}

func TestHandleReturnsStoreError(t *testing.T) {
	boom := errors.New("db down")
	w := NewQueryRecordWorker(nil, &memoryStore{err: boom}, "q")

	err := w.handle([]byte(`{"request_id":"r"}`))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, errInvalidRecord)
}

func TestCloseWithoutStart(t *testing.T) {
	w := NewQueryRecordWorker(nil, &memoryStore{}, "q")
	w.Close()
}
