package pdfextract

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherai-pdfqa/internal/pkg/pdfextract/pdftest"
)

func writePDF(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestExtractSinglePage(t *testing.T) {
	path := writePDF(t, pdftest.Build("The sky is blue."))

	segments, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, 1, segments[0].Page)
	assert.Contains(t, segments[0].Text, "The sky is blue.")
}

func TestExtractSkipsPagesWithoutText(t *testing.T) {
	path := writePDF(t, pdftest.Build("First page", "", "Third page"))

	segments, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, 1, segments[0].Page)
	assert.Contains(t, segments[0].Text, "First page")
	assert.Equal(t, 3, segments[1].Page)
	assert.Contains(t, segments[1].Text, "Third page")
}

func TestExtractEmptyFile(t *testing.T) {
	path := writePDF(t, nil)

	segments, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestExtractCorruptFile(t *testing.T) {
	path := writePDF(t, []byte("this is not a pdf at all"))

	_, err := New().Extract(context.Background(), path)
	assert.Error(t, err)
}

func TestExtractMissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestExtractCanceled(t *testing.T) {
	path := writePDF(t, pdftest.Build("text"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCleanTextDropsInvalidUTF8(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"\xff\xfe bad utf8 blue", " bad utf8 blue"},
		{"caf\xc3", "caf"},
		{"naïve café", "naïve café"},
		{"\xff\xfe", ""},
	}
	for _, tt := range tests {
		got := cleanText(tt.in)
		assert.True(t, utf8.ValidString(got), "%q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}
