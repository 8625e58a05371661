package media

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog-backend/internal/kv"
	"worklog-backend/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewStore(t.TempDir(), kv.NewMemory(), logger)
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSaveCopiesFileAndRecordsMetadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	source := writeSource(t, "site.jpg", "jpeg-bytes")

	record, err := store.Save(ctx, 7, source, "image/jpeg", "site.jpg")
	require.NoError(t, err)
	assert.Equal(t, model.MediaImage, record.Type)
	assert.Equal(t, "site.jpg", record.Name)
	assert.Equal(t, record.URI, record.ID)

	copied, err := os.ReadFile(record.URI)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(copied))

	records, err := store.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)
}

func TestSaveSameNameTwiceYieldsDistinctEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Save(ctx, 7, writeSource(t, "photo.png", "one"), "image/png", "photo.png")
	require.NoError(t, err)
	second, err := store.Save(ctx, 7, writeSource(t, "photo.png", "two"), "image/png", "photo.png")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	records, err := store.List(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSaveDerivesExtension(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	testCases := []struct {
		name         string
		mime         string
		originalName string
		wantName     string
		wantType     model.MediaType
	}{
		{"mime wins", "application/pdf", "contract", "contract.pdf", model.MediaFile},
		{"original extension kept", "", "report.docx", "report.docx", model.MediaFile},
		{"video classified", "video/mp4", "clip", "clip.mp4", model.MediaVideo},
		{"no name no mime", "", "", "", model.MediaFile},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			record, err := store.Save(ctx, 9, writeSource(t, "src.bin", "x"), tc.mime, tc.originalName)
			require.NoError(t, err)
			if tc.originalName == "" {
				// A generated name still carries the "file" base.
				assert.Contains(t, record.Name, "media-")
			} else {
				assert.Equal(t, tc.wantName, record.Name)
			}
			assert.Equal(t, tc.wantType, record.Type)
		})
	}
}

func TestDeleteRemovesOnlyMatchedEntry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Save(ctx, 7, writeSource(t, "a.png", "one"), "image/png", "a.png")
	require.NoError(t, err)
	second, err := store.Save(ctx, 7, writeSource(t, "a.png", "two"), "image/png", "a.png")
	require.NoError(t, err)

	remaining, err := store.Delete(ctx, 7, []string{first.ID})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, second.ID, remaining[0].ID)

	_, err = os.Stat(first.URI)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(second.URI)
	assert.NoError(t, err)
}

func TestDeleteIsIdempotentWhenFileAlreadyGone(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record, err := store.Save(ctx, 7, writeSource(t, "a.png", "one"), "image/png", "a.png")
	require.NoError(t, err)

	// The file disappears out-of-band before the delete.
	require.NoError(t, os.Remove(record.URI))

	remaining, err := store.Delete(ctx, 7, []string{record.ID})
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// A second delete of the same id is a no-op.
	remaining, err = store.Delete(ctx, 7, []string{record.ID})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDeleteIgnoresPathsWithoutARecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record, err := store.Save(ctx, 7, writeSource(t, "a.png", "one"), "image/png", "a.png")
	require.NoError(t, err)

	// A path with no metadata record must survive, even though the
	// process could write it.
	outsider := writeSource(t, "secret.txt", "keep me")

	remaining, err := store.Delete(ctx, 7, []string{outsider})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, record.ID, remaining[0].ID)

	content, err := os.ReadFile(outsider)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(content))
	_, err = os.Stat(record.URI)
	assert.NoError(t, err)
}
