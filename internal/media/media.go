// Package media stores project file attachments locally: the file is
// copied into a project-scoped folder under the sandbox root and a
// metadata record is kept in the key-value store. Media is never synced
// to the remote backend.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"worklog-backend/internal/kv"
	"worklog-backend/internal/model"
)

// Store is the project media sandbox.
type Store struct {
	root   string
	store  kv.Store
	logger *logrus.Logger
	mu     sync.Mutex // serializes metadata read-modify-writes
}

// NewStore creates a media store rooted at the given sandbox directory.
func NewStore(root string, store kv.Store, logger *logrus.Logger) *Store {
	return &Store{root: root, store: store, logger: logger}
}

func mediaKey(projectID int64) string {
	return fmt.Sprintf("worklog:project:%d:media", projectID)
}

var hasExt = regexp.MustCompile(`\.[a-zA-Z0-9]+$`)

func extByMime(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "." + strings.TrimPrefix(mimeType, "image/")
	case strings.HasPrefix(mimeType, "video/"):
		return "." + strings.TrimPrefix(mimeType, "video/")
	}
	known := map[string]string{
		"application/pdf": ".pdf",
		"text/plain":      ".txt",
		"application/zip": ".zip",
	}
	return known[mimeType]
}

func typeByMime(mimeType string) model.MediaType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return model.MediaImage
	case strings.HasPrefix(mimeType, "video/"):
		return model.MediaVideo
	}
	return model.MediaFile
}

func ensureExt(name, ext string) string {
	if name == "" {
		if ext != "" {
			return "file" + ext
		}
		return "file"
	}
	if hasExt.MatchString(name) || ext == "" {
		return name
	}
	return name + ext
}

// Save copies the file at sourcePath into the project's folder under a
// collision-resistant name and appends a metadata record. The returned
// record's ID is the destination path.
func (s *Store) Save(ctx context.Context, projectID int64, sourcePath, mimeType, originalName string) (model.ProjectMedia, error) {
	folder := filepath.Join(s.root, strconv.FormatInt(projectID, 10))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return model.ProjectMedia{}, fmt.Errorf("failed to create media folder %s: %w", folder, err)
	}

	ext := extByMime(mimeType)
	if ext == "" && originalName != "" {
		ext = filepath.Ext(originalName)
	}
	name := originalName
	if name == "" {
		name = fmt.Sprintf("media-%d", time.Now().UnixMilli())
	}
	safeName := ensureExt(filepath.Base(name), ext)

	dest := filepath.Join(folder, fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString()[:6], safeName))
	if err := copyFile(sourcePath, dest); err != nil {
		return model.ProjectMedia{}, fmt.Errorf("failed to copy media into sandbox: %w", err)
	}

	record := model.ProjectMedia{
		ID:        dest,
		ProjectID: projectID,
		URI:       dest,
		Type:      typeByMime(mimeType),
		Name:      safeName,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load(ctx, projectID)
	if err != nil {
		return model.ProjectMedia{}, err
	}
	records = append(records, record)
	if err := s.save(ctx, projectID, records); err != nil {
		return model.ProjectMedia{}, err
	}
	return record, nil
}

// List returns all metadata records for the project.
func (s *Store) List(ctx context.Context, projectID int64) ([]model.ProjectMedia, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, projectID)
}

// Delete removes the metadata records matching the given ids (matched
// by id or uri) and best-effort deletes their underlying files,
// ignoring files that are already gone. Only files belonging to a
// matched record of this project are ever touched; ids that match no
// record are ignored. It returns the remaining records.
func (s *Store) Delete(ctx context.Context, projectID int64, ids []string) ([]model.ProjectMedia, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	remaining := records[:0]
	var matched []model.ProjectMedia
	for _, record := range records {
		if wanted[record.ID] || wanted[record.URI] {
			matched = append(matched, record)
			continue
		}
		remaining = append(remaining, record)
	}
	if err := s.save(ctx, projectID, remaining); err != nil {
		return nil, err
	}

	for _, record := range matched {
		if err := os.Remove(record.URI); err != nil && !os.IsNotExist(err) {
			s.logger.Warnf("could not delete media file %s: %v", record.URI, err)
		}
	}
	return remaining, nil
}

func (s *Store) load(ctx context.Context, projectID int64) ([]model.ProjectMedia, error) {
	raw, ok, err := s.store.Get(ctx, mediaKey(projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to read media index: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var records []model.ProjectMedia
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal media index: %w", err)
	}
	return records, nil
}

func (s *Store) save(ctx context.Context, projectID int64, records []model.ProjectMedia) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal media index: %w", err)
	}
	return s.store.Set(ctx, mediaKey(projectID), raw)
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(to)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Close()
}
