package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"proformacli/pkg/contracts/domain"
)

// Manager persists uploaded workbooks under a single directory, one file
// per upload keyed by UUID. The in-memory index is rebuilt lazily from
// registered uploads only; files dropped into the directory out of band
// are ignored.
type Manager struct {
	dir    string
	logger *slog.Logger

	mu      sync.RWMutex
	uploads map[string]domain.Upload
}

// NewManager creates a manager rooted at dir, creating it if needed.
func NewManager(dir string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Manager{
		dir:     dir,
		logger:  logger,
		uploads: make(map[string]domain.Upload),
	}, nil
}

// Save stores the content of r as a new upload and returns its record.
func (m *Manager) Save(filename string, r io.Reader) (domain.Upload, error) {
	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(m.dir, id+ext)

	file, err := os.Create(path)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("failed to create upload file: %w", err)
	}

	size, err := io.Copy(file, r)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return domain.Upload{}, fmt.Errorf("failed to write upload file: %w", err)
	}

	upload := domain.Upload{
		ID:         id,
		Filename:   filepath.Base(filename),
		Path:       path,
		Size:       size,
		UploadedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.uploads[id] = upload
	m.mu.Unlock()

	m.logger.Info("Upload stored",
		slog.String("upload_id", id),
		slog.String("filename", upload.Filename),
		slog.Int64("size", size))

	return upload, nil
}

// Get returns the upload record for id.
func (m *Manager) Get(id string) (domain.Upload, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	upload, ok := m.uploads[id]
	return upload, ok
}

// Open opens the stored file for an upload.
func (m *Manager) Open(id string) (io.ReadCloser, error) {
	upload, ok := m.Get(id)
	if !ok {
		return nil, fmt.Errorf("upload %s not found", id)
	}
	file, err := os.Open(upload.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", id, err)
	}
	return file, nil
}

// Remove deletes an upload and its backing file.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	upload, ok := m.uploads[id]
	if ok {
		delete(m.uploads, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("upload %s not found", id)
	}

	if err := os.Remove(upload.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove upload file: %w", err)
	}

	m.logger.Info("Upload removed", slog.String("upload_id", id))
	return nil
}

// List returns all known uploads, newest first.
func (m *Manager) List() []domain.Upload {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uploads := make([]domain.Upload, 0, len(m.uploads))
	for _, upload := range m.uploads {
		uploads = append(uploads, upload)
	}
	sort.Slice(uploads, func(i, j int) bool {
		return uploads[i].UploadedAt.After(uploads[j].UploadedAt)
	})
	return uploads
}
