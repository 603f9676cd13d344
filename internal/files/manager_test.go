package files

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return m
}

func TestManager_SaveAndGet(t *testing.T) {
	m := newTestManager(t)

	upload, err := m.Save("Semester Attendance.xlsx", strings.NewReader("workbook bytes"))
	require.NoError(t, err)

	_, err = uuid.Parse(upload.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Semester Attendance.xlsx", upload.Filename)
	assert.Equal(t, int64(len("workbook bytes")), upload.Size)
	assert.True(t, strings.HasSuffix(upload.Path, ".xlsx"))
	assert.FileExists(t, upload.Path)

	got, ok := m.Get(upload.ID)
	require.True(t, ok)
	assert.Equal(t, upload, got)
}

func TestManager_Open(t *testing.T) {
	m := newTestManager(t)

	upload, err := m.Save("roster.xlsx", strings.NewReader("content"))
	require.NoError(t, err)

	rc, err := m.Open(upload.ID)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestManager_Open_Unknown(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Open("no-such-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestManager_Remove(t *testing.T) {
	m := newTestManager(t)

	upload, err := m.Save("roster.xlsx", strings.NewReader("content"))
	require.NoError(t, err)

	require.NoError(t, m.Remove(upload.ID))

	_, ok := m.Get(upload.ID)
	assert.False(t, ok)
	_, err = os.Stat(upload.Path)
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, m.Remove(upload.ID))
}

func TestManager_List_NewestFirst(t *testing.T) {
	m := newTestManager(t)

	first, err := m.Save("a.xlsx", strings.NewReader("a"))
	require.NoError(t, err)

	// Ensure distinct timestamps for ordering
	time.Sleep(5 * time.Millisecond)

	second, err := m.Save("b.xlsx", strings.NewReader("b"))
	require.NoError(t, err)

	uploads := m.List()
	require.Len(t, uploads, 2)
	assert.Equal(t, second.ID, uploads[0].ID)
	assert.Equal(t, first.ID, uploads[1].ID)
}
