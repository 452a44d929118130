package feedback

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	entries []Entry
	err     error
}

func (m *memoryStore) Save(_ context.Context, e Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryStore) Close() error { return nil }

func TestSubmitStoresTrimmedText(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, 0)

	result, err := svc.Submit(context.Background(), "  very helpful  ")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, MessageThanks, result.Message)
	require.Len(t, store.entries, 1)
	assert.Equal(t, "very helpful", store.entries[0].Text)
}

func TestSubmitValidation(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, 10)

	result, err := svc.Submit(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyFeedback)
	assert.False(t, result.Success)
	assert.Equal(t, MessageEmpty, result.Message)

	_, err = svc.Submit(context.Background(), strings.Repeat("a", 11))
	assert.ErrorIs(t, err, ErrFeedbackTooLong)
	assert.Empty(t, store.entries)

	result, err = svc.SubmitFeedback(context.Background(), "")
	assert.NoError(t, err)
	assert.False(t, result.Success)
}

func TestSubmitStoreFailure(t *testing.T) {
	svc := NewService(&memoryStore{err: errors.New("disk full")}, 0)
	result, err := svc.Submit(context.Background(), "ok")
	assert.Error(t, err)
	assert.Equal(t, MessageInternal, result.Message)
}

func TestFileStoreAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.txt")
	store := NewFileStore(path)
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	require.NoError(t, store.Save(context.Background(), Entry{Text: "first", CreatedAt: at}))
	require.NoError(t, store.Save(context.Background(), Entry{Text: "two\nlines", CreatedAt: at}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 09:30:00: first\n2024-03-01 09:30:00: two lines\n", string(data))
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, Entry{Text: "older", CreatedAt: base}))
	require.NoError(t, store.Save(ctx, Entry{Text: "newer", CreatedAt: base.Add(time.Minute)}))

	entries, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "newer", entries[0].Text)
	assert.True(t, entries[0].CreatedAt.Equal(base.Add(time.Minute)))
}
