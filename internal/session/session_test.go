package session

import (
	goerrors "errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = errors.NewLogger(slog.LevelError)

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		TTL:             30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxSessions:     100,
		MaxChatTurns:    50,
	}
}

func sampleResult() types.ExtractionResult {
	return types.ExtractionResult{
		Text:      "Jane Doe\njane@example.com",
		PageCount: 2,
		Method:    types.ExtractionMethodTextLayer,
		Fields: types.ResumeFields{
			Name:  "Jane Doe",
			Email: "jane@example.com",
		},
	}
}

func TestCreateAndGet(t *testing.T) {
	store := NewStore(testConfig(), testLogger)

	created := store.Create("resume.pdf", sampleResult())
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "resume.pdf", created.FileName)
	assert.Equal(t, types.ExtractionMethodTextLayer, created.Method)

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Jane Doe", got.Fields.Name)
	assert.Equal(t, 1, store.Count())
}

func TestGetUnknownSession(t *testing.T) {
	store := NewStore(testConfig(), testLogger)

	_, err := store.Get("no-such-id")
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, goerrors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeSessionNotFound, appErr.Code)
}

func TestGetRefusesExpiredSession(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = 10 * time.Millisecond
	store := NewStore(cfg, testLogger)

	created := store.Create("resume.pdf", sampleResult())
	time.Sleep(25 * time.Millisecond)

	_, err := store.Get(created.ID)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, goerrors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeSessionNotFound, appErr.Code)
}

func TestEvictExpiredRemovesStaleSessions(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = 10 * time.Millisecond
	store := NewStore(cfg, testLogger)

	store.Create("old.pdf", sampleResult())
	time.Sleep(25 * time.Millisecond)
	fresh := store.Create("fresh.pdf", sampleResult())

	store.evictExpired()

	assert.Equal(t, 1, store.Count())
	_, err := store.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSetAnalysisReplacesSameType(t *testing.T) {
	store := NewStore(testConfig(), testLogger)
	created := store.Create("resume.pdf", sampleResult())

	first := types.AnalyzeResumeOutput{
		AnalysisType: types.AnalysisIssues,
		Content:      "first pass",
	}
	require.NoError(t, store.SetAnalysis(created.ID, first))

	second := first
	second.Content = "second pass"
	require.NoError(t, store.SetAnalysis(created.ID, second))

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	require.Len(t, got.Analyses, 1)
	assert.Equal(t, "second pass", got.Analyses[types.AnalysisIssues].Content)
}

func TestAppendChatTrimsHistory(t *testing.T) {
	cfg := testConfig()
	cfg.MaxChatTurns = 4
	store := NewStore(cfg, testLogger)
	created := store.Create("resume.pdf", sampleResult())

	for i := 0; i < 5; i++ {
		question := fmt.Sprintf("question %d", i)
		answer := fmt.Sprintf("answer %d", i)
		require.NoError(t, store.AppendChat(created.ID, question, answer))
	}

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	require.Len(t, got.ChatHistory, 4)
	assert.Equal(t, "question 3", got.ChatHistory[0].Content)
	assert.Equal(t, "answer 4", got.ChatHistory[3].Content)
}

func TestSetJobContext(t *testing.T) {
	store := NewStore(testConfig(), testLogger)
	created := store.Create("resume.pdf", sampleResult())

	require.NoError(t, store.SetJobContext(created.ID, "Senior Go engineer"))

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Senior Go engineer", got.JobContext)
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSessions = 3
	store := NewStore(cfg, testLogger)

	oldest := store.Create("a.pdf", sampleResult())
	time.Sleep(2 * time.Millisecond)
	second := store.Create("b.pdf", sampleResult())
	time.Sleep(2 * time.Millisecond)
	store.Create("c.pdf", sampleResult())
	time.Sleep(2 * time.Millisecond)
	store.Create("d.pdf", sampleResult())

	assert.Equal(t, 3, store.Count())
	_, err := store.Get(oldest.ID)
	assert.Error(t, err)
	_, err = store.Get(second.ID)
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	store := NewStore(testConfig(), testLogger)
	created := store.Create("resume.pdf", sampleResult())

	store.Delete(created.ID)

	assert.Equal(t, 0, store.Count())
	_, err := store.Get(created.ID)
	assert.Error(t, err)
}

func TestSnapshotIsolation(t *testing.T) {
	store := NewStore(testConfig(), testLogger)
	created := store.Create("resume.pdf", sampleResult())
	require.NoError(t, store.AppendChat(created.ID, "q", "a"))

	got, err := store.Get(created.ID)
	require.NoError(t, err)

	// Mutating the copy must not leak into the store
	got.ChatHistory[0].Content = "tampered"

	again, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "q", again.ChatHistory[0].Content)
}
