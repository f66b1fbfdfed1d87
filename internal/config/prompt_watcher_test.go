package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func watcherTestConfig(files ...string) *Config {
	cfg := &Config{}
	if len(files) > 0 {
		cfg.AI.Analyze.CustomPrompts.SystemPrompts.AnalyzeResumeFile = files[0]
	}
	if len(files) > 1 {
		cfg.AI.Ask.CustomPrompts.SystemPrompts.AskQuestionFile = files[1]
	}
	return cfg
}

func TestCollectPromptFilesDeduplicates(t *testing.T) {
	cfg := &Config{}
	cfg.AI.CustomPrompts.SystemPrompts.AnalyzeResumeFile = "prompts/system.analyze.md"
	cfg.AI.Analyze.CustomPrompts.SystemPrompts.AnalyzeResumeFile = "prompts/system.analyze.md"
	cfg.AI.Ask.CustomPrompts.UserPrompts.AskQuestionFile = "prompts/user.ask.md"

	files := cfg.collectPromptFiles()
	if len(files) != 2 {
		t.Fatalf("Expected 2 unique prompt files, got %d: %v", len(files), files)
	}
}

func TestPromptWatcherNoFilesIsNoop(t *testing.T) {
	pw := NewPromptWatcher(watcherTestConfig(), 0, nil)

	if err := pw.Start(); err != nil {
		t.Fatalf("Start with no files should not error: %v", err)
	}
	if pw.IsRunning() {
		t.Error("Watcher should not be running when no prompt files are configured")
	}
	if err := pw.Stop(); err != nil {
		t.Errorf("Stop on a never-started watcher should not error: %v", err)
	}
}

func TestPromptWatcherStartStop(t *testing.T) {
	tempDir := t.TempDir()
	promptFile := filepath.Join(tempDir, "system.analyze.md")
	if err := os.WriteFile(promptFile, []byte("Initial prompt"), 0600); err != nil {
		t.Fatalf("Failed to create prompt file: %v", err)
	}

	pw := NewPromptWatcher(watcherTestConfig(promptFile), 10*time.Millisecond, nil)

	if err := pw.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	if !pw.IsRunning() {
		t.Fatal("Watcher should be running after Start")
	}
	if err := pw.Start(); err == nil {
		t.Error("Second Start should error while watcher is running")
	}

	watched := pw.WatchedFiles()
	if len(watched) != 1 || watched[0] != promptFile {
		t.Errorf("Expected watched files [%s], got %v", promptFile, watched)
	}

	if err := pw.Stop(); err != nil {
		t.Fatalf("Failed to stop watcher: %v", err)
	}
	if pw.IsRunning() {
		t.Error("Watcher should not be running after Stop")
	}
}

func TestPromptWatcherReloadPicksUpChanges(t *testing.T) {
	tempDir := t.TempDir()
	promptFile := filepath.Join(tempDir, "system.analyze.md")
	if err := os.WriteFile(promptFile, []byte("Initial prompt"), 0600); err != nil {
		t.Fatalf("Failed to create prompt file: %v", err)
	}

	cfg := watcherTestConfig(promptFile)
	if err := cfg.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Initial prompt load failed: %v", err)
	}
	if got := GetPromptsForOperation("analyze").SystemPrompts.AnalyzeResume; got != "Initial prompt" {
		t.Fatalf("Expected initial prompt content, got %q", got)
	}

	if err := os.WriteFile(promptFile, []byte("Updated prompt"), 0600); err != nil {
		t.Fatalf("Failed to update prompt file: %v", err)
	}

	pw := NewPromptWatcher(cfg, 10*time.Millisecond, nil)
	pw.reloadPrompts()

	if got := GetPromptsForOperation("analyze").SystemPrompts.AnalyzeResume; got != "Updated prompt" {
		t.Errorf("Expected reloaded prompt content, got %q", got)
	}
}

func TestHasFileChangedTracksModTime(t *testing.T) {
	tempDir := t.TempDir()
	promptFile := filepath.Join(tempDir, "user.ask.md")
	if err := os.WriteFile(promptFile, []byte("v1"), 0600); err != nil {
		t.Fatalf("Failed to create prompt file: %v", err)
	}

	pw := NewPromptWatcher(watcherTestConfig(promptFile), 0, nil)
	if err := pw.updateModTimes(); err != nil {
		t.Fatalf("updateModTimes failed: %v", err)
	}

	if pw.hasFileChanged(promptFile) {
		t.Error("Unchanged file reported as changed")
	}

	// Bump the mod time past filesystem timestamp granularity
	newTime := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(promptFile, newTime, newTime); err != nil {
		t.Fatalf("Failed to change file times: %v", err)
	}

	if !pw.hasFileChanged(promptFile) {
		t.Error("Modified file not reported as changed")
	}

	// Deleting a tracked file counts as a change once
	if err := os.Remove(promptFile); err != nil {
		t.Fatalf("Failed to remove prompt file: %v", err)
	}
	if !pw.hasFileChanged(promptFile) {
		t.Error("Deleted file not reported as changed")
	}
	if pw.hasFileChanged(promptFile) {
		t.Error("Already-deleted file reported as changed again")
	}
}
