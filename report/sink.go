package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FilesystemSink writes evidence artifacts where the operator expects them:
// screenshots on the desktop, extracted text snippets in the downloads
// folder. Both directories are created on first write.
type FilesystemSink struct {
	// DesktopDir receives screenshots.
	DesktopDir string

	// DownloadsDir receives captured text artifacts such as a review
	// widget embed code.
	DownloadsDir string
}

// SaveScreenshot writes PNG bytes to the desktop directory and returns the
// absolute path.
func (s *FilesystemSink) SaveScreenshot(name string, png []byte) (string, error) {
	return writeArtifact(s.DesktopDir, name, png)
}

// SaveText writes a text snippet to the downloads directory and returns the
// absolute path.
func (s *FilesystemSink) SaveText(name, content string) (string, error) {
	return writeArtifact(s.DownloadsDir, name, []byte(content))
}

func writeArtifact(dir, name string, data []byte) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("artifact directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", path, err)
	}
	return path, nil
}

// MemorySink collects evidence in memory. Tests use it to assert what a
// driver captured without touching the filesystem.
type MemorySink struct {
	mu          sync.Mutex
	screenshots map[string][]byte
	texts       map[string]string
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		screenshots: make(map[string][]byte),
		texts:       make(map[string]string),
	}
}

// SaveScreenshot stores the bytes under the given name.
func (m *MemorySink) SaveScreenshot(name string, png []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.screenshots[name] = png
	return name, nil
}

// SaveText stores the snippet under the given name.
func (m *MemorySink) SaveText(name, content string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts[name] = content
	return name, nil
}

// Screenshot returns a stored screenshot by name.
func (m *MemorySink) Screenshot(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.screenshots[name]
	return b, ok
}

// Text returns a stored snippet by name.
func (m *MemorySink) Text(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.texts[name]
	return t, ok
}
