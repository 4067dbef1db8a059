package termsession

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// SessionConfig is the persisted, per-tab launch and display configuration.
type SessionConfig struct {
	ID              string   `yaml:"id"`
	Title           string   `yaml:"title,omitempty"`
	ProfileName     string   `yaml:"profile,omitempty"`
	Shell           string   `yaml:"shell,omitempty"`
	Args            []string `yaml:"args,omitempty"`
	WorkingDir      string   `yaml:"working_dir,omitempty"`
	Rows            int      `yaml:"rows,omitempty"`
	Cols            int      `yaml:"cols,omitempty"`
	ScrollbackLines int      `yaml:"scrollback_lines,omitempty"`
	TabIndex        int      `yaml:"tab_index"`
}

const (
	defaultRows            = 25
	defaultCols            = 80
	defaultScrollbackLines = 10000
)

// applyDefaults fills in defensive defaults for zero-value fields so a
// malformed or partial document never produces an unusable session.
func (c *SessionConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Shell == "" {
		c.Shell = defaultShell()
	}
	if c.Rows <= 0 {
		c.Rows = defaultRows
	}
	if c.Cols <= 0 {
		c.Cols = defaultCols
	}
	if c.ScrollbackLines <= 0 {
		c.ScrollbackLines = defaultScrollbackLines
	}
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// Serialize marshals the config to YAML bytes.
func (c *SessionConfig) Serialize() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, ErrSerializationFailed
	}
	return data, nil
}

// DeserializeSessionConfig parses a YAML document into a SessionConfig,
// applying defensive defaults to any missing or invalid field rather than
// failing the whole document.
func DeserializeSessionConfig(data []byte) *SessionConfig {
	var c SessionConfig
	_ = yaml.Unmarshal(data, &c) // malformed input just leaves fields zero
	c.applyDefaults()
	return &c
}

// sessionsDocument is the on-disk shape for the ordered list of open tabs.
type sessionsDocument struct {
	Sessions []SessionConfig `yaml:"sessions"`
}

// LoadSessions reads the ordered session list from path. A missing file
// yields an empty, non-nil slice; a document whose fields have the wrong
// types yields defaults per entry it can parse, and one that is not valid
// YAML at all yields an empty slice.
func LoadSessions(path string) ([]SessionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionConfig{}, nil
		}
		return nil, err
	}
	var doc sessionsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		// A *yaml.TypeError still leaves every decodable field in place.
		var typeErr *yaml.TypeError
		if !errors.As(err, &typeErr) {
			return []SessionConfig{}, nil
		}
	}
	for i := range doc.Sessions {
		doc.Sessions[i].applyDefaults()
	}
	if doc.Sessions == nil {
		doc.Sessions = []SessionConfig{}
	}
	return doc.Sessions, nil
}

// SaveSessions persists the ordered session list to path, creating parent
// directories as needed.
func SaveSessions(path string, sessions []SessionConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(sessionsDocument{Sessions: sessions})
	if err != nil {
		return ErrSerializationFailed
	}
	return os.WriteFile(path, data, 0o644)
}

// SessionsWatcher watches the persisted sessions document for external
// changes (e.g. another console3 process editing the same file) and invokes
// onChange for each relevant filesystem event.
type SessionsWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	stop    chan struct{}
}

// NewSessionsWatcher starts watching the directory containing path.
// fsnotify watches directories, not bare files, so reloads and editor
// rename-then-replace saves are both observed.
func NewSessionsWatcher(path string, onChange func()) (*SessionsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	sw := &SessionsWatcher{watcher: w, path: path, stop: make(chan struct{})}
	go sw.loop(onChange)
	return sw, nil
}

func (sw *SessionsWatcher) loop(onChange func()) {
	target := filepath.Clean(sw.path)
	for {
		select {
		case <-sw.stop:
			return
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) == target && onChange != nil {
				onChange()
			}
		case _, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Stop stops the watcher and releases its resources.
func (sw *SessionsWatcher) Stop() {
	select {
	case <-sw.stop:
		return
	default:
		close(sw.stop)
	}
	sw.watcher.Close()
}
