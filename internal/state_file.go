package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const stateFileVersion = "1.0"

// FileStateStore keeps state in a YAML document inside a directory
type FileStateStore struct {
	mu  sync.Mutex
	dir string
}

// stateDocument is the on-disk layout of state.yaml
type stateDocument struct {
	Version   string            `yaml:"version"`
	UpdatedAt time.Time         `yaml:"updated_at"`
	Values    map[string]string `yaml:"values"`
}

// NewFileStateStore creates a store rooted at dir. Nothing is written until
// the first Set.
func NewFileStateStore(dir string) *FileStateStore {
	return &FileStateStore{dir: dir}
}

// Path returns the path of the state document
func (s *FileStateStore) Path() string {
	return filepath.Join(s.dir, "state.yaml")
}

func (s *FileStateStore) load() (*stateDocument, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return &stateDocument{Version: stateFileVersion, Values: map[string]string{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var doc stateDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if doc.Values == nil {
		doc.Values = map[string]string{}
	}
	return &doc, nil
}

// save writes doc to a temporary file and renames it over the old one
func (s *FileStateStore) save(doc *stateDocument) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	doc.Version = stateFileVersion
	doc.UpdatedAt = time.Now()

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "state-*.yaml")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.Path())
}

func (s *FileStateStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", false, &StateError{Op: "get", Key: key, Err: err}
	}
	v, ok := doc.Values[key]
	return v, ok, nil
}

func (s *FileStateStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		// A corrupt document is replaced rather than blocking every write
		LogDebug("Replacing unreadable state file %s: %v", s.Path(), err)
		doc = &stateDocument{Values: map[string]string{}}
	}
	doc.Values[key] = value
	if err := s.save(doc); err != nil {
		return &StateError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *FileStateStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		doc = &stateDocument{Values: map[string]string{}}
	}
	if _, ok := doc.Values[key]; !ok && err == nil {
		return nil
	}
	delete(doc.Values, key)
	if err := s.save(doc); err != nil {
		return &StateError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (s *FileStateStore) Close() error {
	return nil
}
