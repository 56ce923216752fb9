package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/mgpai22/tapsync/internal/input"
	"github.com/mgpai22/tapsync/internal/line"
	"github.com/mgpai22/tapsync/internal/logging"
)

const projectPrefix = "project/"

var (
	ErrNotFound  = errors.New("project not found")
	ErrAmbiguous = errors.New("project id prefix matches more than one project")
)

// Project is a saved tapping session.
type Project struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	SourceText string       `json:"sourceText"`
	Lines      []line.Line  `json:"lines"`
	MediaPath  string       `json:"mediaPath,omitempty"`
	Keymap     input.Keymap `json:"keymap"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Timed counts lines with a start mark.
func (p Project) Timed() int {
	return len(line.Timed(p.Lines))
}

// Store keeps projects in a badger database, one JSON value per project.
type Store struct {
	db     *badger.DB
	logger *logging.Logger
	now    func() time.Time
}

// Open opens (or creates) the project database under dir.
func Open(dir string, logger *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return open(badger.DefaultOptions(dir), logger)
}

// OpenInMemory opens a throwaway store, used by tests.
func OpenInMemory(logger *logging.Logger) (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), logger)
}

func open(opts badger.Options, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	db, err := badger.Open(opts.WithLogger(badgerLogger{logger}))
	if err != nil {
		return nil, fmt.Errorf("failed to open project store: %w", err)
	}

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces p. A missing ID is filled with a new UUID and
// the timestamps are maintained here.
func (s *Store) Save(p *Project) error {
	now := s.now().UTC()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(projectKey(p.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save project %s: %w", p.ID, err)
	}

	s.logger.Debugw("Project saved", "id", p.ID, "lines", len(p.Lines))
	return nil
}

func (s *Store) Get(id string) (*Project, error) {
	var p Project
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(projectKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", id, err)
	}
	return &p, nil
}

// Resolve finds a project by full ID or a unique ID prefix.
func (s *Store) Resolve(idOrPrefix string) (*Project, error) {
	p, err := s.Get(idOrPrefix)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return p, err
	}

	projects, err := s.List()
	if err != nil {
		return nil, err
	}

	var match *Project
	for i := range projects {
		if !strings.HasPrefix(projects[i].ID, idOrPrefix) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguous, idOrPrefix)
		}
		match = &projects[i]
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return match, nil
}

// List returns every project, most recently updated first.
func (s *Store) List() ([]Project, error) {
	var projects []Project

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(projectPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var p Project
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", it.Item().Key(), err)
			}
			projects = append(projects, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
	return projects, nil
}

func (s *Store) Delete(id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(projectKey(id)); err != nil {
			return err
		}
		return txn.Delete(projectKey(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	return nil
}

func projectKey(id string) []byte {
	return []byte(projectPrefix + id)
}

// routes badger's own logging through zap at one level lower, badger's
// info output is noisy for a CLI
type badgerLogger struct {
	logger *logging.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(strings.TrimSpace(format), args...)
}
