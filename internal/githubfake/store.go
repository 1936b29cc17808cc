package githubfake

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type File struct {
	Owner     string
	Repo      string
	Path      string
	Content   []byte
	SHA       string
	UpdatedAt int64
}

type Commit struct {
	SHA     string
	Message string
}

// ErrSHARequired is returned when a write targets an existing file without a sha.
var ErrSHARequired = errors.New(`"sha" wasn't supplied`)

// ConflictError is returned when a write carries a sha that is no longer current.
type ConflictError struct {
	Path    string
	Current string
	Given   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s does not match %s", e.Path, e.Given)
}

// Store is an in-memory set of repository files keyed by owner/repo/path.
type Store struct {
	mu      sync.RWMutex
	files   map[string]*File
	commits int
}

func NewStore() *Store {
	return &Store{files: make(map[string]*File)}
}

func key(owner, repo, path string) string {
	return owner + "/" + repo + "/" + path
}

// Get returns a copy of the file, if present.
func (s *Store) Get(owner, repo, path string) (*File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[key(owner, repo, path)]
	if !ok {
		return nil, false
	}
	cp := *f
	cp.Content = append([]byte(nil), f.Content...)
	return &cp, true
}

// Put creates the file when it does not exist and updates it when sha names
// the current version. created reports which of the two happened.
func (s *Store) Put(owner, repo, path string, content []byte, sha, message string) (f *File, c *Commit, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(owner, repo, path)
	existing, ok := s.files[k]
	if ok {
		if sha == "" {
			return nil, nil, false, ErrSHARequired
		}
		if sha != existing.SHA {
			return nil, nil, false, &ConflictError{Path: path, Current: existing.SHA, Given: sha}
		}
	}

	f = &File{
		Owner:     owner,
		Repo:      repo,
		Path:      path,
		Content:   append([]byte(nil), content...),
		SHA:       BlobSHA(content),
		UpdatedAt: time.Now().UnixMilli(),
	}
	s.files[k] = f
	s.commits++
	c = &Commit{
		SHA:     BlobSHA([]byte(fmt.Sprintf("commit %d\x00%s\x00%s", s.commits, k, message))),
		Message: message,
	}

	cp := *f
	return &cp, c, !ok, nil
}

// Seed stores content unconditionally, bypassing the sha check.
func (s *Store) Seed(owner, repo, path string, content []byte) *File {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := &File{
		Owner:     owner,
		Repo:      repo,
		Path:      path,
		Content:   append([]byte(nil), content...),
		SHA:       BlobSHA(content),
		UpdatedAt: time.Now().UnixMilli(),
	}
	s.files[key(owner, repo, path)] = f
	cp := *f
	return &cp
}
