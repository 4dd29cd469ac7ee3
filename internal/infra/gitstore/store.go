// Package gitstore provides a Git plumbing-based implementation of TaskRepository.
package gitstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/chores/internal/domain"
)

// Store implements domain.TaskRepository using Git plumbing (refs, commits and blobs).
//
// Data structure:
//
//	refs/<namespace>/
//	  initialized          → empty blob
//	  households/<id>      → commit
//	                           tree/
//	                             tasks/<task-id>.yaml
//	                             history/<task-id>.yaml
//
// Every write produces a new commit whose parent is the previous household
// state. The household ref is moved with a compare-and-swap, so two writers
// racing on the same household cannot both win; the loser re-reads and retries.
type Store struct {
	repo        *git.Repository
	now         func() time.Time
	newID       func() string
	beforeSwap  func() // test hook, runs between building a commit and moving the ref
	loc         *time.Location
	repoPath    string
	namespace   string
	maxAttempts int
	mu          sync.Mutex // serializes transactions within the process
	repoMu      sync.Mutex
}

const (
	tasksDir   = "tasks"
	historyDir = "history"
	blobSuffix = ".yaml"

	refLockFile = "chores-refs.lock"
)

// Option configures a Store.
type Option func(*Store)

// WithLocation sets the location dates are converted to when read.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithMaxAttempts sets how many times a conflicting transaction is retried.
func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// New creates a new Store for the repository at repoPath.
// The repository is created by Initialize if it does not exist yet.
func New(repoPath, namespace string, opts ...Option) *Store {
	s := newStore(namespace, opts)
	s.repoPath = repoPath
	return s
}

// NewWithRepo creates a new Store with an existing repository instance.
func NewWithRepo(repo *git.Repository, namespace string, opts ...Option) *Store {
	s := newStore(namespace, opts)
	s.repo = repo
	return s
}

func newStore(namespace string, opts []Option) *Store {
	if namespace == "" {
		namespace = domain.DefaultGitNamespace
	}
	s := &Store{
		namespace:   namespace,
		loc:         time.Local,
		now:         time.Now,
		newID:       uuid.NewString,
		maxAttempts: domain.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure Store implements the repository and initializer ports.
var (
	_ domain.TaskRepository   = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)

// refPrefix returns the ref prefix for this namespace.
func (s *Store) refPrefix() string {
	return "refs/" + s.namespace + "/"
}

// householdRef returns the ref name for a household.
func (s *Store) householdRef(householdID string) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "households/" + escapeRefComponent(householdID))
}

// initializedRef returns the ref name for the initialized marker.
func (s *Store) initializedRef() plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "initialized")
}

// Get retrieves a task by ID.
func (s *Store) Get(ctx context.Context, householdID, id string) (*domain.Task, error) {
	snap, err := s.load(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return snap.tx().Get(id)
}

// List retrieves all live tasks of a household ordered by creation time.
func (s *Store) List(ctx context.Context, householdID string) ([]*domain.Task, error) {
	snap, err := s.load(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return sortedTasks(snap.tasks), nil
}

// ListHistory retrieves archived tasks of a household.
func (s *Store) ListHistory(ctx context.Context, householdID string) ([]*domain.Task, error) {
	snap, err := s.load(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return sortedTasks(snap.history), nil
}

// Create stores a new task under a fresh ID.
func (s *Store) Create(ctx context.Context, householdID string, task *domain.Task) (*domain.Task, error) {
	var created *domain.Task
	err := s.RunInTransaction(ctx, householdID, func(tx domain.TaskTx) error {
		var err error
		created, err = tx.Create(task)
		return err
	})
	return created, err
}

// Update applies a partial update.
func (s *Store) Update(ctx context.Context, householdID, id string, patch domain.TaskPatch) error {
	return s.RunInTransaction(ctx, householdID, func(tx domain.TaskTx) error {
		return tx.Update(id, patch)
	})
}

// Delete removes a task by ID.
func (s *Store) Delete(ctx context.Context, householdID, id string) error {
	return s.RunInTransaction(ctx, householdID, func(tx domain.TaskTx) error {
		tx.(*gitTx).remove(id)
		return nil
	})
}

// RunInTransaction runs fn against a snapshot of the household and commits the
// result with a compare-and-swap on the household ref.
func (s *Store) RunInTransaction(ctx context.Context, householdID string, fn func(tx domain.TaskTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; ; attempt++ {
		snap, err := s.load(ctx, householdID)
		if err != nil {
			return err
		}

		tx := snap.tx()
		if err := fn(tx); err != nil {
			return err
		}
		if !tx.dirty {
			return nil
		}

		err = s.commit(snap)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrReferenceHasChanged) {
			return err
		}
		if attempt >= s.maxAttempts {
			return fmt.Errorf("household %s after %d attempts: %w", householdID, attempt, domain.ErrTransactionConflict)
		}
	}
}

// IsInitialized checks if the store has been initialized.
func (s *Store) IsInitialized() bool {
	if err := s.open(); err != nil {
		return false
	}
	_, err := s.repo.Reference(s.initializedRef(), true)
	return err == nil
}

// Initialize creates the repository (bare) if needed and writes the marker ref.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openOrInit(); err != nil {
		return err
	}

	if _, err := s.repo.Reference(s.initializedRef(), true); err == nil {
		return nil
	} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("check initialized ref: %w", err)
	}

	hash, err := s.writeBlob(nil)
	if err != nil {
		return err
	}
	ref := plumbing.NewHashReference(s.initializedRef(), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("set initialized ref: %w", err)
	}
	return nil
}

// openOrInit opens the repository, creating a bare one if it does not exist.
func (s *Store) openOrInit() error {
	s.repoMu.Lock()
	defer s.repoMu.Unlock()

	if s.repo != nil {
		return nil
	}
	repo, err := git.PlainOpen(s.repoPath)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if mkErr := os.MkdirAll(s.repoPath, 0o750); mkErr != nil {
			return fmt.Errorf("create repository directory: %w", mkErr)
		}
		repo, err = git.PlainInit(s.repoPath, true)
	}
	if err != nil {
		return fmt.Errorf("open git repository: %w", err)
	}
	s.repo = repo
	return nil
}

// open lazily opens the repository on disk.
func (s *Store) open() error {
	s.repoMu.Lock()
	defer s.repoMu.Unlock()

	if s.repo != nil {
		return nil
	}
	repo, err := git.PlainOpen(s.repoPath)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return domain.ErrNotInitialized
		}
		return fmt.Errorf("open git repository: %w", err)
	}
	s.repo = repo
	return nil
}

// snapshot is the decoded state of one household at a given commit.
type snapshot struct {
	tasks       map[string]*domain.Task
	history     map[string]*domain.Task
	ref         *plumbing.Reference // nil when the household has no commit yet
	store       *Store
	householdID string
}

func (snap *snapshot) tx() *gitTx {
	return &gitTx{snap: snap}
}

// load reads the household's current commit, waiting out a ref that another
// writer is rewriting.
func (s *Store) load(ctx context.Context, householdID string) (*snapshot, error) {
	for attempt := 1; ; attempt++ {
		snap, err := s.loadOnce(ctx, householdID)
		if !errors.Is(err, storage.ErrReferenceHasChanged) {
			return snap, err
		}
		if attempt >= s.maxAttempts {
			return nil, fmt.Errorf("read household ref: %w", err)
		}
		time.Sleep(time.Millisecond)
	}
}

func (s *Store) loadOnce(ctx context.Context, householdID string) (*snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.open(); err != nil {
		return nil, err
	}

	snap := &snapshot{
		store:       s,
		householdID: householdID,
		tasks:       make(map[string]*domain.Task),
		history:     make(map[string]*domain.Task),
	}

	ref, err := s.repo.Reference(s.householdRef(householdID), true)
	if err != nil {
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, fmt.Errorf("get household ref: %w", err)
		}
		exists, err := s.refExists(s.householdRef(householdID))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, storage.ErrReferenceHasChanged
		}
		return snap, nil
	}
	snap.ref = ref

	commit, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read household commit: %w", err)
	}
	root, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("read household tree: %w", err)
	}

	for _, entry := range root.Entries {
		var target map[string]*domain.Task
		switch entry.Name {
		case tasksDir:
			target = snap.tasks
		case historyDir:
			target = snap.history
		default:
			continue
		}
		if err := s.readDir(entry.Hash, householdID, target); err != nil {
			return nil, err
		}
	}

	return snap, nil
}

func (s *Store) readDir(hash plumbing.Hash, householdID string, into map[string]*domain.Task) error {
	tree, err := s.repo.TreeObject(hash)
	if err != nil {
		return fmt.Errorf("read tree: %w", err)
	}
	for _, entry := range tree.Entries {
		id, ok := strings.CutSuffix(entry.Name, blobSuffix)
		if !ok {
			continue // Skip unknown files
		}
		data, err := s.readBlob(entry.Hash)
		if err != nil {
			return fmt.Errorf("read task %s: %w", id, err)
		}
		var task domain.Task
		if err := yaml.Unmarshal(data, &task); err != nil {
			return fmt.Errorf("decode task %s: %w", id, err)
		}
		task.ID = id
		task.HouseholdID = householdID
		task.CreatedAt = task.CreatedAt.In(s.loc)
		task.DueDate = task.DueDate.In(s.loc)
		into[id] = &task
	}
	return nil
}

// commit writes the snapshot as a new commit and moves the household ref.
func (s *Store) commit(snap *snapshot) error {
	tasksHash, err := s.writeDir(snap.tasks)
	if err != nil {
		return err
	}
	historyHash, err := s.writeDir(snap.history)
	if err != nil {
		return err
	}
	rootHash, err := s.writeTree([]object.TreeEntry{
		{Name: historyDir, Mode: filemode.Dir, Hash: historyHash},
		{Name: tasksDir, Mode: filemode.Dir, Hash: tasksHash},
	})
	if err != nil {
		return err
	}

	sig := object.Signature{Name: "chores", Email: "chores@localhost", When: s.now()}
	commit := &object.Commit{
		Author:    sig,
		Committer: sig,
		Message:   "update household " + snap.householdID,
		TreeHash:  rootHash,
	}
	if snap.ref != nil {
		commit.ParentHashes = []plumbing.Hash{snap.ref.Hash()}
	}

	obj := s.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return fmt.Errorf("encode commit: %w", err)
	}
	commitHash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return fmt.Errorf("store commit: %w", err)
	}

	if s.beforeSwap != nil {
		s.beforeSwap()
	}

	newRef := plumbing.NewHashReference(s.householdRef(snap.householdID), commitHash)
	if snap.ref == nil {
		return s.createRef(newRef)
	}
	if err := s.repo.Storer.CheckAndSetReference(newRef, snap.ref); err != nil {
		if errors.Is(err, storage.ErrReferenceHasChanged) {
			return err
		}
		return fmt.Errorf("move household ref: %w", err)
	}
	return nil
}

// createRef points a household ref at its first commit.
// CheckAndSetReference with no old value overwrites unconditionally, so the
// existence check and the write both happen under the ref lock.
func (s *Store) createRef(ref *plumbing.Reference) error {
	unlock, err := s.lockRefs()
	if err != nil {
		return err
	}
	defer unlock()

	exists, err := s.refExists(ref.Name())
	if err != nil {
		return err
	}
	if exists {
		return storage.ErrReferenceHasChanged
	}
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("create household ref: %w", err)
	}
	return nil
}

// refExists reports whether a ref is present.
// A loose ref file that another writer has just truncated reads as missing
// through the storer, so on disk the file itself is checked.
func (s *Store) refExists(name plumbing.ReferenceName) (bool, error) {
	if s.repoPath != "" {
		_, err := os.Stat(filepath.Join(s.gitDir(), filepath.FromSlash(name.String())))
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("check household ref: %w", err)
		}
	}
	_, err := s.repo.Reference(name, true)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("check household ref: %w", err)
}

// gitDir returns the directory holding refs: repoPath for bare repositories,
// repoPath/.git otherwise.
func (s *Store) gitDir() string {
	dotGit := filepath.Join(s.repoPath, git.GitDirName)
	if info, err := os.Stat(dotGit); err == nil && info.IsDir() {
		return dotGit
	}
	return s.repoPath
}

// lockRefs takes an exclusive flock on the repository's ref lock file.
// Stores without a path (in-memory repositories) rely on s.mu alone.
func (s *Store) lockRefs() (func(), error) {
	if s.repoPath == "" {
		return func() {}, nil
	}
	// #nosec G304 - path is derived from the configured repository path
	lock, err := os.OpenFile(filepath.Join(s.gitDir(), refLockFile), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open ref lock: %w", err)
	}
	if err := syscall.Flock(int(lock.Fd()), syscall.LOCK_EX); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire ref lock: %w", err)
	}
	return func() {
		_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
		_ = lock.Close()
	}, nil
}

// writeDir stores one YAML blob per task and returns the tree hash.
func (s *Store) writeDir(tasks map[string]*domain.Task) (plumbing.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(tasks))
	for id, task := range tasks {
		data, err := yaml.Marshal(task)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("encode task %s: %w", id, err)
		}
		hash, err := s.writeBlob(data)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{
			Name: id + blobSuffix,
			Mode: filemode.Regular,
			Hash: hash,
		})
	}

	// Sort entries by name for consistent tree hash
	slices.SortFunc(entries, func(a, b object.TreeEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return s.writeTree(entries)
}

func (s *Store) writeTree(entries []object.TreeEntry) (plumbing.Hash, error) {
	tree := &object.Tree{Entries: entries}

	obj := s.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode tree: %w", err)
	}

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store tree: %w", err)
	}
	return hash, nil
}

// writeBlob writes data to a blob and returns the hash.
func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}

	if _, writeErr := io.Copy(writer, bytes.NewReader(data)); writeErr != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", writeErr)
	}
	_ = writer.Close()

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}

	return hash, nil
}

// readBlob reads the content of a blob.
func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}

	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	return io.ReadAll(reader)
}

// gitTx mutates a snapshot in memory; RunInTransaction commits it.
type gitTx struct {
	snap  *snapshot
	dirty bool
}

func (tx *gitTx) Get(id string) (*domain.Task, error) {
	task, ok := tx.snap.tasks[id]
	if !ok {
		return nil, nil
	}
	return task.Clone(), nil
}

func (tx *gitTx) Create(task *domain.Task) (*domain.Task, error) {
	created := task.Clone()
	created.ID = tx.snap.store.newID()
	created.HouseholdID = tx.snap.householdID
	tx.snap.tasks[created.ID] = created
	tx.dirty = true
	return created.Clone(), nil
}

func (tx *gitTx) Update(id string, patch domain.TaskPatch) error {
	task, ok := tx.snap.tasks[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	patch.Apply(task)
	tx.dirty = true
	return nil
}

func (tx *gitTx) Archive(id string) error {
	task, ok := tx.snap.tasks[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	delete(tx.snap.tasks, id)
	tx.snap.history[id] = task
	tx.dirty = true
	return nil
}

func (tx *gitTx) remove(id string) {
	if _, ok := tx.snap.tasks[id]; ok {
		delete(tx.snap.tasks, id)
		tx.dirty = true
	}
}

func sortedTasks(m map[string]*domain.Task) []*domain.Task {
	tasks := make([]*domain.Task, 0, len(m))
	for _, t := range m {
		tasks = append(tasks, t.Clone())
	}
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return tasks
}

// escapeRefComponent keeps household IDs usable as a single ref path component.
func escapeRefComponent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "%%%02X", r)
		}
	}
	return b.String()
}
