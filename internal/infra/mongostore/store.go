// Package mongostore provides a MongoDB implementation of TaskRepository.
//
// Transactions need a replica set or sharded cluster; a standalone server
// rejects them.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/infra/timeconv"
)

const (
	tasksCollection = "tasks"
	metaCollection  = "meta"
	initializedID   = "initialized"
	connectTimeout  = 10 * time.Second
)

// taskDoc is the stored document. Dates are decoded loosely so documents
// written by other clients (timestamp objects, strings) still load.
// Fields are ordered to minimize memory padding.
type taskDoc struct {
	CreatedAt      any        `bson:"created_at"`
	DueDate        any        `bson:"due_date"`
	Repeat         *repeatDoc `bson:"repeat,omitempty"`
	ID             string     `bson:"_id"`
	HouseholdID    string     `bson:"household_id"`
	Title          string     `bson:"title"`
	AssignedTo     string     `bson:"assigned_to,omitempty"`
	Priority       string     `bson:"priority,omitempty"`
	Details        string     `bson:"details,omitempty"`
	Completed      bool       `bson:"completed"`
	HasSpawnedNext bool       `bson:"has_spawned_next"`
	Archived       bool       `bson:"archived"`
}

type repeatDoc struct {
	Frequency string `bson:"frequency"`
	Interval  int    `bson:"interval"`
}

// Store implements domain.TaskRepository using MongoDB.
type Store struct {
	client      *mongo.Client
	db          *mongo.Database
	loc         *time.Location
	newID       func() string
	maxAttempts int
}

// Option configures a Store.
type Option func(*Store)

// WithLocation sets the location dates are converted to when read.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithMaxAttempts sets how many times a transiently failing transaction is retried.
func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// Ensure Store implements the repository and initializer ports.
var (
	_ domain.TaskRepository   = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)

// Connect dials uri and verifies the connection.
func Connect(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	if database == "" {
		database = domain.DefaultMongoDatabase
	}
	s := &Store{
		client:      client,
		db:          client.Database(database),
		loc:         time.Local,
		newID:       uuid.NewString,
		maxAttempts: domain.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) tasks() *mongo.Collection {
	return s.db.Collection(tasksCollection)
}

// Initialize creates indexes and the initialized marker.
func (s *Store) Initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	_, err := s.tasks().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "household_id", Value: 1}, {Key: "archived", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	_, err = s.db.Collection(metaCollection).UpdateOne(ctx,
		bson.M{"_id": initializedID},
		bson.M{"$setOnInsert": bson.M{"at": time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("write initialized marker: %w", err)
	}
	return nil
}

// IsInitialized checks for the initialized marker.
func (s *Store) IsInitialized() bool {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	err := s.db.Collection(metaCollection).FindOne(ctx, bson.M{"_id": initializedID}).Err()
	return err == nil
}

// Get retrieves a task by ID.
func (s *Store) Get(ctx context.Context, householdID, id string) (*domain.Task, error) {
	return getTask(ctx, s.tasks(), householdID, id, s.loc)
}

// List retrieves all live tasks of a household ordered by creation time.
func (s *Store) List(ctx context.Context, householdID string) ([]*domain.Task, error) {
	return s.list(ctx, householdID, false)
}

// ListHistory retrieves archived tasks of a household.
func (s *Store) ListHistory(ctx context.Context, householdID string) ([]*domain.Task, error) {
	return s.list(ctx, householdID, true)
}

func (s *Store) list(ctx context.Context, householdID string, archived bool) ([]*domain.Task, error) {
	cursor, err := s.tasks().Find(ctx, bson.M{"household_id": householdID, "archived": archived})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []taskDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for i := range docs {
		t, err := docs[i].toDomain(s.loc)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return tasks, nil
}

// Create stores a new task under a fresh ID.
func (s *Store) Create(ctx context.Context, householdID string, task *domain.Task) (*domain.Task, error) {
	created := task.Clone()
	created.ID = s.newID()
	created.HouseholdID = householdID
	if _, err := s.tasks().InsertOne(ctx, fromDomain(created)); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return created, nil
}

// Update applies a partial update.
func (s *Store) Update(ctx context.Context, householdID, id string, patch domain.TaskPatch) error {
	return s.RunInTransaction(ctx, householdID, func(tx domain.TaskTx) error {
		return tx.Update(id, patch)
	})
}

// Delete removes a task by ID.
func (s *Store) Delete(ctx context.Context, householdID, id string) error {
	_, err := s.tasks().DeleteOne(ctx, bson.M{"_id": id, "household_id": householdID, "archived": false})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// RunInTransaction runs fn in a multi-document transaction.
// Write conflicts abort the transaction; it is retried from the start.
func (s *Store) RunInTransaction(ctx context.Context, householdID string, fn func(tx domain.TaskTx) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	for attempt := 1; ; attempt++ {
		_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
			return nil, fn(&mongoTx{ctx: sc, store: s, householdID: householdID})
		})
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt >= s.maxAttempts {
			return fmt.Errorf("household %s after %d attempts: %w: %w", householdID, attempt, domain.ErrTransactionConflict, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
}

// mongoTx is the TaskTx view of an open session transaction.
type mongoTx struct {
	ctx         mongo.SessionContext
	store       *Store
	householdID string
}

func (tx *mongoTx) Get(id string) (*domain.Task, error) {
	return getTask(tx.ctx, tx.store.tasks(), tx.householdID, id, tx.store.loc)
}

func (tx *mongoTx) Create(task *domain.Task) (*domain.Task, error) {
	created := task.Clone()
	created.ID = tx.store.newID()
	created.HouseholdID = tx.householdID
	if _, err := tx.store.tasks().InsertOne(tx.ctx, fromDomain(created)); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return created, nil
}

func (tx *mongoTx) Update(id string, patch domain.TaskPatch) error {
	task, err := tx.Get(id)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	patch.Apply(task)

	filter := bson.M{"_id": id, "household_id": tx.householdID, "archived": false}
	res, err := tx.store.tasks().ReplaceOne(tx.ctx, filter, fromDomain(task))
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	return nil
}

func (tx *mongoTx) Archive(id string) error {
	filter := bson.M{"_id": id, "household_id": tx.householdID, "archived": false}
	res, err := tx.store.tasks().UpdateOne(tx.ctx, filter, bson.M{"$set": bson.M{"archived": true}})
	if err != nil {
		return fmt.Errorf("archive task: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	return nil
}

func getTask(ctx context.Context, coll *mongo.Collection, householdID, id string, loc *time.Location) (*domain.Task, error) {
	var doc taskDoc
	err := coll.FindOne(ctx, bson.M{"_id": id, "household_id": householdID, "archived": false}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return doc.toDomain(loc)
}

func fromDomain(t *domain.Task) taskDoc {
	doc := taskDoc{
		ID:             t.ID,
		HouseholdID:    t.HouseholdID,
		Title:          t.Title,
		AssignedTo:     t.AssignedTo,
		Priority:       string(t.Priority),
		Details:        t.Details,
		CreatedAt:      t.CreatedAt,
		DueDate:        t.DueDate,
		Completed:      t.Completed,
		HasSpawnedNext: t.HasSpawnedNext,
	}
	if t.Repeat != nil {
		doc.Repeat = &repeatDoc{Frequency: string(t.Repeat.Frequency), Interval: t.Repeat.Interval}
	}
	return doc
}

func (d *taskDoc) toDomain(loc *time.Location) (*domain.Task, error) {
	due, err := timeconv.Normalize(d.DueDate, loc)
	if err != nil {
		return nil, fmt.Errorf("task %s due date: %w", d.ID, err)
	}
	var created time.Time
	if d.CreatedAt != nil {
		if created, err = timeconv.Normalize(d.CreatedAt, loc); err != nil {
			return nil, fmt.Errorf("task %s creation time: %w", d.ID, err)
		}
	}
	t := &domain.Task{
		ID:             d.ID,
		HouseholdID:    d.HouseholdID,
		Title:          d.Title,
		AssignedTo:     d.AssignedTo,
		Priority:       domain.Priority(d.Priority),
		Details:        d.Details,
		Completed:      d.Completed,
		HasSpawnedNext: d.HasSpawnedNext,
		CreatedAt:      created,
		DueDate:        due,
	}
	if d.Repeat != nil {
		t.Repeat = &domain.Repeat{Frequency: domain.Frequency(d.Repeat.Frequency), Interval: d.Repeat.Interval}
	}
	return t, nil
}

// isTransient reports whether the server labelled err as safe to retry.
func isTransient(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel("TransientTransactionError") || se.HasErrorLabel("UnknownTransactionCommitResult")
	}
	return false
}
