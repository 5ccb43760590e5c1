package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskpilot/internal/model"
)

// MemoryStore is a volatile in-process Store keyed by incrementing integer
// ids, normalized to strings at the contract boundary. Its lifetime is the
// process; it is constructed explicitly and injected into the request path
// rather than living as ambient package state.
type MemoryStore struct {
	mu       sync.Mutex
	tasks    map[string]model.Task
	events   map[string]model.TimelineEvent
	users    map[string]model.User
	sessions map[string]model.Session

	nextTaskID  int
	nextEventID int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:    make(map[string]model.Task),
		events:   make(map[string]model.TimelineEvent),
		users:    make(map[string]model.User),
		sessions: make(map[string]model.Session),
	}
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error { return nil }

// ownerMatches applies the ownership-scoping rule shared by tasks and
// events: a nil filter matches only unowned legacy records.
func ownerMatches(filter, recordOwner *string) bool {
	if filter == nil {
		return recordOwner == nil
	}
	return recordOwner != nil && *recordOwner == *filter
}

// ListTasks returns tasks scoped to the owner, oldest first.
func (s *MemoryStore) ListTasks(ctx context.Context, owner *string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []model.Task
	for _, t := range s.tasks {
		if ownerMatches(owner, t.OwnerID) {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// GetTask retrieves a task by id.
func (s *MemoryStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

// CreateTask assigns the next integer id and stores the task.
func (s *MemoryStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTaskID++
	task.ID = strconv.Itoa(s.nextTaskID)
	applyTaskDefaults(&task, time.Now().UTC())

	s.tasks[task.ID] = task
	return &task, nil
}

// UpdateTask applies a partial merge to an existing task.
func (s *MemoryStore) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}

	patch.Apply(&t, time.Now().UTC())
	s.tasks[id] = t
	return &t, nil
}

// DeleteTask removes a task; deleting a nonexistent id returns false.
func (s *MemoryStore) DeleteTask(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}

// ListEvents returns timeline events scoped to the owner, oldest first.
func (s *MemoryStore) ListEvents(ctx context.Context, owner *string) ([]model.TimelineEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []model.TimelineEvent
	for _, e := range s.events {
		if ownerMatches(owner, e.OwnerID) {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	return events, nil
}

// GetEvent retrieves a timeline event by id.
func (s *MemoryStore) GetEvent(ctx context.Context, id string) (*model.TimelineEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

// CreateEvent assigns the next integer id and stores the event.
func (s *MemoryStore) CreateEvent(ctx context.Context, event model.TimelineEvent) (*model.TimelineEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	event.ID = strconv.Itoa(s.nextEventID)
	if event.Priority == 0 {
		event.Priority = model.PriorityDefault
	}
	event.Completed = false
	event.CompletedAt = nil
	event.CreatedAt = time.Now().UTC()

	s.events[event.ID] = event
	return &event, nil
}

// UpdateEvent applies a partial merge to an existing event.
func (s *MemoryStore) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (*model.TimelineEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}

	patch.Apply(&e, time.Now().UTC())
	s.events[id] = e
	return &e, nil
}

// DeleteEvent removes an event; deleting a nonexistent id returns false.
func (s *MemoryStore) DeleteEvent(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return false, nil
	}
	delete(s.events, id)
	return true, nil
}

// TransferOwnership reassigns all tasks and events from one owner to
// another. All other fields are preserved.
func (s *MemoryStore) TransferOwnership(ctx context.Context, fromOwner, toOwner string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, t := range s.tasks {
		if t.OwnerID != nil && *t.OwnerID == fromOwner {
			owner := toOwner
			t.OwnerID = &owner
			s.tasks[id] = t
			count++
		}
	}
	for id, e := range s.events {
		if e.OwnerID != nil && *e.OwnerID == fromOwner {
			owner := toOwner
			e.OwnerID = &owner
			s.events[id] = e
			count++
		}
	}
	return count, nil
}

// CreateUser stores a new user, rejecting duplicate usernames.
func (s *MemoryStore) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Username = model.NormalizeUsername(user.Username)
	for _, u := range s.users {
		if u.Username == user.Username {
			return nil, ErrUsernameTaken
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now().UTC()
	s.users[user.ID] = user
	return &user, nil
}

// GetUserByUsername looks up a user by case-normalized username.
func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = model.NormalizeUsername(username)
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// GetUserByID looks up a user by id.
func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// CreateSession stores a session record.
func (s *MemoryStore) CreateSession(ctx context.Context, session model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.Token] = session
	return nil
}

// GetSession retrieves a session by token. Expired sessions are reported as
// not found.
func (s *MemoryStore) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok || sess.Expired(time.Now().UTC()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// RenewSession extends a session's expiry (rolling window).
func (s *MemoryStore) RenewSession(ctx context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return ErrNotFound
	}
	sess.ExpiresAt = expiresAt
	s.sessions[token] = sess
	return nil
}

// DeleteSession removes a session by token.
func (s *MemoryStore) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// PruneSessions removes all sessions expired at the given time.
func (s *MemoryStore) PruneSessions(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
			count++
		}
	}
	return count, nil
}
