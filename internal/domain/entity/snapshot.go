package entity

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SchemaVersion is stamped into every persisted snapshot so future layouts
// can be migrated on load.
const SchemaVersion = 1

// CounterKey addresses one unread counter: a participant (user or worker)
// within one request's conversation. It serializes to the legacy
// "<participantId>_<requestId>" form so the persisted document layout is
// stable.
type CounterKey struct {
	ParticipantID uuid.UUID
	RequestID     uuid.UUID
}

// MarshalText implements encoding.TextMarshaler so CounterKey can be used
// as a JSON map key.
func (k CounterKey) MarshalText() ([]byte, error) {
	return []byte(k.ParticipantID.String() + "_" + k.RequestID.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *CounterKey) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), "_", 2)
	if len(parts) != 2 {
		return errors.Errorf("malformed counter key %q", string(text))
	}

	participantID, err := uuid.Parse(parts[0])
	if err != nil {
		return errors.Wrapf(err, "counter key participant %q", parts[0])
	}
	requestID, err := uuid.Parse(parts[1])
	if err != nil {
		return errors.Wrapf(err, "counter key request %q", parts[1])
	}

	k.ParticipantID = participantID
	k.RequestID = requestID

	return nil
}

// Snapshot is the single aggregate document holding all collections. Every
// operation loads it, mutates an in-memory copy and saves it back whole.
//
// Revision is the optimistic concurrency stamp: Save only succeeds when the
// persisted revision still equals the snapshot's base revision, and stores
// Revision+1.
type Snapshot struct {
	Schema            int                  `json:"schemaVersion"`
	Revision          int64                `json:"revision"`
	Users             []User               `json:"users"`
	Workers           []Worker             `json:"workers"`
	Requests          []Request            `json:"requests"`
	ChatMessages      []ChatMessage        `json:"chatMessages"`
	Notifications     []WorkerNotification `json:"notifications"`
	UserNotifications []UserNotification   `json:"userNotifications"`
	UnreadCounters    map[CounterKey]int   `json:"unreadMessages"`
}

// NewSnapshot returns an empty snapshot at the current schema version.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Schema:            SchemaVersion,
		Users:             []User{},
		Workers:           []Worker{},
		Requests:          []Request{},
		ChatMessages:      []ChatMessage{},
		Notifications:     []WorkerNotification{},
		UserNotifications: []UserNotification{},
		UnreadCounters:    map[CounterKey]int{},
	}
}

// Normalize replaces nil collections with empty ones. Decoded legacy
// documents may omit collections entirely.
func (s *Snapshot) Normalize() {
	if s.Schema == 0 {
		s.Schema = SchemaVersion
	}
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Workers == nil {
		s.Workers = []Worker{}
	}
	if s.Requests == nil {
		s.Requests = []Request{}
	}
	if s.ChatMessages == nil {
		s.ChatMessages = []ChatMessage{}
	}
	if s.Notifications == nil {
		s.Notifications = []WorkerNotification{}
	}
	if s.UserNotifications == nil {
		s.UserNotifications = []UserNotification{}
	}
	if s.UnreadCounters == nil {
		s.UnreadCounters = map[CounterKey]int{}
	}
}

// Reset empties every collection while keeping the document identity
// (schema version and revision) intact.
func (s *Snapshot) Reset() {
	s.Users = []User{}
	s.Workers = []Worker{}
	s.Requests = []Request{}
	s.ChatMessages = []ChatMessage{}
	s.Notifications = []WorkerNotification{}
	s.UserNotifications = []UserNotification{}
	s.UnreadCounters = map[CounterKey]int{}
}

// --- Lookups ---

// FindUser returns a pointer into the Users collection, or nil.
func (s *Snapshot) FindUser(id uuid.UUID) *User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}

	return nil
}

// FindUserByPhone returns a pointer into the Users collection, or nil.
func (s *Snapshot) FindUserByPhone(phone string) *User {
	for i := range s.Users {
		if s.Users[i].Phone == phone {
			return &s.Users[i]
		}
	}

	return nil
}

// FindWorker returns a pointer into the Workers collection, or nil.
func (s *Snapshot) FindWorker(id uuid.UUID) *Worker {
	for i := range s.Workers {
		if s.Workers[i].ID == id {
			return &s.Workers[i]
		}
	}

	return nil
}

// FindWorkerByPhone returns a pointer into the Workers collection, or nil.
func (s *Snapshot) FindWorkerByPhone(phone string) *Worker {
	for i := range s.Workers {
		if s.Workers[i].Phone == phone {
			return &s.Workers[i]
		}
	}

	return nil
}

// FindRequest returns a pointer into the Requests collection, or nil.
func (s *Snapshot) FindRequest(id uuid.UUID) *Request {
	for i := range s.Requests {
		if s.Requests[i].ID == id {
			return &s.Requests[i]
		}
	}

	return nil
}

// --- Derived views ---

// UserRequests returns the user's requests ordered by status priority
// (accepted, pending, completed) and newest-first within a status.
func (s *Snapshot) UserRequests(userID uuid.UUID) []Request {
	out := make([]Request, 0)
	for _, req := range s.Requests {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Status.sortPriority(), out[j].Status.sortPriority()
		if pi != pj {
			return pi < pj
		}

		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out
}

// WorkerRequests returns requests assigned to the worker plus pending
// requests whose type the worker's role serves.
func (s *Snapshot) WorkerRequests(workerID uuid.UUID, role WorkerRole) []Request {
	out := make([]Request, 0)
	for _, req := range s.Requests {
		switch {
		case req.WorkerID == workerID:
			out = append(out, req)
		case req.Status == StatusPending && role.Serves(req.Type):
			out = append(out, req)
		}
	}

	return out
}

// RequestMessages returns the request's chat log, oldest first.
func (s *Snapshot) RequestMessages(requestID uuid.UUID) []ChatMessage {
	out := make([]ChatMessage, 0)
	for _, msg := range s.ChatMessages {
		if msg.RequestID == requestID {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out
}

// WorkerNotificationsFor returns the worker's ledger entries, newest first.
func (s *Snapshot) WorkerNotificationsFor(workerID uuid.UUID) []WorkerNotification {
	out := make([]WorkerNotification, 0)
	for _, n := range s.Notifications {
		if n.WorkerID == workerID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out
}

// UserNotificationsFor returns the user's ledger entries, newest first.
func (s *Snapshot) UserNotificationsFor(userID uuid.UUID) []UserNotification {
	out := make([]UserNotification, 0)
	for _, n := range s.UserNotifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out
}

// --- Mutations shared by lifecycle, retention and shedding ---

// RemoveRequest hard-deletes a request together with its chat messages,
// unread counters and ledger entries, so dangling references never outlive
// the request outside of degradation shedding.
func (s *Snapshot) RemoveRequest(id uuid.UUID) bool {
	idx := -1
	for i := range s.Requests {
		if s.Requests[i].ID == id {
			idx = i

			break
		}
	}
	if idx < 0 {
		return false
	}

	s.Requests = append(s.Requests[:idx], s.Requests[idx+1:]...)
	s.dropConversations(map[uuid.UUID]struct{}{id: {}})

	return true
}

// PruneCompleted removes completed requests created before the cutoff,
// together with all records referencing them. Pending and accepted requests
// are never touched regardless of age. Returns the number of requests
// removed; calling it again with the same cutoff is a no-op.
func (s *Snapshot) PruneCompleted(cutoff time.Time) int {
	stale := map[uuid.UUID]struct{}{}
	kept := s.Requests[:0]
	for _, req := range s.Requests {
		if req.Status == StatusCompleted && req.CreatedAt.Before(cutoff) {
			stale[req.ID] = struct{}{}

			continue
		}
		kept = append(kept, req)
	}
	if len(stale) == 0 {
		return 0
	}

	s.Requests = kept
	s.dropConversations(stale)

	return len(stale)
}

// dropConversations removes chat messages, counters and notifications that
// reference any of the given request ids.
func (s *Snapshot) dropConversations(ids map[uuid.UUID]struct{}) {
	msgs := s.ChatMessages[:0]
	for _, msg := range s.ChatMessages {
		if _, gone := ids[msg.RequestID]; !gone {
			msgs = append(msgs, msg)
		}
	}
	s.ChatMessages = msgs

	notifs := s.Notifications[:0]
	for _, n := range s.Notifications {
		if _, gone := ids[n.RequestID]; !gone {
			notifs = append(notifs, n)
		}
	}
	s.Notifications = notifs

	userNotifs := s.UserNotifications[:0]
	for _, n := range s.UserNotifications {
		if _, gone := ids[n.RequestID]; !gone {
			userNotifs = append(userNotifs, n)
		}
	}
	s.UserNotifications = userNotifs

	for key := range s.UnreadCounters {
		if _, gone := ids[key.RequestID]; gone {
			delete(s.UnreadCounters, key)
		}
	}
}

// --- Degradation shedding ---

// ShedHistory implements the moderate degradation tier: keep every
// non-completed request plus the keepCompleted most recently created
// completed ones, cap each retained conversation at keepMessages newest
// messages, and drop the notification ledgers and unread counters outright.
func (s *Snapshot) ShedHistory(keepCompleted, keepMessages int) {
	completed := make([]Request, 0)
	kept := make([]Request, 0, len(s.Requests))
	for _, req := range s.Requests {
		if req.Status == StatusCompleted {
			completed = append(completed, req)
		} else {
			kept = append(kept, req)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CreatedAt.After(completed[j].CreatedAt)
	})
	if len(completed) > keepCompleted {
		completed = completed[:keepCompleted]
	}
	s.Requests = append(kept, completed...)

	keptIDs := map[uuid.UUID]struct{}{}
	for _, req := range s.Requests {
		keptIDs[req.ID] = struct{}{}
	}

	byRequest := map[uuid.UUID][]ChatMessage{}
	for _, msg := range s.ChatMessages {
		if _, ok := keptIDs[msg.RequestID]; ok {
			byRequest[msg.RequestID] = append(byRequest[msg.RequestID], msg)
		}
	}
	trimmed := make([]ChatMessage, 0)
	for _, msgs := range byRequest {
		sort.SliceStable(msgs, func(i, j int) bool {
			return msgs[i].Timestamp.After(msgs[j].Timestamp)
		})
		if len(msgs) > keepMessages {
			msgs = msgs[:keepMessages]
		}
		trimmed = append(trimmed, msgs...)
	}
	s.ChatMessages = trimmed

	s.Notifications = []WorkerNotification{}
	s.UserNotifications = []UserNotification{}
	s.UnreadCounters = map[CounterKey]int{}
}

// ShedAllButIdentities implements the severe degradation tier: only user
// and worker accounts survive.
func (s *Snapshot) ShedAllButIdentities() {
	users, workers := s.Users, s.Workers
	s.Reset()
	s.Users = users
	s.Workers = workers
}
