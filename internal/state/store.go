// Package state holds the application's observable state: one container,
// updated through a mutation function, fanned out to subscribers. UI
// surfaces and the websocket hub subscribe; nothing in here knows about
// either.
package state

import (
	"sync"
	"time"

	"github.com/stridetrack/stridetrack/internal/models"
)

// AuthState is the identity surface exposed to clients: an opaque
// signed-in flag plus the account email when known.
type AuthState struct {
	SignedIn bool   `json:"signed_in"`
	Email    string `json:"email,omitempty"`
}

// AppState is the full observable application state.
type AppState struct {
	Auth     AuthState                                 `json:"auth"`
	Today    models.DailyMetrics                       `json:"today"`
	Progress map[models.Category]models.WeeklyProgress `json:"progress"`
	Streaks  models.StreakState                        `json:"streaks"`
	Goals    []models.CategoryGoal                     `json:"goals"`
	Loading  bool                                      `json:"loading"`
	Stale    bool                                      `json:"stale"`
	LastSync time.Time                                 `json:"last_sync"`
}

// clone deep-copies the maps so subscribers never share mutable state.
func (s AppState) clone() AppState {
	out := s
	if s.Progress != nil {
		out.Progress = make(map[models.Category]models.WeeklyProgress, len(s.Progress))
		for k, v := range s.Progress {
			out.Progress[k] = v
		}
	}
	if s.Streaks.PerCategory != nil {
		per := make(map[models.Category]int, len(s.Streaks.PerCategory))
		for k, v := range s.Streaks.PerCategory {
			per[k] = v
		}
		out.Streaks.PerCategory = per
	}
	if s.Goals != nil {
		out.Goals = append([]models.CategoryGoal(nil), s.Goals...)
	}
	return out
}

// Store is a thread-safe state container with subscriptions.
type Store struct {
	mu     sync.RWMutex
	state  AppState
	subs   map[int]chan AppState
	nextID int
}

// NewStore creates a store with a zeroed state.
func NewStore() *Store {
	return &Store{
		state: AppState{Streaks: models.NewStreakState(), Loading: true},
		subs:  make(map[int]chan AppState),
	}
}

// Get returns a copy of the current state.
func (st *Store) Get() AppState {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.state.clone()
}

// Update applies fn to the state under the lock and notifies subscribers.
func (st *Store) Update(fn func(*AppState)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(&st.state)
	snapshot := st.state.clone()
	for _, ch := range st.subs {
		// Non-blocking: a slow subscriber drops the intermediate state
		// it has not consumed yet and gets this one instead.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// Subscribe returns a channel receiving state snapshots and a cancel
// function. The channel has a buffer of one; only the latest unconsumed
// state is retained.
func (st *Store) Subscribe() (<-chan AppState, func()) {
	st.mu.Lock()
	id := st.nextID
	st.nextID++
	ch := make(chan AppState, 1)
	st.subs[id] = ch
	st.mu.Unlock()

	cancel := func() {
		st.mu.Lock()
		if _, ok := st.subs[id]; ok {
			delete(st.subs, id)
			close(ch)
		}
		st.mu.Unlock()
	}
	return ch, cancel
}
