package flowstate

import (
	"errors"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-cinema-auth/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu      sync.Mutex
	states  map[string]*FlowState
	timeout time.Duration
	now     func() time.Time
}

// NewInMemoryRepo creates a repo that rejects flows older than timeout.
func NewInMemoryRepo(timeout time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		states:  make(map[string]*FlowState),
		timeout: timeout,
		now:     time.Now,
	}
}

// Upsert stores or updates a flow state
func (r *InMemoryRepo) Upsert(state string, flow *FlowState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if flow == nil {
		return errors.New("flow cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.purge()
	// Create a copy to prevent external modifications
	stored := *flow
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}
	r.states[state] = &stored
	return nil
}

// Consume retrieves and deletes a flow state
func (r *InMemoryRepo) Consume(state string) (*FlowState, error) {
	if state == "" {
		return nil, apperrors.ErrInvalidState
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	flow, exists := r.states[state]
	if !exists {
		return nil, apperrors.ErrInvalidState
	}
	delete(r.states, state)

	if r.expired(flow) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidState, "flow started at %s", flow.CreatedAt.Format(time.RFC3339))
	}
	copied := *flow
	return &copied, nil
}

// purge drops abandoned flows; callers hold the lock.
func (r *InMemoryRepo) purge() {
	for state, flow := range r.states {
		if r.expired(flow) {
			delete(r.states, state)
		}
	}
}

func (r *InMemoryRepo) expired(flow *FlowState) bool {
	return r.timeout > 0 && r.now().Sub(flow.CreatedAt) > r.timeout
}
