// Package store provides in-memory history of service evaluations.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lemonberrylabs/calc/pkg/types"
)

// EvaluationState represents the outcome of an evaluation.
type EvaluationState string

const (
	EvaluationSucceeded EvaluationState = "SUCCEEDED"
	EvaluationFailed    EvaluationState = "FAILED"
)

// Evaluation is one recorded evaluation.
type Evaluation struct {
	Name       string           `json:"name"`
	Expression string           `json:"expression"`
	State      EvaluationState  `json:"state"`
	Result     *int64           `json:"result,omitempty"`
	Error      *EvaluationError `json:"error,omitempty"`
	Source     string           `json:"source"` // "http", "grpc" or "web"
	CreateTime time.Time        `json:"createTime"`
}

// EvaluationError describes why an evaluation failed.
type EvaluationError struct {
	Message string   `json:"message"`
	Tags    []string `json:"tags,omitempty"`
}

// Store is a thread-safe, bounded in-memory history. When the limit is
// reached the oldest evaluation is dropped.
type Store struct {
	mu    sync.RWMutex
	order []string
	evals map[string]*Evaluation
	limit int
}

// New creates an empty store holding at most limit evaluations. A limit of
// zero or less means unbounded.
func New(limit int) *Store {
	return &Store{
		evals: make(map[string]*Evaluation),
		limit: limit,
	}
}

// RecordSuccess stores a successful evaluation.
func (s *Store) RecordSuccess(source, expression string, result int64) *Evaluation {
	return s.add(&Evaluation{
		Expression: expression,
		State:      EvaluationSucceeded,
		Result:     &result,
		Source:     source,
	})
}

// RecordFailure stores a failed evaluation.
func (s *Store) RecordFailure(source, expression string, err error) *Evaluation {
	evalErr := &EvaluationError{Message: err.Error()}
	if e, ok := types.AsError(err); ok {
		evalErr.Tags = e.Tags
	}
	return s.add(&Evaluation{
		Expression: expression,
		State:      EvaluationFailed,
		Error:      evalErr,
		Source:     source,
	})
}

func (s *Store) add(ev *Evaluation) *Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.Name = uuid.NewString()
	ev.CreateTime = time.Now()
	s.evals[ev.Name] = ev
	s.order = append(s.order, ev.Name)

	if s.limit > 0 && len(s.order) > s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.evals, oldest)
	}
	return ev
}

// Get retrieves an evaluation by name.
func (s *Store) Get(name string) (*Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.evals[name]
	if !ok {
		return nil, fmt.Errorf("evaluation '%s' not found", name)
	}
	return ev, nil
}

// List returns all evaluations, oldest first.
func (s *Store) List() []*Evaluation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Evaluation, 0, len(s.order))
	for _, name := range s.order {
		result = append(result, s.evals[name])
	}
	return result
}

// Len returns the number of stored evaluations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Clear removes all evaluations.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.evals = make(map[string]*Evaluation)
}
