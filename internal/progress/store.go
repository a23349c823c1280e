package progress

import (
	"sort"
	"sync"
)

// StudentProgress is the recorded state for one student: completed
// chapter ids kept in catalog order, and an append-only notes log.
type StudentProgress struct {
	StudentID string   `json:"student_id"`
	Completed []string `json:"completed"`
	Notes     []string `json:"notes,omitempty"`
}

// ProgressStore persists per-student progress. A student referenced
// for the first time behaves as an empty record, never an error.
// Implementations must serialize concurrent Update calls for the same
// student id, and reads must observe a complete record. Update may
// invoke fn more than once (e.g. on transaction retry), so fn must be
// safe to re-run against a fresh copy.
type ProgressStore interface {
	Get(studentID string) (StudentProgress, error)
	Update(studentID string, fn func(*StudentProgress)) (StudentProgress, error)
	Students() ([]string, error)
}

// MemoryStore is an in-memory ProgressStore.
type MemoryStore struct {
	mu       sync.RWMutex
	students map[string]StudentProgress
	locks    map[string]*sync.Mutex
}

// NewMemoryStore creates an empty in-memory progress store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		students: make(map[string]StudentProgress),
		locks:    make(map[string]*sync.Mutex),
	}
}

// studentLock returns the per-student mutex, creating it on first use.
func (s *MemoryStore) studentLock(studentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[studentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[studentID] = l
	}
	return l
}

func (s *MemoryStore) Get(studentID string) (StudentProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.students[studentID]
	if !ok {
		return emptyProgress(studentID), nil
	}
	return cloneProgress(p), nil
}

// Update applies fn to the student's record under that student's lock.
// fn mutates a private copy; readers only ever see the fully applied
// result.
func (s *MemoryStore) Update(studentID string, fn func(*StudentProgress)) (StudentProgress, error) {
	l := s.studentLock(studentID)
	l.Lock()
	defer l.Unlock()

	s.mu.RLock()
	p, ok := s.students[studentID]
	s.mu.RUnlock()
	if !ok {
		p = emptyProgress(studentID)
	}

	working := cloneProgress(p)
	fn(&working)

	s.mu.Lock()
	s.students[studentID] = working
	s.mu.Unlock()

	return cloneProgress(working), nil
}

func (s *MemoryStore) Students() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.students))
	for id := range s.students {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func emptyProgress(studentID string) StudentProgress {
	return StudentProgress{StudentID: studentID, Completed: []string{}}
}

func cloneProgress(p StudentProgress) StudentProgress {
	out := StudentProgress{
		StudentID: p.StudentID,
		Completed: make([]string, len(p.Completed)),
	}
	copy(out.Completed, p.Completed)
	if len(p.Notes) > 0 {
		out.Notes = append([]string(nil), p.Notes...)
	}
	return out
}
