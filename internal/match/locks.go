package match

import (
	"sync"

	"github.com/google/uuid"
)

// cohortLocks serializes every Run and arbiter mutation against a single
// cohort, so two concurrent callers can never race on the same cohort's
// matches or active-run pointer.
type cohortLocks struct {
	mu sync.Map // uuid.UUID -> *sync.Mutex
}

func (c *cohortLocks) forCohort(id uuid.UUID) *sync.Mutex {
	lock, _ := c.mu.LoadOrStore(id, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
