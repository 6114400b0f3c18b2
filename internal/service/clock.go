package service

import (
	"math/rand"
	"sync"
	"time"
)

// Clock abstracts time.Now so services can be tested at a fixed instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// NumberSource abstracts random digit generation for user codes and
// reference numbers.
type NumberSource interface {
	Intn(n int) int
}

type systemNumberSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// Intn is called from concurrent request handlers; rand.Rand itself is not
// safe for concurrent use.
func (s *systemNumberSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// SystemNumberSource returns a seeded random source safe for concurrent use.
func SystemNumberSource() NumberSource {
	return &systemNumberSource{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}
