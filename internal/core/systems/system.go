// Package systems runs per-tick logic over the entity store in a fixed order.
package systems

import (
	"errors"
	"fmt"
	"time"

	"github.com/zeusync/livescene/internal/core/models"
)

// System is one step of the tick.
type System interface {
	Name() string
	Update(store *models.Store) error
}

var (
	ErrSystemExists   = errors.New("system already registered")
	ErrSystemNotFound = errors.New("system not found")
)

// Metrics tracks execution time of a single system.
type Metrics struct {
	Runs     uint64
	Errors   uint64
	Last     time.Duration
	Average  time.Duration
	LastErr  error
	LastTime time.Time
}

type entry struct {
	system  System
	enabled bool
	metrics Metrics
}

// Schedule runs registered systems in registration order. It is driven by
// the world goroutine and is not safe for concurrent use.
type Schedule struct {
	entries []*entry
	index   map[string]*entry
}

func NewSchedule(systems ...System) *Schedule {
	s := &Schedule{index: make(map[string]*entry)}
	for _, sys := range systems {
		_ = s.Register(sys)
	}
	return s
}

func (s *Schedule) Register(sys System) error {
	if _, ok := s.index[sys.Name()]; ok {
		return fmt.Errorf("%s: %w", sys.Name(), ErrSystemExists)
	}
	e := &entry{system: sys, enabled: true}
	s.entries = append(s.entries, e)
	s.index[sys.Name()] = e
	return nil
}

func (s *Schedule) SetEnabled(name string, enabled bool) error {
	e, ok := s.index[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrSystemNotFound)
	}
	e.enabled = enabled
	return nil
}

// Update runs every enabled system once. A failing system does not stop the
// ones after it; errors are joined.
func (s *Schedule) Update(store *models.Store) error {
	var all error
	for _, e := range s.entries {
		if !e.enabled {
			continue
		}
		start := time.Now()
		err := e.system.Update(store)
		e.record(time.Since(start), err)
		if err != nil {
			all = errors.Join(all, fmt.Errorf("%s: %w", e.system.Name(), err))
		}
	}
	return all
}

func (s *Schedule) Metrics(name string) (Metrics, bool) {
	e, ok := s.index[name]
	if !ok {
		return Metrics{}, false
	}
	return e.metrics, true
}

// Order returns system names in execution order.
func (s *Schedule) Order() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.system.Name()
	}
	return out
}

func (e *entry) record(d time.Duration, err error) {
	m := &e.metrics
	m.Runs++
	m.Last = d
	m.LastTime = time.Now()
	m.Average += (d - m.Average) / time.Duration(m.Runs)
	m.LastErr = err
	if err != nil {
		m.Errors++
	}
}
