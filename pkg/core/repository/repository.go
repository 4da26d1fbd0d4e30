// Package repository stores schedule records in memory with the indexes the
// rule checks need: by (employee, date), by date, and a per-employee sorted
// date list for range lookups.
package repository

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/shiftcalc"
)

// Reader is the read contract every rule check and statistic is computed over
type Reader interface {
	ByEmployeeAndDate(employeeID, date string) []model.ScheduleRecord
	ByEmployeeInRange(employeeID, from, to string) []model.ScheduleRecord
	ByDateAndOverlap(date string, interval shiftcalc.Interval) []model.ScheduleRecord
	ByDate(date string) []model.ScheduleRecord
	All() []model.ScheduleRecord
	Len() int
}

// Repository is a Reader that accepts writes
type Repository interface {
	Reader
	Insert(record model.ScheduleRecord) (string, error)
	Hydrate(records []model.ScheduleRecord) error
	Snapshot() Reader
}

type employeeDateKey struct {
	employeeID string
	date       string
}

// index holds the records and their lookup structures. It is not safe for
// concurrent use on its own; MemoryStore guards it and Snapshot owns a copy.
type index struct {
	order          []string // record ids in insertion order
	byID           map[string]model.ScheduleRecord
	byEmployeeDate map[employeeDateKey][]model.ScheduleRecord
	byDate         map[string][]model.ScheduleRecord
	employeeDates  map[string][]string // sorted, unique
}

func newIndex() *index {
	return &index{
		byID:           make(map[string]model.ScheduleRecord),
		byEmployeeDate: make(map[employeeDateKey][]model.ScheduleRecord),
		byDate:         make(map[string][]model.ScheduleRecord),
		employeeDates:  make(map[string][]string),
	}
}

func (ix *index) insert(record model.ScheduleRecord) error {
	if record.ID == "" {
		return fmt.Errorf("record has no id")
	}
	if _, exists := ix.byID[record.ID]; exists {
		return fmt.Errorf("record %s already stored: %w", record.ID, model.ErrConflict)
	}
	// Range lookups rely on DateLayout ordering
	if _, err := shiftcalc.ParseDate(record.Date); err != nil {
		return fmt.Errorf("record %s: %w", record.ID, err)
	}
	if _, err := shiftcalc.RecordInterval(record); err != nil {
		return fmt.Errorf("record %s: %w", record.ID, err)
	}

	key := employeeDateKey{employeeID: record.EmployeeID, date: record.Date}
	if len(ix.byEmployeeDate[key]) > 0 {
		return fmt.Errorf("employee %s already scheduled on %s: %w", record.EmployeeID, record.Date, model.ErrConflict)
	}

	ix.order = append(ix.order, record.ID)
	ix.byID[record.ID] = record
	ix.byEmployeeDate[key] = append(ix.byEmployeeDate[key], record)
	ix.byDate[record.Date] = append(ix.byDate[record.Date], record)

	// Keep the employee's date list sorted for binary-searched range lookups
	dates := ix.employeeDates[record.EmployeeID]
	pos, found := slices.BinarySearch(dates, record.Date)
	if !found {
		ix.employeeDates[record.EmployeeID] = slices.Insert(dates, pos, record.Date)
	}

	return nil
}

func (ix *index) byEmployeeAndDate(employeeID, date string) []model.ScheduleRecord {
	return slices.Clone(ix.byEmployeeDate[employeeDateKey{employeeID: employeeID, date: date}])
}

// byEmployeeInRange returns records with from <= date <= to, ordered by date.
// Dates use DateLayout so lexical order is calendar order.
func (ix *index) byEmployeeInRange(employeeID, from, to string) []model.ScheduleRecord {
	dates := ix.employeeDates[employeeID]
	start := sort.SearchStrings(dates, from)

	var records []model.ScheduleRecord
	for i := start; i < len(dates) && dates[i] <= to; i++ {
		records = append(records, ix.byEmployeeDate[employeeDateKey{employeeID: employeeID, date: dates[i]}]...)
	}
	return records
}

func (ix *index) byDateAndOverlap(date string, interval shiftcalc.Interval) []model.ScheduleRecord {
	var records []model.ScheduleRecord
	for _, record := range ix.byDate[date] {
		recordInterval, err := shiftcalc.RecordInterval(record)
		if err != nil {
			continue
		}
		if shiftcalc.Overlaps(recordInterval, interval) {
			records = append(records, record)
		}
	}
	return records
}

func (ix *index) byDateAll(date string) []model.ScheduleRecord {
	return slices.Clone(ix.byDate[date])
}

func (ix *index) all() []model.ScheduleRecord {
	records := make([]model.ScheduleRecord, 0, len(ix.order))
	for _, id := range ix.order {
		records = append(records, ix.byID[id])
	}
	return records
}

func (ix *index) clone() *index {
	c := &index{
		order:          slices.Clone(ix.order),
		byID:           make(map[string]model.ScheduleRecord, len(ix.byID)),
		byEmployeeDate: make(map[employeeDateKey][]model.ScheduleRecord, len(ix.byEmployeeDate)),
		byDate:         make(map[string][]model.ScheduleRecord, len(ix.byDate)),
		employeeDates:  make(map[string][]string, len(ix.employeeDates)),
	}
	for id, record := range ix.byID {
		c.byID[id] = record
	}
	for key, records := range ix.byEmployeeDate {
		c.byEmployeeDate[key] = slices.Clone(records)
	}
	for date, records := range ix.byDate {
		c.byDate[date] = slices.Clone(records)
	}
	for employeeID, dates := range ix.employeeDates {
		c.employeeDates[employeeID] = slices.Clone(dates)
	}
	return c
}

// MemoryStore is the indexed, concurrency-safe schedule repository.
// Every read reflects every completed Insert.
type MemoryStore struct {
	mu sync.RWMutex
	ix *index
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ix: newIndex()}
}

// Insert stores a record and returns its id. It refuses a second record for
// the same employee and date with ErrConflict, which makes the insert an
// optimistic check-and-insert for the create critical section.
func (s *MemoryStore) Insert(record model.ScheduleRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ix.insert(record); err != nil {
		return "", err
	}
	return record.ID, nil
}

// Hydrate loads previously persisted records. It is all-or-nothing.
func (s *MemoryStore) Hydrate(records []model.ScheduleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.ix.clone()
	for _, record := range records {
		if err := staged.insert(record); err != nil {
			return fmt.Errorf("failed to hydrate record %s: %w", record.ID, err)
		}
	}
	s.ix = staged
	return nil
}

func (s *MemoryStore) ByEmployeeAndDate(employeeID, date string) []model.ScheduleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.byEmployeeAndDate(employeeID, date)
}

func (s *MemoryStore) ByEmployeeInRange(employeeID, from, to string) []model.ScheduleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.byEmployeeInRange(employeeID, from, to)
}

func (s *MemoryStore) ByDateAndOverlap(date string, interval shiftcalc.Interval) []model.ScheduleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.byDateAndOverlap(date, interval)
}

func (s *MemoryStore) ByDate(date string) []model.ScheduleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.byDateAll(date)
}

// All returns every record in insertion order
func (s *MemoryStore) All() []model.ScheduleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.all()
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ix.order)
}

// Snapshot returns an immutable copy of the current state
func (s *MemoryStore) Snapshot() Reader {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Snapshot{ix: s.ix.clone()}
}

// Snapshot is a point-in-time, read-only view of a MemoryStore
type Snapshot struct {
	ix *index
}

func (s *Snapshot) ByEmployeeAndDate(employeeID, date string) []model.ScheduleRecord {
	return s.ix.byEmployeeAndDate(employeeID, date)
}

func (s *Snapshot) ByEmployeeInRange(employeeID, from, to string) []model.ScheduleRecord {
	return s.ix.byEmployeeInRange(employeeID, from, to)
}

func (s *Snapshot) ByDateAndOverlap(date string, interval shiftcalc.Interval) []model.ScheduleRecord {
	return s.ix.byDateAndOverlap(date, interval)
}

func (s *Snapshot) ByDate(date string) []model.ScheduleRecord {
	return s.ix.byDateAll(date)
}

func (s *Snapshot) All() []model.ScheduleRecord {
	return s.ix.all()
}

func (s *Snapshot) Len() int {
	return len(s.ix.order)
}
