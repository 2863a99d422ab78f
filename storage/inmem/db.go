package inmemdb

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core/school"
)

var (
	// errors
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type (
	DB struct {
		Accounts   *Table[Account]
		Students   *Table[school.Student]
		Faculty    *Table[school.Faculty]
		Classes    *Table[school.Class]
		Roles      *Table[school.Role]
		Attendance *Table[school.Attendance]
	}

	row[T any] struct {
		seq  int
		item T
	}

	// Table keeps rows in insertion order.
	Table[T any] struct {
		mutex sync.RWMutex
		table map[string]*row[T]
		seq   int
		idOf  func(T) string
		setID func(*T, string)
	}
)

func Open() *DB {
	return &DB{
		Accounts: newTable(func(a Account) string { return a.ID }, func(a *Account, id string) { a.ID = id }),
		Students: newTable(
			func(s school.Student) string { return s.ID }, func(s *school.Student, id string) { s.ID = id },
		),
		Faculty: newTable(
			func(f school.Faculty) string { return f.ID }, func(f *school.Faculty, id string) { f.ID = id },
		),
		Classes: newTable(
			func(c school.Class) string { return c.ID }, func(c *school.Class, id string) { c.ID = id },
		),
		Roles: newTable(func(r school.Role) string { return r.ID }, func(r *school.Role, id string) { r.ID = id }),
		Attendance: newTable(
			func(a school.Attendance) string { return a.ID }, func(a *school.Attendance, id string) { a.ID = id },
		),
	}
}

func newTable[T any](idOf func(T) string, setID func(*T, string)) *Table[T] {
	return &Table[T]{table: make(map[string]*row[T]), idOf: idOf, setID: setID}
}

func (t *Table[T]) query() []T {
	rows := make([]*row[T], 0, len(t.table))
	for _, r := range t.table {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	items := make([]T, len(rows))
	for i, r := range rows {
		items[i] = r.item
	}
	return items
}

// All returns every row, oldest first.
func (t *Table[T]) All() []T {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.query()
}

// Filter returns the rows matching keep, oldest first.
func (t *Table[T]) Filter(keep func(T) bool) []T {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	items := make([]T, 0)
	for _, item := range t.query() {
		if keep(item) {
			items = append(items, item)
		}
	}
	return items
}

// Find returns the first row matching match.
func (t *Table[T]) Find(match func(T) bool) (T, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	for _, item := range t.query() {
		if match(item) {
			return item, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

func (t *Table[T]) Get(id string) (T, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	if r, ok := t.table[id]; ok {
		return r.item, nil
	}
	var zero T
	return zero, ErrNotFound
}

// Insert stores item under a new id. unique, when given, is checked against every
// existing row under the same lock; a match fails the insert with ErrConflict.
func (t *Table[T]) Insert(item T, unique ...func(existing T) bool) (T, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	for _, r := range t.table {
		for _, clash := range unique {
			if clash(r.item) {
				var zero T
				return zero, ErrConflict
			}
		}
	}

	t.seq++
	t.setID(&item, uuid.NewString())
	t.table[t.idOf(item)] = &row[T]{seq: t.seq, item: item}
	return item, nil
}

// Update applies change to the row id and stores the result.
func (t *Table[T]) Update(id string, change func(*T) error) (T, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	r, ok := t.table[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	item := r.item
	if err := change(&item); err != nil {
		var zero T
		return zero, err
	}
	t.setID(&item, id)
	r.item = item
	return item, nil
}

func (t *Table[T]) Delete(id string) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if _, ok := t.table[id]; !ok {
		return ErrNotFound
	}
	delete(t.table, id)
	return nil
}

func (t *Table[T]) Len() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return len(t.table)
}
