package dataset

import (
	"errors"
	"fmt"

	"EnigmaNetz/Enigma-Go-Collector/internal/logger"
)

// ErrDuplicate is returned by Add when a dataset of the same name,
// ignoring case, is already registered.
var ErrDuplicate = errors.New("dataset already exists")

// Dimension names one axis of a dataset and the indexer that fills it
type Dimension struct {
	Label   string
	Indexer string
}

// Options tune how a dataset's array is trimmed on output
type Options struct {
	// MinCount folds cells below this count into a catch-all cell
	MinCount int
	// MaxCells caps the number of cells per first-dimension key
	MaxCells int
}

// Definition describes one dataset directive
type Definition struct {
	Name   string
	Layer  string // accepted for compatibility, not used
	First  Dimension
	Second Dimension
	Filter string
	Opts   Options
}

// ArrayFactory materializes the statistics array behind a dataset
type ArrayFactory interface {
	CreateArray(def Definition) error
}

// Registry enforces unique dataset names and hands each new definition to
// an ArrayFactory. The backing table is created on the first registration.
type Registry struct {
	log     *logger.Logger
	factory ArrayFactory
	table   *table
	order   []string

	// newTable is swapped in tests to observe or fail table creation
	newTable func(size int) (*table, error)
}

// NewRegistry creates an empty registry
func NewRegistry(log *logger.Logger, factory ArrayFactory) *Registry {
	return &Registry{
		log:      log,
		factory:  factory,
		newTable: newTable,
	}
}

// Register adds def and builds its array. It logs and returns false if the
// name is taken, the table cannot be created, or the factory fails. A
// factory failure leaves the name registered.
func (r *Registry) Register(def Definition) bool {
	if err := r.Add(def.Name); err != nil {
		if errors.Is(err, ErrDuplicate) {
			r.log.Error("unable to create dataset %s: already exists", def.Name)
		} else {
			r.log.Error("unable to create dataset %s due to internal error: %v", def.Name, err)
		}
		return false
	}

	r.log.Info("creating dataset %s", def.Name)
	if err := r.factory.CreateArray(def); err != nil {
		// The name stays registered: a later attempt with the same name is
		// rejected as a duplicate even though no array exists.
		r.log.Error("unable to create array for dataset %s: %v", def.Name, err)
		return false
	}
	return true
}

// Add records name without building an array
func (r *Registry) Add(name string) error {
	if r.table == nil {
		t, err := r.newTable(TableSize)
		if err != nil {
			return fmt.Errorf("failed to create dataset table: %w", err)
		}
		r.table = t
	}

	if _, ok := r.table.find(name); ok {
		return ErrDuplicate
	}

	if err := r.table.add(name); err != nil {
		return fmt.Errorf("failed to insert dataset %s: %w", name, err)
	}
	r.order = append(r.order, name)
	return nil
}

// Contains reports whether name is registered, ignoring case
func (r *Registry) Contains(name string) bool {
	if r.table == nil {
		return false
	}
	_, ok := r.table.find(name)
	return ok
}

// Len returns the number of registered datasets
func (r *Registry) Len() int {
	if r.table == nil {
		return 0
	}
	return r.table.len()
}

// Names returns registered dataset names in registration order
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
