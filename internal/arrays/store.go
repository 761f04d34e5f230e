package arrays

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"EnigmaNetz/Enigma-Go-Collector/internal/dataset"
)

var (
	// ErrUnknownIndexer is returned for a dimension whose indexer is not known
	ErrUnknownIndexer = errors.New("unknown indexer")
	// ErrUnknownFilter is returned for a filter name that is not known
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrExists is returned when an array of the same name was already built
	ErrExists = errors.New("array already exists")
)

var indexers = map[string]bool{
	"asn":                  true,
	"certain_qnames":       true,
	"client":               true,
	"client_subnet":        true,
	"client_subnet2":       true,
	"country":              true,
	"dns_ip_version":       true,
	"dns_source_port":      true,
	"dns_sport_range":      true,
	"do_bit":               true,
	"edns_bufsiz":          true,
	"edns_version":         true,
	"idn_qname":            true,
	"ip_direction":         true,
	"ip_proto":             true,
	"ip_version":           true,
	"label_count":          true,
	"msglen":               true,
	"null":                 true,
	"opcode":               true,
	"qclass":               true,
	"qname":                true,
	"qnamelen":             true,
	"qr_aa_bits":           true,
	"qtype":                true,
	"query_classification": true,
	"rcode":                true,
	"rd_bit":               true,
	"response_time":        true,
	"second_ld":            true,
	"server":               true,
	"tc_bit":               true,
	"third_ld":             true,
	"tld":                  true,
	"transport":            true,
}

var filters = map[string]bool{
	"any":                   true,
	"queries-only":          true,
	"replies-only":          true,
	"nxdomains-only":        true,
	"popular-qtypes":        true,
	"idn-only":              true,
	"aaaa-or-a6-only":       true,
	"root-servers-net-only": true,
	"chaos-class":           true,
	"priming-query":         true,
}

// Indexers returns the names of all known indexers, sorted
func Indexers() []string {
	out := make([]string, 0, len(indexers))
	for name := range indexers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Array is a two-dimensional statistics array built for a dataset
type Array struct {
	Name    string
	First   dataset.Dimension
	Second  dataset.Dimension
	Filters []string
	Opts    dataset.Options
}

// Store builds arrays locally and keeps them in definition order
type Store struct {
	arrays []*Array
	byName map[string]*Array
}

// NewStore creates an empty array store
func NewStore() *Store {
	return &Store{byName: make(map[string]*Array)}
}

// CreateArray validates def and records its array. A missing second
// dimension becomes the single-cell All:null dimension.
func (s *Store) CreateArray(def dataset.Definition) error {
	if _, ok := s.byName[def.Name]; ok {
		return fmt.Errorf("%w: %s", ErrExists, def.Name)
	}

	first, err := resolveDimension(def.First, false)
	if err != nil {
		return err
	}
	second, err := resolveDimension(def.Second, true)
	if err != nil {
		return err
	}
	fl, err := parseFilters(def.Filter)
	if err != nil {
		return err
	}

	a := &Array{
		Name:    def.Name,
		First:   first,
		Second:  second,
		Filters: fl,
		Opts:    def.Opts,
	}
	s.arrays = append(s.arrays, a)
	s.byName[def.Name] = a
	return nil
}

// Arrays returns all arrays in creation order
func (s *Store) Arrays() []*Array {
	out := make([]*Array, len(s.arrays))
	copy(out, s.arrays)
	return out
}

// Lookup returns the array built for name
func (s *Store) Lookup(name string) (*Array, bool) {
	a, ok := s.byName[name]
	return a, ok
}

func resolveDimension(d dataset.Dimension, optional bool) (dataset.Dimension, error) {
	if d.Indexer == "" {
		if optional {
			return dataset.Dimension{Label: "All", Indexer: "null"}, nil
		}
		return d, fmt.Errorf("%w: dimension %q has no indexer", ErrUnknownIndexer, d.Label)
	}
	if !indexers[d.Indexer] {
		return d, fmt.Errorf("%w: %s", ErrUnknownIndexer, d.Indexer)
	}
	if d.Label == "" {
		d.Label = d.Indexer
	}
	return d, nil
}

// parseFilters splits a comma-separated filter list. Empty means any.
func parseFilters(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{"any"}, nil
	}
	var out []string
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !filters[name] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, name)
		}
		out = append(out, name)
	}
	if len(out) == 0 {
		return []string{"any"}, nil
	}
	return out, nil
}

// chain runs factories in order and stops at the first failure
type chain []dataset.ArrayFactory

// Chain combines factories so that a dataset is built by each in turn
func Chain(factories ...dataset.ArrayFactory) dataset.ArrayFactory {
	return chain(factories)
}

func (c chain) CreateArray(def dataset.Definition) error {
	for _, f := range c {
		if err := f.CreateArray(def); err != nil {
			return err
		}
	}
	return nil
}
