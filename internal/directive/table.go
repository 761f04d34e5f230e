package directive

import (
	"fmt"
	"strconv"
	"strings"

	"EnigmaNetz/Enigma-Go-Collector/internal/dataset"
)

// Func applies one directive to its already tokenized arguments
type Func func(args []string) bool

// Table maps directive names, as written in dsc.conf, to handlers
type Table map[string]Func

// Table returns the directive table bound to h
func (h *Handlers) Table() Table {
	return Table{
		"interface":               h.single("interface", h.OpenInterface),
		"bpf_program":             h.single("bpf_program", h.SetBPFProgram),
		"local_address":           h.single("local_address", h.AddLocalAddress),
		"run_dir":                 h.single("run_dir", h.SetRunDir),
		"pid_file":                h.single("pid_file", h.SetPIDFile),
		"bpf_vlan_tag_byte_order": h.single("bpf_vlan_tag_byte_order", h.SetBPFVlanTagByteOrder),
		"match_vlan":              h.single("match_vlan", h.SetMatchVlan),
		"minfree_bytes":           h.single("minfree_bytes", h.SetMinfreeBytes),
		"output_format":           h.single("output_format", h.SetOutputFormat),
		"dataset":                 h.datasetDirective,
	}
}

func (h *Handlers) single(name string, fn func(string) bool) Func {
	return func(args []string) bool {
		if len(args) != 1 {
			h.Log.Error("%s expects 1 argument, got %d", name, len(args))
			return false
		}
		return fn(args[0])
	}
}

// datasetDirective handles
//
//	dataset <name> <layer> <label>:<indexer> <label>:<indexer> [filter] [min-count=N] [max-cells=N]
func (h *Handlers) datasetDirective(args []string) bool {
	def, err := ParseDataset(args)
	if err != nil {
		h.Log.Error("invalid dataset directive: %v", err)
		return false
	}
	return h.AddDataset(def)
}

// ParseDataset converts dataset directive arguments into a definition
func ParseDataset(args []string) (dataset.Definition, error) {
	if len(args) < 4 {
		return dataset.Definition{}, fmt.Errorf("expected at least 4 arguments, got %d", len(args))
	}

	def := dataset.Definition{Name: args[0], Layer: args[1]}
	var err error
	if def.First, err = parseDimension(args[2]); err != nil {
		return def, err
	}
	if def.Second, err = parseDimension(args[3]); err != nil {
		return def, err
	}

	for _, arg := range args[4:] {
		key, value, isOpt := strings.Cut(arg, "=")
		if !isOpt {
			if def.Filter != "" {
				return def, fmt.Errorf("dataset %s: more than one filter (%q, %q)", def.Name, def.Filter, arg)
			}
			def.Filter = arg
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return def, fmt.Errorf("dataset %s: invalid value for %s: %q", def.Name, key, value)
		}
		switch key {
		case "min-count":
			def.Opts.MinCount = n
		case "max-cells":
			def.Opts.MaxCells = n
		default:
			return def, fmt.Errorf("dataset %s: unknown option %s", def.Name, key)
		}
	}
	return def, nil
}

func parseDimension(s string) (dataset.Dimension, error) {
	label, indexer, ok := strings.Cut(s, ":")
	if !ok || label == "" || indexer == "" {
		return dataset.Dimension{}, fmt.Errorf("dimension %q must be label:indexer", s)
	}
	return dataset.Dimension{Label: label, Indexer: indexer}, nil
}
