package directive

import (
	"os"

	"EnigmaNetz/Enigma-Go-Collector/config"
	"EnigmaNetz/Enigma-Go-Collector/internal/dataset"
	"EnigmaNetz/Enigma-Go-Collector/internal/logger"
)

// Capture is the capture subsystem as the handlers see it
type Capture interface {
	Init(device string, promisc bool) error
	RegisterLocalAddress(text string) bool
}

// chdir is swapped in tests
var chdir = os.Chdir

// Handlers applies configuration directives. Each method validates its
// argument, logs the outcome, and reports success; the caller is expected
// to abort loading on the first false.
type Handlers struct {
	State    *config.State
	Log      *logger.Logger
	Capture  Capture
	Registry *dataset.Registry
}

// New creates handlers that share state with the capture engine and registry
func New(state *config.State, log *logger.Logger, capture Capture, registry *dataset.Registry) *Handlers {
	return &Handlers{State: state, Log: log, Capture: capture, Registry: registry}
}

// OpenInterface starts capture on iface using the configured promiscuous flag
func (h *Handlers) OpenInterface(iface string) bool {
	h.Log.Info("Opening interface %s", iface)
	if err := h.Capture.Init(iface, h.State.Promiscuous); err != nil {
		h.Log.Error("unable to open interface %s: %v", iface, err)
		return false
	}
	return true
}

// SetBPFProgram stores the filter program applied to interfaces
func (h *Handlers) SetBPFProgram(s string) bool {
	h.Log.Info("BPF program is: %s", s)
	h.State.BPFProgram = s
	return true
}

// AddLocalAddress registers an address of this host with the capture engine
func (h *Handlers) AddLocalAddress(s string) bool {
	h.Log.Info("adding local address %s", s)
	return h.Capture.RegisterLocalAddress(s)
}

// SetRunDir changes the working directory of the process
func (h *Handlers) SetRunDir(dir string) bool {
	h.Log.Info("setting current directory to %s", dir)
	if err := chdir(dir); err != nil {
		h.Log.Error("chdir: %s: %s", dir, errText(err))
		return false
	}
	return true
}

// SetPIDFile stores the path of the pid file
func (h *Handlers) SetPIDFile(s string) bool {
	h.Log.Info("PID file is: %s", s)
	h.State.PIDFile = s
	return true
}

// SetBPFVlanTagByteOrder accepts "host" or "net"
func (h *Handlers) SetBPFVlanTagByteOrder(which string) bool {
	h.Log.Info("bpf_vlan_tag_byte_order is %s", which)
	switch which {
	case "host":
		h.State.VLANByteConversion = false
		return true
	case "net":
		h.State.VLANByteConversion = true
		return true
	}
	h.Log.Error("unknown bpf_vlan_tag_byte_order '%s'", which)
	return false
}

// SetMatchVlan adds a VLAN id to match. Only the literal "0" may yield zero.
func (h *Handlers) SetMatchVlan(s string) bool {
	h.Log.Info("match_vlan %s", s)
	i := atoi(s)
	if i == 0 && s != "0" {
		h.Log.Error("malformed match_vlan '%s'", s)
		return false
	}
	h.State.AddMatchVLAN(i)
	return true
}

// SetMinfreeBytes stores the free space threshold. Input that is not a
// number is stored as zero and still succeeds.
func (h *Handlers) SetMinfreeBytes(s string) bool {
	h.Log.Info("minfree_bytes %s", s)
	h.State.MinFreeBytes = strtoull(s)
	return true
}

// SetOutputFormat enables "XML" or "JSON" output (case-sensitive)
func (h *Handlers) SetOutputFormat(format string) bool {
	h.Log.Info("output_format %s", format)
	switch format {
	case "XML":
		h.State.SetOutputFormat(config.FormatXML)
		return true
	case "JSON":
		h.State.SetOutputFormat(config.FormatJSON)
		return true
	}
	h.Log.Error("unknown output format '%s'", format)
	return false
}

// AddDataset registers a dataset and builds its array
func (h *Handlers) AddDataset(def dataset.Definition) bool {
	return h.Registry.Register(def)
}

// errText strips the operation and path from an *os.PathError so the log
// line carries only the system error text.
func errText(err error) string {
	if pe, ok := err.(*os.PathError); ok {
		return pe.Err.Error()
	}
	return err.Error()
}
