package config

// OutputFormat selects a statistics output encoding
type OutputFormat int

const (
	FormatXML OutputFormat = iota
	FormatJSON
)

// State is the process configuration assembled from the directive file
// during startup. Directive handlers and the capture engine share one
// instance by pointer. Fields are last-write-wins and are not safe for
// concurrent mutation.
type State struct {
	// Promiscuous opens capture interfaces in promiscuous mode
	Promiscuous bool
	// BPFProgram is applied to every interface opened afterwards
	BPFProgram string
	// VLANByteConversion is true when the VLAN tag field is read in network
	// byte order ("net", the default) and false when it is read in host order
	VLANByteConversion bool
	// MatchVLANs lists the VLAN ids to keep; empty means no VLAN matching
	MatchVLANs []int
	// PIDFile is the path the process id is written to
	PIDFile string
	// MinFreeBytes is the free space required before writing output
	MinFreeBytes uint64
	// OutputXML and OutputJSON are independent; both may be enabled
	OutputXML  bool
	OutputJSON bool
}

// NewState returns an empty state with the given promiscuous setting.
// VLAN tags are read in network order until bpf_vlan_tag_byte_order says
// otherwise.
func NewState(promisc bool) *State {
	return &State{Promiscuous: promisc, VLANByteConversion: true}
}

// MatchVLAN returns the most recently configured VLAN tag
func (s *State) MatchVLAN() (int, bool) {
	if len(s.MatchVLANs) == 0 {
		return 0, false
	}
	return s.MatchVLANs[len(s.MatchVLANs)-1], true
}

// AddMatchVLAN records tag and activates VLAN matching
func (s *State) AddMatchVLAN(tag int) {
	s.MatchVLANs = append(s.MatchVLANs, tag)
}

// SetOutputFormat enables one output encoding
func (s *State) SetOutputFormat(f OutputFormat) {
	switch f {
	case FormatXML:
		s.OutputXML = true
	case FormatJSON:
		s.OutputJSON = true
	}
}

// OutputFormats lists the enabled encodings in a stable order
func (s *State) OutputFormats() []string {
	var out []string
	if s.OutputXML {
		out = append(out, "XML")
	}
	if s.OutputJSON {
		out = append(out, "JSON")
	}
	return out
}
