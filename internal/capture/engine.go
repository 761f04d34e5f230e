package capture

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"EnigmaNetz/Enigma-Go-Collector/config"
	"EnigmaNetz/Enigma-Go-Collector/internal/logger"
)

// Handle is the part of a pcap handle the engine uses
type Handle interface {
	SetBPFFilter(expr string) error
	Close()
}

// openLive is swapped in tests
var openLive = func(device string, snapLen int32, promisc bool) (Handle, error) {
	h, err := pcap.OpenLive(device, snapLen, promisc, pcap.BlockForever)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Engine owns the capture handles opened by interface directives, the
// local address set, and VLAN matching. It reads the BPF program and VLAN
// settings from the shared process state.
type Engine struct {
	state   *config.State
	log     *logger.Logger
	snapLen int32

	devices []string
	handles map[string]Handle
	locals  []netip.Prefix
}

// NewEngine creates an engine bound to state
func NewEngine(state *config.State, log *logger.Logger, snapLen int) *Engine {
	if snapLen <= 0 {
		snapLen = 65535
	}
	return &Engine{
		state:   state,
		log:     log,
		snapLen: int32(snapLen),
		handles: make(map[string]Handle),
	}
}

// Init opens device for capture and applies the configured BPF program
func (e *Engine) Init(device string, promisc bool) error {
	if err := validateInterfaceName(device); err != nil {
		return fmt.Errorf("invalid interface '%s': %w", device, err)
	}
	if _, ok := e.handles[device]; ok {
		return fmt.Errorf("interface %s is already open", device)
	}

	e.log.Trace(0, "pcap_open_live %s snaplen=%d promisc=%t", device, e.snapLen, promisc)
	h, err := openLive(device, e.snapLen, promisc)
	if err != nil {
		return fmt.Errorf("failed to open device %s: %w", device, err)
	}

	if prog := e.state.BPFProgram; prog != "" {
		if err := h.SetBPFFilter(prog); err != nil {
			h.Close()
			return fmt.Errorf("failed to set BPF filter on %s: %w", device, err)
		}
	}

	e.devices = append(e.devices, device)
	e.handles[device] = h
	return nil
}

// Devices returns opened interfaces in the order they were opened
func (e *Engine) Devices() []string {
	out := make([]string, len(e.devices))
	copy(out, e.devices)
	return out
}

// Close releases every open handle
func (e *Engine) Close() {
	for _, dev := range e.devices {
		e.handles[dev].Close()
	}
	e.devices = nil
	e.handles = make(map[string]Handle)
}

// RegisterLocalAddress accepts an address or CIDR prefix that identifies
// this host. Traffic to or from these addresses is classified as local.
func (e *Engine) RegisterLocalAddress(text string) bool {
	p, err := parseLocal(strings.TrimSpace(text))
	if err != nil {
		e.log.Error("invalid local address '%s': %v", text, err)
		return false
	}
	e.locals = append(e.locals, p)
	return true
}

func parseLocal(s string) (netip.Prefix, error) {
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, err
		}
		return p.Masked(), nil
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	a = a.Unmap()
	return netip.PrefixFrom(a, a.BitLen()), nil
}

// IsLocal reports whether addr falls in a registered local address
func (e *Engine) IsLocal(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range e.locals {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Accept applies VLAN matching to a decoded packet. With no match_vlan
// configured every packet is accepted; otherwise only tagged packets
// whose VLAN id is listed pass.
func (e *Engine) Accept(packet gopacket.Packet) bool {
	if len(e.state.MatchVLANs) == 0 {
		return true
	}
	l, ok := packet.Layer(layers.LayerTypeDot1Q).(*layers.Dot1Q)
	if !ok || len(l.Contents) < 2 {
		return false
	}
	return e.matchVLAN(l.Contents[:2])
}

// matchVLAN reads the tag control field in the configured byte order.
// "net" order means the field is big-endian on the wire; "host" reads it
// as the capture host would without conversion.
func (e *Engine) matchVLAN(tci []byte) bool {
	var raw uint16
	if e.state.VLANByteConversion {
		raw = binary.BigEndian.Uint16(tci)
	} else {
		raw = binary.NativeEndian.Uint16(tci)
	}
	id := int(raw & 0x0fff)
	for _, want := range e.state.MatchVLANs {
		if id == want {
			return true
		}
	}
	return false
}
