package conffile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EnigmaNetz/Enigma-Go-Collector/config"
	"EnigmaNetz/Enigma-Go-Collector/internal/arrays"
	"EnigmaNetz/Enigma-Go-Collector/internal/dataset"
	"EnigmaNetz/Enigma-Go-Collector/internal/directive"
	"EnigmaNetz/Enigma-Go-Collector/internal/logger"
)

func TestParse(t *testing.T) {
	input := `# collector configuration
interface eth0;
bpf_program "udp port 53 and not host 192.0.2.9";   # trailing comment
local_address 192.0.2.1; local_address 2001:db8::1;

dataset qtype dns All:null Qtype:qtype
	queries-only max-cells=50;
pid_file '/var/run/dsc #1.pid';
`
	stmts, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	want := []Statement{
		{Line: 2, Directive: "interface", Args: []string{"eth0"}},
		{Line: 3, Directive: "bpf_program", Args: []string{"udp port 53 and not host 192.0.2.9"}},
		{Line: 4, Directive: "local_address", Args: []string{"192.0.2.1"}},
		{Line: 4, Directive: "local_address", Args: []string{"2001:db8::1"}},
		{Line: 6, Directive: "dataset", Args: []string{"qtype", "dns", "All:null", "Qtype:qtype", "queries-only", "max-cells=50"}},
		{Line: 8, Directive: "pid_file", Args: []string{"/var/run/dsc #1.pid"}},
	}
	assert.Equal(t, want, stmts)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		errorMsg string
	}{
		{"missing terminator", "interface eth0;\nrun_dir /var/lib/dsc", "line 2: statement is missing ';'"},
		{"unterminated quote", "interface eth0;\nbpf_program \"udp;\n", "line 2: unterminated quote"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("Parse error = %v, expected to contain %q", err, tt.errorMsg)
			}
		})
	}
}

func TestParse_EmptyStatements(t *testing.T) {
	stmts, err := Parse(strings.NewReader(";;\n  ; # nothing here\n"))
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

type recordingTable struct {
	calls []string
}

func (r *recordingTable) table(failOn string) directive.Table {
	fn := func(name string) directive.Func {
		return func(args []string) bool {
			r.calls = append(r.calls, name+" "+strings.Join(args, " "))
			return name != failOn
		}
	}
	return directive.Table{
		"interface":     fn("interface"),
		"output_format": fn("output_format"),
		"pid_file":      fn("pid_file"),
	}
}

func TestLoad_FailFast(t *testing.T) {
	input := "interface eth0;\noutput_format xml;\npid_file /run/dsc.pid;\n"

	r := &recordingTable{}
	n, err := Load(strings.NewReader(input), r.table("output_format"))
	require.Error(t, err)
	assert.Equal(t, "line 2: output_format directive failed", err.Error())
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"interface eth0", "output_format xml"}, r.calls, "loading stops at the first failure")
}

func TestLoad_UnknownDirective(t *testing.T) {
	r := &recordingTable{}
	n, err := Load(strings.NewReader("interface eth0;\nturbo on;\n"), r.table(""))
	assert.True(t, errors.Is(err, ErrUnknownDirective))
	assert.Contains(t, err.Error(), `line 2: unknown directive "turbo"`)
	assert.Equal(t, 1, n)
}

type nopCapture struct{ devices []string }

func (c *nopCapture) Init(device string, _ bool) error {
	c.devices = append(c.devices, device)
	return nil
}

func (c *nopCapture) RegisterLocalAddress(string) bool { return true }

func TestLoadFile_EndToEnd(t *testing.T) {
	conf := `interface eth0;
bpf_program "udp port 53";
bpf_vlan_tag_byte_order net;
match_vlan 100;
minfree_bytes 1048576;
output_format XML;
output_format JSON;
dataset qtype dns All:null Qtype:qtype queries-only;
dataset rcode dns All:null Rcode:rcode replies-only;
dataset client_subnet dns Class:query_classification ClientSubnet:client_subnet queries-only max-cells=200;
`
	path := filepath.Join(t.TempDir(), "dsc.conf")
	require.NoError(t, os.WriteFile(path, []byte(conf), 0644))

	rec := logger.NewRecorder()
	log := logger.New(rec, nil, 0)
	state := config.NewState(false)
	store := arrays.NewStore()
	capture := &nopCapture{}
	registry := dataset.NewRegistry(log, store)
	h := directive.New(state, log, capture, registry)

	n, err := LoadFile(path, h.Table())
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	assert.Equal(t, []string{"eth0"}, capture.devices)
	assert.Equal(t, "udp port 53", state.BPFProgram)
	assert.True(t, state.VLANByteConversion)
	assert.Equal(t, []int{100}, state.MatchVLANs)
	assert.Equal(t, uint64(1048576), state.MinFreeBytes)
	assert.Equal(t, []string{"XML", "JSON"}, state.OutputFormats())
	assert.Equal(t, []string{"qtype", "rcode", "client_subnet"}, registry.Names())

	a, ok := store.Lookup("client_subnet")
	require.True(t, ok)
	assert.Equal(t, 200, a.Opts.MaxCells)
	assert.Empty(t, rec.Messages(logger.Error))
}

func TestLoadFile_DuplicateDatasetAborts(t *testing.T) {
	conf := "dataset qtype dns All:null Qtype:qtype;\ndataset QTYPE dns All:null Qtype:qtype;\noutput_format XML;\n"
	path := filepath.Join(t.TempDir(), "dsc.conf")
	require.NoError(t, os.WriteFile(path, []byte(conf), 0644))

	rec := logger.NewRecorder()
	log := logger.New(rec, nil, 0)
	state := config.NewState(false)
	h := directive.New(state, log, &nopCapture{}, dataset.NewRegistry(log, arrays.NewStore()))

	n, err := LoadFile(path, h.Table())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2: dataset directive failed")
	assert.Equal(t, 1, n)
	assert.False(t, state.OutputXML, "statements after the failure are not applied")
	assert.Equal(t, []string{"unable to create dataset QTYPE: already exists"}, rec.Messages(logger.Error))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.conf"), directive.Table{})
	assert.ErrorContains(t, err, "failed to open")
}
