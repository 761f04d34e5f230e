package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EnigmaNetz/Enigma-Go-Collector/internal/dataset"
	"EnigmaNetz/Enigma-Go-Collector/internal/logger"
)

func TestTable_Directives(t *testing.T) {
	f := newFixture(t)
	table := f.h.Table()

	for _, name := range []string{
		"interface", "bpf_program", "local_address", "run_dir", "pid_file",
		"bpf_vlan_tag_byte_order", "match_vlan", "minfree_bytes", "output_format", "dataset",
	} {
		assert.Contains(t, table, name)
	}
	assert.Len(t, table, 10)

	assert.True(t, table["minfree_bytes"]([]string{"4096"}))
	assert.Equal(t, uint64(4096), f.state.MinFreeBytes)

	assert.True(t, table["output_format"]([]string{"JSON"}))
	assert.True(t, f.state.OutputJSON)
}

func TestTable_ArgumentCount(t *testing.T) {
	f := newFixture(t)
	table := f.h.Table()

	assert.False(t, table["pid_file"](nil))
	assert.False(t, table["match_vlan"]([]string{"1", "2"}))
	assert.Equal(t, []string{
		"pid_file expects 1 argument, got 0",
		"match_vlan expects 1 argument, got 2",
	}, f.rec.Messages(logger.Error))
	assert.Empty(t, f.state.MatchVLANs)
}

func TestTable_Dataset(t *testing.T) {
	f := newFixture(t)
	table := f.h.Table()

	ok := table["dataset"]([]string{"qtype", "dns", "All:null", "Qtype:qtype", "queries-only", "max-cells=50"})
	require.True(t, ok)
	require.Len(t, f.factory.defs, 1)
	assert.Equal(t, dataset.Definition{
		Name:   "qtype",
		Layer:  "dns",
		First:  dataset.Dimension{Label: "All", Indexer: "null"},
		Second: dataset.Dimension{Label: "Qtype", Indexer: "qtype"},
		Filter: "queries-only",
		Opts:   dataset.Options{MaxCells: 50},
	}, f.factory.defs[0])

	assert.False(t, table["dataset"]([]string{"QType", "dns", "All:null", "Qtype:qtype"}))
	assert.False(t, table["dataset"]([]string{"rcode", "dns", "All"}))
	assert.Len(t, f.factory.defs, 1)
}

func TestParseDataset(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    dataset.Definition
		wantErr string
	}{
		{
			name: "no filter",
			args: []string{"opcode", "dns", "All:null", "Opcode:opcode"},
			want: dataset.Definition{
				Name: "opcode", Layer: "dns",
				First:  dataset.Dimension{Label: "All", Indexer: "null"},
				Second: dataset.Dimension{Label: "Opcode", Indexer: "opcode"},
			},
		},
		{
			name: "filter and both options",
			args: []string{"qtype_vs_tld", "dns", "Qtype:qtype", "TLD:tld", "queries-only,popular-qtypes", "min-count=2", "max-cells=200"},
			want: dataset.Definition{
				Name: "qtype_vs_tld", Layer: "dns",
				First:  dataset.Dimension{Label: "Qtype", Indexer: "qtype"},
				Second: dataset.Dimension{Label: "TLD", Indexer: "tld"},
				Filter: "queries-only,popular-qtypes",
				Opts:   dataset.Options{MinCount: 2, MaxCells: 200},
			},
		},
		{name: "too few arguments", args: []string{"a", "dns", "All:null"}, wantErr: "expected at least 4 arguments"},
		{name: "dimension without colon", args: []string{"a", "dns", "All", "Q:qtype"}, wantErr: "must be label:indexer"},
		{name: "dimension missing indexer", args: []string{"a", "dns", "All:null", "Q:"}, wantErr: "must be label:indexer"},
		{name: "two filters", args: []string{"a", "dns", "All:null", "Q:qtype", "any", "queries-only"}, wantErr: "more than one filter"},
		{name: "bad option value", args: []string{"a", "dns", "All:null", "Q:qtype", "min-count=lots"}, wantErr: "invalid value for min-count"},
		{name: "unknown option", args: []string{"a", "dns", "All:null", "Q:qtype", "colour=red"}, wantErr: "invalid value for colour"},
		{name: "unknown numeric option", args: []string{"a", "dns", "All:null", "Q:qtype", "depth=3"}, wantErr: "unknown option depth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDataset(tt.args)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
