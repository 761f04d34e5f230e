package arrays

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"EnigmaNetz/Enigma-Go-Collector/internal/dataset"
)

func startArrayService(t *testing.T, factory dataset.ArrayFactory) *RemoteFactory {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterArrayService(srv, NewServer(factory))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	remote := NewRemoteFactory(conn)
	t.Cleanup(func() { remote.Close() })
	return remote
}

func TestRemoteFactory_CreatesArrayOnServer(t *testing.T) {
	store := NewStore()
	remote := startArrayService(t, store)

	def := dataset.Definition{
		Name:   "client_subnet",
		Layer:  "dns",
		First:  dataset.Dimension{Label: "Class", Indexer: "query_classification"},
		Second: dataset.Dimension{Label: "ClientSubnet", Indexer: "client_subnet"},
		Filter: "queries-only",
		Opts:   dataset.Options{MinCount: 5, MaxCells: 200},
	}
	require.NoError(t, remote.CreateArray(def))

	a, ok := store.Lookup("client_subnet")
	require.True(t, ok)
	assert.Equal(t, def.First, a.First)
	assert.Equal(t, def.Second, a.Second)
	assert.Equal(t, []string{"queries-only"}, a.Filters)
	assert.Equal(t, def.Opts, a.Opts)
}

func TestRemoteFactory_ServerRejection(t *testing.T) {
	remote := startArrayService(t, NewStore())

	err := remote.CreateArray(dataset.Definition{Name: "bad", First: dataset.Dimension{Indexer: "nope"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array service rejected dataset bad")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestServer_RejectsNamelessDefinition(t *testing.T) {
	s := NewServer(NewStore())
	req, err := definitionToStruct(dataset.Definition{})
	require.NoError(t, err)

	_, err = s.CreateArray(context.Background(), req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestDefinitionStructRoundTrip(t *testing.T) {
	def := dataset.Definition{
		Name:   "qtype",
		First:  dataset.Dimension{Label: "Qtype", Indexer: "qtype"},
		Filter: "any",
		Opts:   dataset.Options{MaxCells: 30},
	}
	s, err := definitionToStruct(def)
	require.NoError(t, err)
	got, err := definitionFromStruct(s)
	require.NoError(t, err)
	assert.Equal(t, def, got)
}
