package arrays

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"EnigmaNetz/Enigma-Go-Collector/internal/dataset"
)

const (
	arrayServiceName  = "dsc.collector.v1.ArrayService"
	createArrayMethod = "/" + arrayServiceName + "/CreateArray"
)

// RemoteFactory forwards dataset definitions to an array service over gRPC
type RemoteFactory struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// DialRemote connects to the array service at addr
func DialRemote(addr string, useInsecure bool) (*RemoteFactory, error) {
	var opts []grpc.DialOption
	if useInsecure {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to array service: %w", err)
	}
	return NewRemoteFactory(conn), nil
}

// NewRemoteFactory wraps an existing connection
func NewRemoteFactory(conn *grpc.ClientConn) *RemoteFactory {
	return &RemoteFactory{conn: conn, timeout: 10 * time.Second}
}

// CreateArray sends def to the remote service and waits for its verdict
func (f *RemoteFactory) CreateArray(def dataset.Definition) error {
	req, err := definitionToStruct(def)
	if err != nil {
		return fmt.Errorf("failed to encode dataset %s: %w", def.Name, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	if err := f.conn.Invoke(ctx, createArrayMethod, req, &emptypb.Empty{}); err != nil {
		return fmt.Errorf("array service rejected dataset %s: %w", def.Name, err)
	}
	return nil
}

// Close closes the underlying connection
func (f *RemoteFactory) Close() error {
	return f.conn.Close()
}

func definitionToStruct(def dataset.Definition) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"name":  def.Name,
		"layer": def.Layer,
		"first": map[string]interface{}{
			"label":   def.First.Label,
			"indexer": def.First.Indexer,
		},
		"second": map[string]interface{}{
			"label":   def.Second.Label,
			"indexer": def.Second.Indexer,
		},
		"filter":    def.Filter,
		"min_count": def.Opts.MinCount,
		"max_cells": def.Opts.MaxCells,
	})
}

func definitionFromStruct(s *structpb.Struct) (dataset.Definition, error) {
	fields := s.GetFields()
	name := fields["name"].GetStringValue()
	if name == "" {
		return dataset.Definition{}, fmt.Errorf("dataset definition has no name")
	}
	dim := func(key string) dataset.Dimension {
		d := fields[key].GetStructValue().GetFields()
		return dataset.Dimension{
			Label:   d["label"].GetStringValue(),
			Indexer: d["indexer"].GetStringValue(),
		}
	}
	return dataset.Definition{
		Name:   name,
		Layer:  fields["layer"].GetStringValue(),
		First:  dim("first"),
		Second: dim("second"),
		Filter: fields["filter"].GetStringValue(),
		Opts: dataset.Options{
			MinCount: int(fields["min_count"].GetNumberValue()),
			MaxCells: int(fields["max_cells"].GetNumberValue()),
		},
	}, nil
}

// ArrayServiceServer is the server side of the array service
type ArrayServiceServer interface {
	CreateArray(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
}

// Server exposes a local factory as an array service
type Server struct {
	factory dataset.ArrayFactory
}

// NewServer creates a server that builds arrays with factory
func NewServer(factory dataset.ArrayFactory) *Server {
	return &Server{factory: factory}
}

// CreateArray decodes a definition and builds it locally
func (s *Server) CreateArray(_ context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	def, err := definitionFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.factory.CreateArray(def); err != nil {
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	return &emptypb.Empty{}, nil
}

// RegisterArrayService registers srv with a gRPC server
func RegisterArrayService(s *grpc.Server, srv ArrayServiceServer) {
	s.RegisterService(&arrayServiceDesc, srv)
}

var arrayServiceDesc = grpc.ServiceDesc{
	ServiceName: arrayServiceName,
	HandlerType: (*ArrayServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateArray", Handler: createArrayHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dsc/collector/v1/arrays.proto",
}

func createArrayHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ArrayServiceServer).CreateArray(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: createArrayMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ArrayServiceServer).CreateArray(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
