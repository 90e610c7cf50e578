// Package inspect serves the object model over gRPC.
//
// The service schema is compiled at start-up from protoSource with protoparse
// and served with dynamic messages, so no generated code is involved. Objects
// created through the service live in an in-memory heap keyed by UUID.
package inspect

import (
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

const (
	protoFile   = "objmodel.proto"
	ServiceName = "objmodel.Inspector"
)

const protoSource = `syntax = "proto3";

package objmodel;

message ResolveMethodRequest {
  string type = 1;
  string name = 2;
  string caller = 3;
}

message Candidate {
  string declaring_type = 1;
  string access = 2;
  int32 params = 3;
  bool static = 4;
}

message ResolveMethodResponse {
  string name = 1;
  repeated Candidate candidates = 2;
}

message ResolveConstantRequest {
  string type = 1;
  string name = 2;
  string caller = 3;
}

message ResolveConstantResponse {
  string declaring_type = 1;
  string access = 2;
  // JSON encoded
  string value = 3;
}

message NewObjectRequest {
  string type = 1;
}

message ObjectRef {
  string id = 1;
  string type = 2;
}

message SetPropertyRequest {
  string id = 1;
  string name = 2;
  // JSON encoded
  string value = 3;
  string caller = 4;
}

message SetPropertyResponse {
  string kind = 1;
  string declaring_type = 2;
}

message EnumerateRequest {
  string id = 1;
  // plain, print, dump or array
  string format = 2;
  string caller = 3;
  // only the fields visible from caller
  bool visible = 4;
}

message Entry {
  string key = 1;
  // JSON encoded
  string value = 2;
}

message EnumerateResponse {
  repeated Entry entries = 1;
}

message FieldsCountRequest {
  string id = 1;
}

message FieldsCountResponse {
  int32 count = 1;
}

service Inspector {
  rpc ResolveMethod(ResolveMethodRequest) returns (ResolveMethodResponse);
  rpc ResolveConstant(ResolveConstantRequest) returns (ResolveConstantResponse);
  rpc NewObject(NewObjectRequest) returns (ObjectRef);
  rpc SetProperty(SetPropertyRequest) returns (SetPropertyResponse);
  rpc Enumerate(EnumerateRequest) returns (EnumerateResponse);
  rpc FieldsCount(FieldsCountRequest) returns (FieldsCountResponse);
}
`

var loadSchema = sync.OnceValues(func() (*desc.ServiceDescriptor, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{protoFile: protoSource}),
	}
	fds, err := parser.ParseFiles(protoFile)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", protoFile, err)
	}
	sd := fds[0].FindService(ServiceName)
	if sd == nil {
		return nil, fmt.Errorf("%s: service %s not found", protoFile, ServiceName)
	}
	return sd, nil
})

// Schema returns the descriptor of the inspection service.
func Schema() (*desc.ServiceDescriptor, error) {
	return loadSchema()
}

// Methods lists the RPC names of the service.
func Methods() ([]string, error) {
	sd, err := Schema()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, md := range sd.GetMethods() {
		names = append(names, md.GetName())
	}
	return names, nil
}
