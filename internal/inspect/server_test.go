package inspect

import (
	"context"
	"io"
	"log"
	"net"
	"os"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/funvibe/objmodel/internal/evaluator"
	"github.com/funvibe/objmodel/internal/symbols"
	"github.com/funvibe/objmodel/internal/typesystem"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// startServer serves Foo (runtime fields, private secret=42, protected kind,
// public id, run/0 public, run/1 private, LIMIT=10) and its subclass Bar.
func startServer(t *testing.T) (*Server, *Client) {
	t.Helper()
	ctor := typesystem.ConstructorDescriptor{Params: []typesystem.ParamKind{typesystem.ParamContext}, FieldsOnly: true}

	foo := typesystem.NewType("Foo", typesystem.KindClass)
	foo.EnableRuntimeFields()
	foo.DeclareField("secret", typesystem.AccessPrivate, 42)
	foo.DeclareField("kind", typesystem.AccessProtected, "foo")
	foo.DeclareField("id", typesystem.AccessPublic, 1)
	foo.DeclareMethod("run", typesystem.AccessPublic, 0, false)
	foo.DeclareMethod("run", typesystem.AccessPrivate, 1, false)
	foo.DeclareConstant("LIMIT", typesystem.AccessPublic, 10)
	foo.DeclareConstructor(ctor)

	iface := typesystem.NewType("Marker", typesystem.KindInterface)

	reg := symbols.NewRegistry()
	if err := reg.RegisterAll([]*typesystem.TypeDescriptor{foo, iface}); err != nil {
		t.Fatal(err)
	}
	bar := typesystem.NewType("Bar", typesystem.KindClass)
	bar.Extend(foo)
	bar.DeclareConstructor(ctor)
	if err := reg.RegisterAll([]*typesystem.TypeDescriptor{bar}); err != nil {
		t.Fatal(err)
	}

	srv, err := NewServer(evaluator.NewContext(reg))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	client, err := Dial(lis.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return srv, client
}

func call(t *testing.T, c *Client, method string, req map[string]any) map[string]any {
	t.Helper()
	resp, err := c.Call(context.Background(), method, req)
	if err != nil {
		t.Fatalf("%s(%v) failed: %v", method, req, err)
	}
	return resp
}

func TestResolveMethodRPC(t *testing.T) {
	_, c := startServer(t)

	resp := call(t, c, "ResolveMethod", map[string]any{"type": "Foo", "name": "RUN"})
	candidates := resp["candidates"].([]any)
	if len(candidates) != 1 {
		t.Fatalf("global caller sees %v, want only the public candidate", candidates)
	}
	if got := candidates[0].(map[string]any); got["access"] != "public" || got["params"] != 0 {
		t.Errorf("candidate = %v", got)
	}

	resp = call(t, c, "ResolveMethod", map[string]any{"type": "Foo", "name": "run", "caller": "Foo"})
	if n := len(resp["candidates"].([]any)); n != 2 {
		t.Errorf("declarer sees %d candidates, want 2", n)
	}
}

func TestRPCErrors(t *testing.T) {
	_, c := startServer(t)

	tests := []struct {
		name   string
		method string
		req    map[string]any
		code   codes.Code
	}{
		{"missing method", "ResolveMethod", map[string]any{"type": "Foo", "name": "nope"}, codes.NotFound},
		{"unknown type", "ResolveMethod", map[string]any{"type": "Nope", "name": "run"}, codes.NotFound},
		{"no type", "NewObject", map[string]any{}, codes.InvalidArgument},
		{"interface", "NewObject", map[string]any{"type": "Marker"}, codes.FailedPrecondition},
		{"bad id", "FieldsCount", map[string]any{"id": "x"}, codes.InvalidArgument},
		{"unknown id", "FieldsCount", map[string]any{"id": "00000000-0000-0000-0000-000000000001"}, codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Call(context.Background(), tt.method, tt.req)
			if got := status.Code(err); got != tt.code {
				t.Errorf("code = %v (%v), want %v", got, err, tt.code)
			}
		})
	}

	if _, err := c.Call(context.Background(), "Explode", nil); err == nil {
		t.Errorf("unknown method must fail on the client")
	}
}

func TestResolveConstantRPC(t *testing.T) {
	_, c := startServer(t)
	resp := call(t, c, "ResolveConstant", map[string]any{"type": "Bar", "name": "LIMIT"})
	if resp["value"] != "10" || resp["declaring_type"] != "Foo" {
		t.Errorf("LIMIT = %v", resp)
	}
}

func TestObjectLifecycle(t *testing.T) {
	srv, c := startServer(t)

	ref := call(t, c, "NewObject", map[string]any{"type": "bar"})
	id := ref["id"].(string)
	if ref["type"] != "Bar" || id == "" {
		t.Fatalf("NewObject = %v", ref)
	}

	resp := call(t, c, "SetProperty", map[string]any{"id": id, "name": "color", "value": `"red"`})
	if resp["kind"] != "runtime field" {
		t.Errorf("SetProperty(color) = %v", resp)
	}
	resp = call(t, c, "SetProperty", map[string]any{"id": id, "name": "secret", "value": "7", "caller": "Foo"})
	if resp["kind"] != "field" || resp["declaring_type"] != "Foo" {
		t.Errorf("SetProperty(secret) = %v", resp)
	}
	if _, err := c.Call(context.Background(), "SetProperty", map[string]any{"id": id, "name": "secret", "value": "1"}); status.Code(err) != codes.PermissionDenied {
		t.Errorf("writing a private field from global: %v", err)
	}

	resp = call(t, c, "Enumerate", map[string]any{"id": id, "format": "print"})
	var keys, values []string
	for _, e := range resp["entries"].([]any) {
		entry := e.(map[string]any)
		keys = append(keys, entry["key"].(string))
		values = append(values, entry["value"].(string))
	}
	wantKeys := []string{"secret:Foo:private", "kind:protected", "id", "color"}
	wantValues := []string{"7", `"foo"`, "1", `"red"`}
	for i := range wantKeys {
		if i >= len(keys) || keys[i] != wantKeys[i] || values[i] != wantValues[i] {
			t.Fatalf("entries = %v = %v, want %v = %v", keys, values, wantKeys, wantValues)
		}
	}

	resp = call(t, c, "Enumerate", map[string]any{"id": id, "visible": true})
	if n := len(resp["entries"].([]any)); n != 2 {
		t.Errorf("global caller sees %d fields, want 2 (id, color)", n)
	}

	resp = call(t, c, "FieldsCount", map[string]any{"id": id})
	if resp["count"] != 4 {
		t.Errorf("FieldsCount = %v, want 4", resp["count"])
	}

	srv.mu.Lock()
	n := len(srv.heap)
	srv.mu.Unlock()
	if n != 1 {
		t.Errorf("heap holds %d objects, want 1", n)
	}
}

func TestMethods(t *testing.T) {
	names, err := Methods()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != len(handlers) {
		t.Errorf("schema has %d methods, %d handled", len(names), len(handlers))
	}
	for _, name := range names {
		if _, ok := handlers[name]; !ok {
			t.Errorf("no handler for %s", name)
		}
	}
}
