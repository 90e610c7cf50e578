package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/funvibe/objmodel/internal/evaluator"
	"github.com/funvibe/objmodel/internal/typesystem"
)

type handlerFunc func(s *Server, req map[string]any) (map[string]any, error)

var handlers = map[string]handlerFunc{
	"ResolveMethod":   (*Server).resolveMethod,
	"ResolveConstant": (*Server).resolveConstant,
	"NewObject":       (*Server).newObject,
	"SetProperty":     (*Server).setProperty,
	"Enumerate":       (*Server).enumerate,
	"FieldsCount":     (*Server).fieldsCount,
}

// Server implements the inspection service on top of a runtime context.
type Server struct {
	rt *evaluator.Context

	// mu guards heap and the objects in it; runtime field stores are not
	// synchronized themselves.
	mu   sync.Mutex
	heap map[uuid.UUID]*evaluator.Instance

	grpc *grpc.Server
}

func NewServer(rt *evaluator.Context) (*Server, error) {
	sd, err := Schema()
	if err != nil {
		return nil, err
	}
	s := &Server{
		rt:   rt,
		heap: make(map[uuid.UUID]*evaluator.Instance),
		grpc: grpc.NewServer(grpc.UnaryInterceptor(logCalls)),
	}
	s.grpc.RegisterService(serviceDesc(sd), s)
	return s, nil
}

// serviceDesc builds the grpc registration of sd. Every method decodes into a
// dynamic message and dispatches through handlers.
func serviceDesc(sd *desc.ServiceDescriptor) *grpc.ServiceDesc {
	sdesc := &grpc.ServiceDesc{
		ServiceName: sd.GetFullyQualifiedName(),
		HandlerType: (*any)(nil),
		Metadata:    sd.GetFile().GetName(),
	}
	for _, md := range sd.GetMethods() {
		sdesc.Methods = append(sdesc.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := dynamic.NewMessage(md.GetInputType())
				if err := dec(in); err != nil {
					return nil, err
				}
				s := srv.(*Server)
				if interceptor == nil {
					return s.handle(md, in)
				}
				info := &grpc.UnaryServerInfo{
					Server:     srv,
					FullMethod: fmt.Sprintf("/%s/%s", sd.GetFullyQualifiedName(), md.GetName()),
				}
				return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
					return s.handle(md, req.(*dynamic.Message))
				})
			},
		})
	}
	return sdesc
}

func (s *Server) handle(md *desc.MethodDescriptor, in *dynamic.Message) (any, error) {
	h, ok := handlers[md.GetName()]
	if !ok {
		return nil, status.Errorf(codes.Unimplemented, "method %s not implemented", md.GetName())
	}
	resp, err := h(s, fromMessage(in))
	if err != nil {
		return nil, toStatus(err)
	}
	out := dynamic.NewMessage(md.GetOutputType())
	if err := toMessage(resp, out); err != nil {
		return nil, status.Errorf(codes.Internal, "building response: %v", err)
	}
	return out, nil
}

func logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		log.Printf("%s failed after %s: %v", info.FullMethod, time.Since(start), err)
	} else {
		log.Printf("%s ok in %s", info.FullMethod, time.Since(start))
	}
	return resp, err
}

// toStatus maps object model errors to grpc status codes.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := codes.InvalidArgument
	switch {
	case errors.Is(err, typesystem.ErrMemberNotFound):
		code = codes.NotFound
	case errors.Is(err, typesystem.ErrMemberInaccessible):
		code = codes.PermissionDenied
	case errors.Is(err, typesystem.ErrUnsupportedType),
		errors.Is(err, typesystem.ErrNotInstantiable),
		errors.Is(err, typesystem.ErrConstructionUnsupported):
		code = codes.FailedPrecondition
	}
	return status.Error(code, err.Error())
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	log.Printf("inspector listening on %s", lis.Addr())
	return s.grpc.Serve(lis)
}

// Stop stops the server, waiting for running calls to finish.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

// Put adds inst to the heap so clients can address it by id.
func (s *Server) Put(inst *evaluator.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heap[inst.ID] = inst
}

func (s *Server) lookupType(name string) (*typesystem.TypeDescriptor, error) {
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "type is required")
	}
	return s.rt.Registry.Resolve(name)
}

// lookupCaller resolves an optional caller type; "" is the global scope.
func (s *Server) lookupCaller(name string) (*typesystem.TypeDescriptor, error) {
	if name == "" {
		return nil, nil
	}
	return s.rt.Registry.Resolve(name)
}

// object must be called with s.mu held.
func (s *Server) object(id string) (*evaluator.Instance, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad object id %q: %v", id, err)
	}
	inst, ok := s.heap[uid]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "no object %s", uid)
	}
	return inst, nil
}

func str(req map[string]any, name string) string {
	s, _ := req[name].(string)
	return s
}

func (s *Server) resolveMethod(req map[string]any) (map[string]any, error) {
	t, err := s.lookupType(str(req, "type"))
	if err != nil {
		return nil, err
	}
	caller, err := s.lookupCaller(str(req, "caller"))
	if err != nil {
		return nil, err
	}
	m, err := s.rt.Resolver.LookupMethod(t, str(req, "name"), caller)
	if err != nil {
		return nil, err
	}

	var candidates []any
	for _, c := range m.Overloads.Methods() {
		candidates = append(candidates, map[string]any{
			"declaring_type": c.DeclaringType.Name(),
			"access":         c.Access.String(),
			"params":         c.Params,
			"static":         c.IsStatic,
		})
	}
	return map[string]any{"name": m.Name, "candidates": candidates}, nil
}

func (s *Server) resolveConstant(req map[string]any) (map[string]any, error) {
	t, err := s.lookupType(str(req, "type"))
	if err != nil {
		return nil, err
	}
	caller, err := s.lookupCaller(str(req, "caller"))
	if err != nil {
		return nil, err
	}
	m, err := evaluator.LookupConstant(t, str(req, "name"), caller)
	if err != nil {
		return nil, err
	}
	value, err := json.Marshal(m.Field.Default)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"declaring_type": m.Field.DeclaringType.Name(),
		"access":         m.Field.Access.String(),
		"value":          string(value),
	}, nil
}

func (s *Server) newObject(req map[string]any) (map[string]any, error) {
	t, err := s.lookupType(str(req, "type"))
	if err != nil {
		return nil, err
	}
	inst, err := s.rt.New(t)
	if err != nil {
		return nil, err
	}
	s.Put(inst)
	return map[string]any{"id": inst.ID.String(), "type": t.Name()}, nil
}

func (s *Server) setProperty(req map[string]any) (map[string]any, error) {
	caller, err := s.lookupCaller(str(req, "caller"))
	if err != nil {
		return nil, err
	}
	raw := str(req, "value")
	if raw == "" {
		raw = "null"
	}
	v, err := evaluator.ParseJSON([]byte(raw))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "value: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	inst, err := s.object(str(req, "id"))
	if err != nil {
		return nil, err
	}
	name := str(req, "name")
	if err := evaluator.WriteProperty(inst, name, v, caller); err != nil {
		return nil, err
	}
	m, err := evaluator.LookupProperty(inst, name, caller)
	if err != nil {
		return nil, err
	}
	resp := map[string]any{"kind": m.Kind.String()}
	if m.Field != nil {
		resp["declaring_type"] = m.Field.DeclaringType.Name()
	}
	return resp, nil
}

func (s *Server) enumerate(req map[string]any) (map[string]any, error) {
	format, ok := evaluator.FormatByName(str(req, "format"))
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown format %q", str(req, "format"))
	}
	caller, err := s.lookupCaller(str(req, "caller"))
	if err != nil {
		return nil, err
	}
	filter := evaluator.FieldFilter(evaluator.Reflectable)
	if visible, _ := req["visible"].(bool); visible {
		filter = evaluator.VisibleTo(caller)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	inst, err := s.object(str(req, "id"))
	if err != nil {
		return nil, err
	}
	var entries []any
	for k, v := range evaluator.Enumerate(inst, filter, format, true) {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		entries = append(entries, map[string]any{"key": k, "value": string(raw)})
	}
	return map[string]any{"entries": entries}, nil
}

func (s *Server) fieldsCount(req map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, err := s.object(str(req, "id"))
	if err != nil {
		return nil, err
	}
	return map[string]any{"count": evaluator.FieldsCount(inst)}, nil
}
