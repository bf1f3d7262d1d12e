package modules

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/aiscriptdev/aiscript/internal/vm"
	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// std.net.grpc is a dynamic, reflection-based gRPC client/server: proto
// files are parsed at runtime with protoreflect and every request/response
// is built as a dynamic.Message, so no precompiled .proto Go stubs are
// needed. Connections and servers live behind integer handles, and request
// and response messages round-trip through plain AIScript objects.
func init() {
	register("std.net.grpc", func(v *vm.VM) (*vm.ObjModule, error) {
		return newExportModule(v, "std.net.grpc", map[string]vm.NativeFn{
			"connect":     grpcConnect,
			"close":       grpcClose,
			"load_proto":  grpcLoadProto,
			"invoke":      grpcInvoke,
			"server":      grpcServer,
			"register":    grpcRegisterService,
			"serve":       grpcServe,
			"serve_async": grpcServeAsync,
			"stop":        grpcStop,
		}), nil
	})
}

var (
	protoRegistry      = make(map[string]*desc.FileDescriptor)
	protoRegistryMutex sync.RWMutex

	grpcConns       = map[int]*grpc.ClientConn{}
	grpcConnsNext   = 1
	grpcServers     = map[int]*grpcServerHandle{}
	grpcServersNext = 1
)

type grpcServerHandle struct {
	server *grpc.Server
}

func grpcConnect(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("net.grpc.connect: expected a target address")
	}
	conn, err := grpc.NewClient(args[0].AsString().Chars, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return vm.Nil(), state.RuntimeError("net.grpc.connect: %s", err)
	}
	id := grpcConnsNext
	grpcConnsNext++
	grpcConns[id] = conn
	return vm.NumberVal(float64(id)), nil
}

func grpcClose(state *vm.VM, args []vm.Value) (vm.Value, error) {
	conn, err := grpcConn(state, args)
	if err != nil {
		return vm.Nil(), err
	}
	delete(grpcConns, int(args[0].AsNumber()))
	if err := conn.Close(); err != nil {
		return vm.Nil(), state.RuntimeError("net.grpc.close: %s", err)
	}
	return vm.Nil(), nil
}

func grpcConn(state *vm.VM, args []vm.Value) (*grpc.ClientConn, error) {
	if len(args) < 1 || !args[0].IsNumber() {
		return nil, state.RuntimeError("expected a net.grpc connection handle")
	}
	conn, ok := grpcConns[int(args[0].AsNumber())]
	if !ok {
		return nil, state.RuntimeError("invalid or closed net.grpc connection handle")
	}
	return conn, nil
}

// grpcLoadProto parses a .proto file and registers every message/service it
// declares in protoRegistry, searched by name in invoke/register.
func grpcLoadProto(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("net.grpc.load_proto: expected a file path")
	}
	parser := protoparse.Parser{ImportPaths: []string{".", state.BaseDir()}}
	fds, err := parser.ParseFiles(args[0].AsString().Chars)
	if err != nil {
		return vm.Nil(), state.RuntimeError("net.grpc.load_proto: %s", err)
	}
	protoRegistryMutex.Lock()
	for _, fd := range fds {
		protoRegistry[fd.GetName()] = fd
	}
	protoRegistryMutex.Unlock()
	return vm.Nil(), nil
}

func findMethodDescriptor(path string) (*desc.MethodDescriptor, error) {
	slash := strings.LastIndexByte(path, '/')
	if slash < 0 {
		return nil, fmt.Errorf("invalid method path %q, expected 'package.Service/Method'", path)
	}
	serviceName, methodName := path[:slash], path[slash+1:]

	protoRegistryMutex.RLock()
	defer protoRegistryMutex.RUnlock()
	for _, fd := range protoRegistry {
		if svc := fd.FindService(serviceName); svc != nil {
			if m := svc.FindMethodByName(methodName); m != nil {
				return m, nil
			}
		}
	}
	return nil, fmt.Errorf("method %q not found (load its proto file first)", path)
}

func findServiceDescriptor(name string) *desc.ServiceDescriptor {
	protoRegistryMutex.RLock()
	defer protoRegistryMutex.RUnlock()
	for _, fd := range protoRegistry {
		if sd := fd.FindService(name); sd != nil {
			return sd
		}
	}
	return nil
}

// grpcInvoke calls method (formatted "package.Service/Method") on conn,
// marshaling request from an AIScript object and unmarshaling the response
// back into one.
func grpcInvoke(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 3 || !args[0].IsNumber() || args[1].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("net.grpc.invoke: expected (conn, method, request)")
	}
	conn, err := grpcConn(state, args)
	if err != nil {
		return vm.Nil(), err
	}
	methodPath := args[1].AsString().Chars
	md, err := findMethodDescriptor(methodPath)
	if err != nil {
		return vm.Nil(), state.RuntimeError("net.grpc.invoke: %s", err)
	}

	reqMsg := dynamic.NewMessage(md.GetInputType())
	if err := objectToDynamicMessage(args[2], reqMsg); err != nil {
		return vm.Nil(), state.RuntimeError("net.grpc.invoke: %s", err)
	}
	respMsg := dynamic.NewMessage(md.GetOutputType())

	wirePath := methodPath
	if wirePath[0] != '/' {
		wirePath = "/" + wirePath
	}
	if err := conn.Invoke(context.Background(), wirePath, reqMsg, respMsg); err != nil {
		return vm.Nil(), state.RuntimeError("net.grpc.invoke: rpc failed: %s", err)
	}
	return dynamicMessageToValue(state, respMsg), nil
}

func grpcServer(state *vm.VM, args []vm.Value) (vm.Value, error) {
	id := grpcServersNext
	grpcServersNext++
	grpcServers[id] = &grpcServerHandle{server: grpc.NewServer()}
	return vm.NumberVal(float64(id)), nil
}

func grpcServerHandleFor(state *vm.VM, v vm.Value) (*grpcServerHandle, error) {
	if !v.IsNumber() {
		return nil, state.RuntimeError("expected a net.grpc server handle")
	}
	h, ok := grpcServers[int(v.AsNumber())]
	if !ok {
		return nil, state.RuntimeError("invalid net.grpc server handle")
	}
	return h, nil
}

// aiscriptGrpcHandler adapts a dynamic gRPC method call into a call of an
// AIScript function value, round-tripping request/response through
// dynamic.Message the same way grpcInvoke does on the client side.
type aiscriptGrpcHandler struct {
	state *vm.VM
	impl  vm.Value
}

func (h *aiscriptGrpcHandler) handleUnary(ctx context.Context, md *desc.MethodDescriptor, dec func(any) error) (any, error) {
	inMsg := dynamic.NewMessage(md.GetInputType())
	if err := dec(inMsg); err != nil {
		return nil, err
	}
	inVal := dynamicMessageToValue(h.state, inMsg)

	fn, ok := h.impl.AsObject().Fields[md.GetName()]
	if !ok {
		return nil, fmt.Errorf("method %s not implemented", md.GetName())
	}
	result, err := h.state.CallNoArgs(fn, inVal)
	if err != nil {
		return nil, err
	}

	outMsg := dynamic.NewMessage(md.GetOutputType())
	if err := objectToDynamicMessage(result, outMsg); err != nil {
		return nil, err
	}
	return outMsg, nil
}

// grpcRegisterService wires an AIScript object (method name -> function) as
// the implementation of a service found in a previously loaded proto.
func grpcRegisterService(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 3 || args[1].Type != vm.VString || args[2].Type != vm.VObject {
		return vm.Nil(), state.RuntimeError("net.grpc.register: expected (server, serviceName, impl)")
	}
	h, err := grpcServerHandleFor(state, args[0])
	if err != nil {
		return vm.Nil(), err
	}
	serviceName := args[1].AsString().Chars
	sd := findServiceDescriptor(serviceName)
	if sd == nil {
		return vm.Nil(), state.RuntimeError("net.grpc.register: service %q not found in loaded protos", serviceName)
	}

	handler := &aiscriptGrpcHandler{state: state, impl: args[2]}
	svcDesc := &grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*any)(nil),
		Metadata:    sd.GetFile().GetName(),
	}
	for _, method := range sd.GetMethods() {
		if method.IsClientStreaming() || method.IsServerStreaming() {
			continue
		}
		md := method
		svcDesc.Methods = append(svcDesc.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
				return srv.(*aiscriptGrpcHandler).handleUnary(ctx, md, dec)
			},
		})
	}
	h.server.RegisterService(svcDesc, handler)
	return vm.Nil(), nil
}

func grpcServe(state *vm.VM, args []vm.Value) (vm.Value, error) {
	h, lis, err := grpcListenFor(state, args)
	if err != nil {
		return vm.Nil(), err
	}
	if err := h.server.Serve(lis); err != nil {
		return vm.Nil(), state.RuntimeError("net.grpc.serve: %s", err)
	}
	return vm.Nil(), nil
}

func grpcServeAsync(state *vm.VM, args []vm.Value) (vm.Value, error) {
	h, lis, err := grpcListenFor(state, args)
	if err != nil {
		return vm.Nil(), err
	}
	go func() {
		_ = h.server.Serve(lis)
	}()
	return vm.Nil(), nil
}

func grpcListenFor(state *vm.VM, args []vm.Value) (*grpcServerHandle, net.Listener, error) {
	if len(args) != 2 || args[1].Type != vm.VString {
		return nil, nil, state.RuntimeError("net.grpc.serve: expected (server, addr)")
	}
	h, err := grpcServerHandleFor(state, args[0])
	if err != nil {
		return nil, nil, err
	}
	lis, err := net.Listen("tcp", args[1].AsString().Chars)
	if err != nil {
		return nil, nil, state.RuntimeError("net.grpc.serve: %s", err)
	}
	return h, lis, nil
}

func grpcStop(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Nil(), state.RuntimeError("net.grpc.stop: expected a server handle")
	}
	h, err := grpcServerHandleFor(state, args[0])
	if err != nil {
		return vm.Nil(), err
	}
	h.server.GracefulStop()
	return vm.Nil(), nil
}

// objectToDynamicMessage populates msg's fields from an AIScript object,
// ignoring fields the message descriptor doesn't declare.
func objectToDynamicMessage(v vm.Value, msg *dynamic.Message) error {
	if v.Type != vm.VObject {
		return fmt.Errorf("expected an object, got %s", v.Inspect())
	}
	for name, val := range v.AsObject().Fields {
		fd := msg.GetMessageDescriptor().FindFieldByName(name)
		if fd == nil {
			continue
		}
		if err := msg.TrySetField(fd, valueToAny(val)); err != nil {
			return fmt.Errorf("field %q: %s", name, err)
		}
	}
	return nil
}

// dynamicMessageToValue renders every declared field of msg into a fresh
// AIScript object.
func dynamicMessageToValue(state *vm.VM, msg *dynamic.Message) vm.Value {
	obj := vm.NewObjObject()
	state.Allocate(obj)
	for _, fd := range msg.GetMessageDescriptor().GetFields() {
		obj.Set(fd.GetName(), anyToValue(state, msg.GetField(fd)))
	}
	return vm.ObjVal(vm.VObject, obj)
}
