package modules

import (
	"context"

	"github.com/aiscriptdev/aiscript/internal/vm"
	"github.com/redis/go-redis/v9"
)

// std.db.redis wraps redis/go-redis/v9 behind a handle-based get/set/del
// surface.
func init() {
	register("std.db.redis", func(v *vm.VM) (*vm.ObjModule, error) {
		return newExportModule(v, "std.db.redis", map[string]vm.NativeFn{
			"connect": redisConnect,
			"get":     redisGet,
			"set":     redisSet,
			"del":     redisDel,
		}), nil
	})
}

var redisHandles = map[int]*redis.Client{}
var redisNextHandle = 1

// RegisterRedisConn installs an already-connected *redis.Client as a
// std.db.redis handle and returns the handle id, for hosts that hand the
// embedding API a live client instead of an address for std.db.redis.connect
// to dial itself.
func RegisterRedisConn(client *redis.Client) float64 {
	id := redisNextHandle
	redisNextHandle++
	redisHandles[id] = client
	return float64(id)
}

func redisConnect(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("db.redis.connect: expected an address")
	}
	client := redis.NewClient(&redis.Options{Addr: args[0].AsString().Chars})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return vm.Nil(), state.RuntimeError("db.redis.connect: %s", err)
	}
	id := redisNextHandle
	redisNextHandle++
	redisHandles[id] = client
	return vm.NumberVal(float64(id)), nil
}

func redisClient(state *vm.VM, v vm.Value) (*redis.Client, error) {
	if !v.IsNumber() {
		return nil, state.RuntimeError("expected a db.redis handle")
	}
	c, ok := redisHandles[int(v.AsNumber())]
	if !ok {
		return nil, state.RuntimeError("invalid or closed db.redis handle")
	}
	return c, nil
}

func redisGet(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 2 || args[1].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("db.redis.get: expected (handle, key)")
	}
	client, err := redisClient(state, args[0])
	if err != nil {
		return vm.Nil(), err
	}
	val, err := client.Get(context.Background(), args[1].AsString().Chars).Result()
	if err == redis.Nil {
		return vm.Nil(), nil
	}
	if err != nil {
		return vm.Nil(), state.RuntimeError("db.redis.get: %s", err)
	}
	return vm.ObjVal(vm.VString, state.Intern(val)), nil
}

func redisSet(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 3 || args[1].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("db.redis.set: expected (handle, key, value)")
	}
	client, err := redisClient(state, args[0])
	if err != nil {
		return vm.Nil(), err
	}
	if err := client.Set(context.Background(), args[1].AsString().Chars, redisScalar(args[2]), 0).Err(); err != nil {
		return vm.Nil(), state.RuntimeError("db.redis.set: %s", err)
	}
	return vm.Nil(), nil
}

// redisScalar reduces a Value to the scalar go-redis's SET accepts
// directly (string/float64/bool); anything else is rendered via Inspect.
func redisScalar(v vm.Value) any {
	switch v.Type {
	case vm.VString:
		return v.AsString().Chars
	case vm.VNumber:
		return v.AsNumber()
	case vm.VBool:
		return v.AsBool()
	default:
		return v.Inspect()
	}
}

func redisDel(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 2 || args[1].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("db.redis.del: expected (handle, key)")
	}
	client, err := redisClient(state, args[0])
	if err != nil {
		return vm.Nil(), err
	}
	if err := client.Del(context.Background(), args[1].AsString().Chars).Err(); err != nil {
		return vm.Nil(), state.RuntimeError("db.redis.del: %s", err)
	}
	return vm.Nil(), nil
}
