package modules

import (
	"github.com/aiscriptdev/aiscript/internal/vm"
	"github.com/golang-jwt/jwt/v5"
)

// std.auth.jwt signs and verifies HS256 JWTs via golang-jwt/jwt/v5.
func init() {
	register("std.auth.jwt", func(v *vm.VM) (*vm.ObjModule, error) {
		return newExportModule(v, "std.auth.jwt", map[string]vm.NativeFn{
			"sign":   jwtSign,
			"verify": jwtVerify,
		}), nil
	})
}

func jwtSign(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 2 || args[0].Type != vm.VObject || args[1].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("jwt.sign: expected (claims, secret)")
	}
	claims := jwt.MapClaims{}
	for k, v := range args[0].AsObject().Fields {
		claims[k] = valueToAny(v)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(args[1].AsString().Chars))
	if err != nil {
		return vm.Nil(), state.RuntimeError("jwt.sign: %s", err)
	}
	return vm.ObjVal(vm.VString, state.Intern(signed)), nil
}

func jwtVerify(state *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 2 || args[0].Type != vm.VString || args[1].Type != vm.VString {
		return vm.Nil(), state.RuntimeError("jwt.verify: expected (token, secret)")
	}
	secret := args[1].AsString().Chars
	parsed, err := jwt.Parse(args[0].AsString().Chars, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return state.NewValidationError("jwt", "", "token is invalid or expired", args[0]), nil
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return state.NewValidationError("jwt", "", "unexpected claims type", args[0]), nil
	}
	return anyToValue(state, map[string]any(claims)), nil
}
