package reinvest

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"

	"AutoCompound/internal/contracts"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// argEnv holds the values an argument template may refer to.
type argEnv struct {
	account  common.Address
	referral common.Address
	token    common.Address
	pair     common.Address
	amount   *big.Int
	quote    *big.Int
	deadline *big.Int
	pool     string
	pools    []string
}

// buildArgs resolves an argument template against the method's input types.
func buildArgs(m contracts.Method, template []string, env argEnv) ([]interface{}, error) {
	inputs := m.Inputs()
	if len(template) != len(inputs) {
		return nil, fmt.Errorf("%s takes %d arguments, template has %d", m.Signature, len(inputs), len(template))
	}
	args := make([]interface{}, len(template))
	for i, name := range template {
		v, err := env.resolve(name, inputs[i].Type)
		if err != nil {
			return nil, fmt.Errorf("%s argument %d (%s): %w", m.Signature, i, name, err)
		}
		args[i] = v
	}
	return args, nil
}

func (e argEnv) resolve(name string, typ abi.Type) (interface{}, error) {
	switch name {
	case "account":
		return addressArg(e.account, typ)
	case "referral":
		return addressArg(e.referral, typ)
	case "token":
		return addressArg(e.token, typ)
	case "pair":
		return addressArg(e.pair, typ)
	case "amount":
		return uintArg(e.amount, typ)
	case "quote":
		return uintArg(e.quote, typ)
	case "deadline":
		return uintArg(e.deadline, typ)
	case "zero":
		return zeroArg(typ), nil
	case "pool":
		if e.pool == "" {
			return nil, errors.New("no pool configured")
		}
		return scalarArg(e.pool, typ)
	case "pools":
		if typ.T != abi.SliceTy && typ.T != abi.ArrayTy {
			return nil, fmt.Errorf("expected a list type, method takes %s", typ)
		}
		if len(e.pools) == 0 {
			return nil, errors.New("no pools configured")
		}
		if typ.T == abi.ArrayTy && typ.Size != len(e.pools) {
			return nil, fmt.Errorf("%s needs %d pools, got %d", typ, typ.Size, len(e.pools))
		}
		out := reflect.MakeSlice(reflect.SliceOf(typ.Elem.GetType()), 0, len(e.pools))
		for _, p := range e.pools {
			v, err := scalarArg(p, *typ.Elem)
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, reflect.ValueOf(v))
		}
		if typ.T == abi.ArrayTy {
			arr := reflect.New(typ.GetType()).Elem()
			reflect.Copy(arr, out)
			return arr.Interface(), nil
		}
		return out.Interface(), nil
	}
	return nil, fmt.Errorf("unknown argument %q", name)
}

func addressArg(a common.Address, typ abi.Type) (interface{}, error) {
	if typ.T != abi.AddressTy {
		return nil, fmt.Errorf("address given for %s", typ)
	}
	return a, nil
}

var bigIntType = reflect.TypeOf(new(big.Int))

// uintArg converts v to the Go type go-ethereum packs for typ: uint8, uint16,
// uint32 and uint64 are native, every other width is *big.Int.
func uintArg(v *big.Int, typ abi.Type) (interface{}, error) {
	if v == nil {
		return nil, errors.New("value unavailable")
	}
	if typ.T != abi.UintTy {
		return nil, fmt.Errorf("integer given for %s", typ)
	}
	if v.Sign() < 0 || v.BitLen() > typ.Size {
		return nil, fmt.Errorf("%s overflows %s", v, typ)
	}
	goType := typ.GetType()
	if goType == bigIntType {
		return new(big.Int).Set(v), nil
	}
	return reflect.ValueOf(v.Uint64()).Convert(goType).Interface(), nil
}

func zeroArg(typ abi.Type) interface{} {
	goType := typ.GetType()
	if goType == bigIntType {
		return new(big.Int)
	}
	return reflect.Zero(goType).Interface()
}

// scalarArg parses a configured pool identifier as an address or unsigned integer.
func scalarArg(s string, typ abi.Type) (interface{}, error) {
	switch typ.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("pool %q is not an address", s)
		}
		return common.HexToAddress(s), nil
	case abi.UintTy:
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("pool %q is not an integer", s)
		}
		return uintArg(v, typ)
	}
	return nil, fmt.Errorf("pool identifiers cannot be passed as %s", typ)
}
