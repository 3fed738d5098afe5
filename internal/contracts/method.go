package contracts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Method is a single contract entry point built from a Solidity signature such as
// "deposit(uint256,uint256,address)". Deployments name their methods differently,
// so the signature is configuration rather than a compiled binding.
type Method struct {
	Name      string
	Signature string
	ABI       abi.ABI
}

// Inputs returns the method's argument list.
func (m Method) Inputs() abi.Arguments {
	return m.ABI.Methods[m.Name].Inputs
}

type abiArgument struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type abiEntry struct {
	Type            string        `json:"type"`
	Name            string        `json:"name"`
	StateMutability string        `json:"stateMutability"`
	Inputs          []abiArgument `json:"inputs"`
	Outputs         []abiArgument `json:"outputs"`
}

// ParseMethod builds a Method from "name(type,...)". Tuple arguments are not supported.
func ParseMethod(signature string) (Method, error) {
	sig := strings.ReplaceAll(strings.TrimSpace(signature), " ", "")
	open := strings.IndexByte(sig, '(')
	if open <= 0 || !strings.HasSuffix(sig, ")") {
		return Method{}, fmt.Errorf("method signature %q: expected name(type,...)", signature)
	}
	name := sig[:open]
	params := sig[open+1 : len(sig)-1]
	if strings.ContainsAny(params, "()") {
		return Method{}, fmt.Errorf("method signature %q: tuple arguments are not supported", signature)
	}

	entry := abiEntry{
		Type: "function",
		Name: name,
		// Mutability does not affect calldata; payable lets any step carry value.
		StateMutability: "payable",
		Inputs:          []abiArgument{},
		Outputs:         []abiArgument{},
	}
	if params != "" {
		for i, typ := range strings.Split(params, ",") {
			if typ == "" {
				return Method{}, fmt.Errorf("method signature %q: empty type at position %d", signature, i)
			}
			if _, err := abi.NewType(typ, "", nil); err != nil {
				return Method{}, fmt.Errorf("method signature %q: %w", signature, err)
			}
			entry.Inputs = append(entry.Inputs, abiArgument{Name: fmt.Sprintf("arg%d", i), Type: typ})
		}
	}

	raw, err := json.Marshal([]abiEntry{entry})
	if err != nil {
		return Method{}, fmt.Errorf("encode abi: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(string(raw)))
	if err != nil {
		return Method{}, fmt.Errorf("method signature %q: %w", signature, err)
	}
	return Method{Name: name, Signature: sig, ABI: parsed}, nil
}
