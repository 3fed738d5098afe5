package contracts

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

func TestLoadAddressBook_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addresses.json")
	content := "{\n" +
		"  \"Booster\": \"0x88f7c0ff2c9bb6a61e79e0a7e88ea30ec8ff3a4b\",\n" +
		"  \"LATTE\": \"0xa269A9942086f5F87930499dC8317ccC9dF2D03d\"\n" +
		"}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	book, err := LoadAddressBook(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	addr, err := book.Lookup("LATTE")
	if err != nil {
		t.Fatal(err)
	}
	if addr != common.HexToAddress("0xa269A9942086f5F87930499dC8317ccC9dF2D03d") {
		t.Errorf("unexpected address %s", addr.Hex())
	}
	if names := book.Names(); len(names) != 2 || names[0] != "Booster" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestAddressBook_MissingName(t *testing.T) {
	book, err := NewAddressBook(map[string]string{"Router": "0x0000000000000000000000000000000000000001"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = book.Lookup("MasterChef")
	if !errors.Is(err, ErrUnknownContract) {
		t.Fatalf("expected ErrUnknownContract, got %v", err)
	}
}

func TestAddressBook_InvalidAddress(t *testing.T) {
	if _, err := NewAddressBook(map[string]string{"Router": "not-an-address"}); err == nil {
		t.Fatal("expected error for invalid address")
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("deposit(uint256, uint256, address)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Name != "deposit" || m.Signature != "deposit(uint256,uint256,address)" {
		t.Errorf("unexpected method %q / %q", m.Name, m.Signature)
	}
	inputs := m.Inputs()
	if len(inputs) != 3 {
		t.Fatalf("expected 3 inputs, got %d", len(inputs))
	}
	if inputs[2].Type.T != abi.AddressTy {
		t.Errorf("third input should be address, got %s", inputs[2].Type)
	}

	data, err := m.ABI.Pack(m.Name, big.NewInt(26), big.NewInt(1000), common.Address{})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(data) != 4+3*32 {
		t.Errorf("unexpected calldata length %d", len(data))
	}
}

func TestParseMethod_SliceAndEmpty(t *testing.T) {
	m, err := ParseMethod("harvest(uint256[])")
	if err != nil {
		t.Fatal(err)
	}
	if in := m.Inputs(); len(in) != 1 || in[0].Type.T != abi.SliceTy {
		t.Errorf("expected one slice input, got %v", in)
	}
	if m, err := ParseMethod("harvestAll()"); err != nil || len(m.Inputs()) != 0 {
		t.Errorf("expected no inputs, got %v (%v)", m.Inputs(), err)
	}
}

func TestParseMethod_Invalid(t *testing.T) {
	for _, sig := range []string{"", "deposit", "(uint256)", "deposit(foo)", "deposit(uint256,)", "swap((uint256,address))"} {
		if _, err := ParseMethod(sig); err == nil {
			t.Errorf("expected error for %q", sig)
		}
	}
}

func TestBuiltinABIs(t *testing.T) {
	if _, ok := ERC20ABI.Methods["balanceOf"]; !ok {
		t.Error("erc20 abi missing balanceOf")
	}
	if _, ok := PairABI.Methods["getReserves"]; !ok {
		t.Error("pair abi missing getReserves")
	}
	for _, name := range []string{"token0", "token1"} {
		if _, ok := PairABI.Methods[name]; !ok {
			t.Errorf("pair abi missing %s", name)
		}
	}
}
