package contracts

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// ErrUnknownContract is returned when a logical contract name is not in the book.
var ErrUnknownContract = errors.New("unknown contract")

// AddressBook maps logical contract names ("Booster", "MasterChef", ...) to
// on-chain addresses. It is read-only after construction.
type AddressBook struct {
	entries map[string]common.Address
}

// LoadAddressBook reads a YAML or JSON name → address file.
func LoadAddressBook(path string) (*AddressBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read address book: %w", err)
	}
	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse address book: %w", err)
	}
	return NewAddressBook(raw)
}

// NewAddressBook validates and copies raw hex addresses.
func NewAddressBook(raw map[string]string) (*AddressBook, error) {
	entries := make(map[string]common.Address, len(raw))
	for name, hex := range raw {
		if !common.IsHexAddress(hex) {
			return nil, fmt.Errorf("address book entry %q: invalid address %q", name, hex)
		}
		entries[name] = common.HexToAddress(hex)
	}
	return &AddressBook{entries: entries}, nil
}

// Lookup returns the address registered under name.
func (b *AddressBook) Lookup(name string) (common.Address, error) {
	addr, ok := b.entries[name]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %q", ErrUnknownContract, name)
	}
	return addr, nil
}

// Names returns the registered names in sorted order.
func (b *AddressBook) Names() []string {
	names := make([]string, 0, len(b.entries))
	for n := range b.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
