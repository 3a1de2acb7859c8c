// Package abi wraps the geth abi encoder for the
// marketplace smartcontract interfaces.
//
// The marketplace calls are encoded here once and reused by the
// role checker and by the workflows.
package abi

import (
	"fmt"
	"strings"

	geth_abi "github.com/ethereum/go-ethereum/accounts/abi"
)

type Abi struct {
	geth_abi geth_abi.ABI
}

// New Abi from the json definition string
func New(definition string) (*Abi, error) {
	parsed, err := geth_abi.JSON(strings.NewReader(definition))
	if err != nil {
		return nil, fmt.Errorf("abi.JSON: %w", err)
	}

	return &Abi{geth_abi: parsed}, nil
}

// Pack the method with its arguments into the calldata
func (a *Abi) Pack(method string, args ...interface{}) ([]byte, error) {
	data, err := a.geth_abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("geth_abi.Pack of '%s': %w", method, err)
	}

	return data, nil
}

// Unpack the method output into the list of values
func (a *Abi) Unpack(method string, data []byte) ([]interface{}, error) {
	values, err := a.geth_abi.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("geth_abi.Unpack of '%s': %w", method, err)
	}

	return values, nil
}
