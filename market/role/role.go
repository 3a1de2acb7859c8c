// Package role answers "does the address hold the role on the contract"
// with a read-only call against the current chain state.
//
// The answers are never cached. A role can be revoked between the page
// load and the submission, so the workflows re-check the gate at call time.
package role

import (
	"context"
	"fmt"

	"github.com/blocklords/market/blockchain/evm/abi"

	eth_common "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// The role identifiers of the deployed smartcontracts.
// The identifier is the keccak hash of the role name.
var (
	SELLER_ROLE           = crypto.Keccak256Hash([]byte("SELLER_ROLE"))
	ROYALTY_ADMIN_ROLE    = crypto.Keccak256Hash([]byte("ROYALTY_ADMIN_ROLE"))
	COLLECTION_ADMIN_ROLE = crypto.Keccak256Hash([]byte("COLLECTION_ADMIN_ROLE"))
)

// LedgerReader executes a read-only contract call.
// The evm client satisfies it.
type LedgerReader interface {
	ReadContract(ctx context.Context, to eth_common.Address, data []byte) ([]byte, error)
}

// Checker is the authorization gate in front of every workflow.
// Safe for the concurrent use, it keeps no mutable state.
type Checker struct {
	reader     LedgerReader
	access_abi *abi.Abi
}

// NewChecker over the ledger reader
func NewChecker(reader LedgerReader) (*Checker, error) {
	access_abi, err := abi.New(abi.Marketplace)
	if err != nil {
		return nil, fmt.Errorf("abi.New: %w", err)
	}

	return &Checker{
		reader:     reader,
		access_abi: access_abi,
	}, nil
}

// Read executes a raw read-only call through the ledger reader.
// The workflows use it for the ownership facts next to the role facts.
func (checker *Checker) Read(ctx context.Context, to eth_common.Address, data []byte) ([]byte, error) {
	return checker.reader.ReadContract(ctx, to, data)
}

// HasRole returns whether the address holds the role on the contract.
//
// Fails closed: on an RPC error the answer is false along with the error,
// so the caller never mistakes an outage for a granted role.
func (checker *Checker) HasRole(ctx context.Context, contract_address eth_common.Address, role_id eth_common.Hash, address eth_common.Address) (bool, error) {
	data, err := checker.access_abi.Pack("hasRole", role_id, address)
	if err != nil {
		return false, fmt.Errorf("access_abi.Pack: %w", err)
	}

	result, err := checker.reader.ReadContract(ctx, contract_address, data)
	if err != nil {
		return false, fmt.Errorf("reader.ReadContract of %s: %w", contract_address.Hex(), err)
	}

	values, err := checker.access_abi.Unpack("hasRole", result)
	if err != nil {
		return false, fmt.Errorf("access_abi.Unpack: %w", err)
	}
	if len(values) != 1 {
		return false, fmt.Errorf("'hasRole' of %s returned %d values, expected one", contract_address.Hex(), len(values))
	}

	granted, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("'hasRole' of %s returned %T, expected bool", contract_address.Hex(), values[0])
	}

	return granted, nil
}

// Owner returns the owner address of the contract
func (checker *Checker) Owner(ctx context.Context, contract_address eth_common.Address) (eth_common.Address, error) {
	data, err := checker.access_abi.Pack("owner")
	if err != nil {
		return eth_common.Address{}, fmt.Errorf("access_abi.Pack: %w", err)
	}

	result, err := checker.reader.ReadContract(ctx, contract_address, data)
	if err != nil {
		return eth_common.Address{}, fmt.Errorf("reader.ReadContract of %s: %w", contract_address.Hex(), err)
	}

	values, err := checker.access_abi.Unpack("owner", result)
	if err != nil {
		return eth_common.Address{}, fmt.Errorf("access_abi.Unpack: %w", err)
	}
	if len(values) != 1 {
		return eth_common.Address{}, fmt.Errorf("'owner' of %s returned %d values, expected one", contract_address.Hex(), len(values))
	}

	owner, ok := values[0].(eth_common.Address)
	if !ok {
		return eth_common.Address{}, fmt.Errorf("'owner' of %s returned %T, expected address", contract_address.Hex(), values[0])
	}

	return owner, nil
}
