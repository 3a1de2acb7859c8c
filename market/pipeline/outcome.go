package pipeline

import (
	eth_common "github.com/ethereum/go-ethereum/common"
	eth_types "github.com/ethereum/go-ethereum/core/types"
)

// Kind is the discriminator of the terminal pipeline outcome.
type Kind string

const (
	// the receipt confirmed the call
	SUCCESS Kind = "success"
	// the pre-flight authorization gate failed, nothing was sent to the ledger
	ROLE_DENIED Kind = "role_denied"
	// the dry run reverted, no signature was requested
	PRECONDITION_FAILED Kind = "precondition_failed"
	// the wallet owner declined to sign, a normal user action
	USER_REJECTED Kind = "user_rejected"
	// network or node failure before a transaction hash exists
	SUBMISSION_ERROR Kind = "submission_error"
	// no receipt within the wait bound, the transaction hash exists
	CONFIRMATION_TIMEOUT Kind = "confirmation_timeout"
	// the receipt arrived with the failed status, gas was spent
	ONCHAIN_FAILURE Kind = "onchain_failure"
)

// String format of the Kind
func (kind Kind) String() string {
	return string(kind)
}

// Outcome is the terminal result of one pipeline run.
//
// TxHash is set from the USER_REJECTED-free submission on, so
// CONFIRMATION_TIMEOUT and ONCHAIN_FAILURE always carry the hash
// of the transaction that spent the gas.
type Outcome struct {
	Kind    Kind
	TxHash  eth_common.Hash
	Receipt *eth_types.Receipt
	Err     error
}

// Ok is whether the on-chain call was confirmed
func (outcome Outcome) Ok() bool {
	return outcome.Kind == SUCCESS
}

// HasTxHash is whether a transaction was broadcasted,
// successfully or not
func (outcome Outcome) HasTxHash() bool {
	return outcome.TxHash != (eth_common.Hash{})
}
