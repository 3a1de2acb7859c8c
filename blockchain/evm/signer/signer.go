// Package signer defines the wallet that signs the prepared calls.
//
// The signer is an opaque collaborator for the transaction pipeline.
// The pipeline doesn't know whether the key is held by this service
// or the signing is relayed to an external wallet.
package signer

import (
	"context"
	"errors"

	"github.com/blocklords/market/blockchain/evm/client"

	eth_common "github.com/ethereum/go-ethereum/common"
)

// ErrUserRejected is returned when the wallet owner declined to sign.
// It is a normal user action, not an infrastructure failure,
// and it must not be retried automatically.
var ErrUserRejected = errors.New("the user rejected the signing request")

// Type of the wallet behind the signer
type Type string

const (
	// MANAGER wallet key is held by this service
	MANAGER Type = "manager"
	// EXTERNAL wallet is controlled by the operator, signing is relayed
	EXTERNAL Type = "external"
)

// Signer signs the simulated call and broadcasts it.
//
// SignAndSend returns the transaction hash of the broadcasted
// transaction or ErrUserRejected when the owner declined.
type Signer interface {
	Address() eth_common.Address
	Type() Type
	SignAndSend(ctx context.Context, call *client.PreparedCall) (eth_common.Hash, error)
}
