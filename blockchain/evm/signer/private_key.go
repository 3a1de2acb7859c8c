package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/blocklords/market/blockchain/evm/client"

	eth_common "github.com/ethereum/go-ethereum/common"
	eth_types "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Sender broadcasts the signed transaction.
// The evm client satisfies it.
type Sender interface {
	Submit(ctx context.Context, signed_transaction *eth_types.Transaction) error
}

// PrivateKeySigner holds the manager account key
// and signs the prepared calls with it.
type PrivateKeySigner struct {
	key     *ecdsa.PrivateKey
	address eth_common.Address
	sender  Sender
}

// New PrivateKeySigner from the secp256k1 private key
func New(key *ecdsa.PrivateKey, sender Sender) *PrivateKeySigner {
	return &PrivateKeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		sender:  sender,
	}
}

// NewFromHex creates the signer from the hex encoded private key
func NewFromHex(hex_key string, sender Sender) (*PrivateKeySigner, error) {
	key, err := crypto.HexToECDSA(hex_key)
	if err != nil {
		return nil, fmt.Errorf("crypto.HexToECDSA: %w", err)
	}

	return New(key, sender), nil
}

func (signer *PrivateKeySigner) Address() eth_common.Address {
	return signer.address
}

func (signer *PrivateKeySigner) Type() Type {
	return MANAGER
}

// SignAndSend signs the prepared call with the manager key,
// then broadcasts it. Returns the transaction hash.
func (signer *PrivateKeySigner) SignAndSend(ctx context.Context, call *client.PreparedCall) (eth_common.Hash, error) {
	if call.From != signer.address {
		return eth_common.Hash{}, fmt.Errorf("the call was simulated as %s, but the signer is %s", call.From.Hex(), signer.address.Hex())
	}

	transaction := eth_types.NewTransaction(call.Nonce, call.To, call.Value, call.GasLimit, call.GasPrice, call.Data)

	signed_transaction, err := eth_types.SignTx(transaction, eth_types.LatestSignerForChainID(call.ChainId), signer.key)
	if err != nil {
		return eth_common.Hash{}, fmt.Errorf("types.SignTx: %w", err)
	}

	if err := signer.sender.Submit(ctx, signed_transaction); err != nil {
		return eth_common.Hash{}, fmt.Errorf("sender.Submit: %w", err)
	}

	return signed_transaction.Hash(), nil
}
