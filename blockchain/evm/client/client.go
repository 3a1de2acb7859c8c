// The EVM blockchain client.
// Any reply from the remote node is validated
// before it is returned to the caller.
package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"

	"github.com/blocklords/market/blockchain/network"

	eth_common "github.com/ethereum/go-ethereum/common"
	eth_types "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrReceiptTimeout is returned by WaitForReceipt when the
// receipt wasn't found within the wait bound. The transaction
// hash exists on the network, only the local wait gave up.
var ErrReceiptTimeout = errors.New("no transaction receipt within the wait bound")

// PreparedCall is the result of a successful simulation.
// It keeps the exact arguments that the signer will sign,
// so the submitted transaction can not diverge from the dry run.
type PreparedCall struct {
	From     eth_common.Address
	To       eth_common.Address
	Data     []byte
	Value    *big.Int
	GasLimit uint64
	GasPrice *big.Int
	Nonce    uint64
	ChainId  *big.Int
}

type Client struct {
	client  *ethclient.Client
	Network *network.Network
}

// Create a network client connected to the blockchain based on the network parameters.
// The network parameters include the node url.
func New(network *network.Network) (*Client, error) {
	provider_url, err := network.GetFirstProviderUrl()
	if err != nil {
		return nil, fmt.Errorf("network.GetFirstProviderUrl: %w", err)
	}
	client, err := ethclient.Dial(provider_url)
	if err != nil {
		return nil, fmt.Errorf(`failed to connect to blockchain. please try again later: %w`, err)
	}

	return &Client{
		client:  client,
		Network: network,
	}, nil
}

// Creates a network clients connected to the blockchain network for each network parameter
func NewClients(networks []*network.Network) (map[string]*Client, error) {
	network_clients := make(map[string]*Client, len(networks))

	for i, network := range networks {
		new_client, err := New(network)
		if err != nil {
			return nil, fmt.Errorf("network[%d] network id %s New: %w", i, network.Id, err)
		}

		network_clients[network.Id] = new_client
	}

	return network_clients, nil
}

//////////////////////////////////////////////////////////
//
// Blockchain related functions
//
/////////////////////////////////////////////////////////

// ReadContract executes the read-only call against the current chain state.
// No signing, no state change.
func (c *Client) ReadContract(ctx context.Context, to eth_common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{
		To:   &to,
		Data: data,
	}

	result, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("client.CallContract to %s: %w", to.Hex(), err)
	}

	return result, nil
}

// Simulate performs the dry run of the call with the exact arguments
// that will be submitted, as the given caller. A revert is returned
// as an error without spending any gas.
//
// On success the returned PreparedCall carries the gas parameters,
// the nonce and the chain id for the signer.
func (c *Client) Simulate(ctx context.Context, from eth_common.Address, to eth_common.Address, data []byte, value *big.Int) (*PreparedCall, error) {
	msg := ethereum.CallMsg{
		From:  from,
		To:    &to,
		Data:  data,
		Value: value,
	}

	_, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("client.CallContract dry run to %s: %w", to.Hex(), err)
	}

	gas_limit, err := c.client.EstimateGas(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("client.EstimateGas: %w", err)
	}

	gas_price, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("client.SuggestGasPrice: %w", err)
	}

	nonce, err := c.client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("client.PendingNonceAt of %s: %w", from.Hex(), err)
	}

	chain_id, err := c.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("client.ChainID: %w", err)
	}

	return &PreparedCall{
		From:     from,
		To:       to,
		Data:     data,
		Value:    value,
		GasLimit: gas_limit,
		GasPrice: gas_price,
		Nonce:    nonce,
		ChainId:  chain_id,
	}, nil
}

// Submit broadcasts the signed transaction to the network.
func (c *Client) Submit(ctx context.Context, signed_transaction *eth_types.Transaction) error {
	err := c.client.SendTransaction(ctx, signed_transaction)
	if err != nil {
		return fmt.Errorf("client.SendTransaction of %s: %w", signed_transaction.Hash().Hex(), err)
	}

	return nil
}

// WaitForReceipt polls the node until the receipt of the transaction
// appears, the wait bound elapses or the context is cancelled.
//
// There is no way to abort a submitted transaction, therefore a timeout
// returns ErrReceiptTimeout rather than pretending the transaction failed.
func (c *Client) WaitForReceipt(ctx context.Context, transaction_hash eth_common.Hash, wait_bound time.Duration, poll_interval time.Duration) (*eth_types.Receipt, error) {
	deadline := time.Now().Add(wait_bound)

	for {
		receipt, err := c.client.TransactionReceipt(ctx, transaction_hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("client.TransactionReceipt of %s: %w", transaction_hash.Hex(), err)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%s: %w", transaction_hash.Hex(), ErrReceiptTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(poll_interval):
		}
	}
}
