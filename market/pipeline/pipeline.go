// Package pipeline is the generic primitive that every workflow
// is built upon. Four ordered phases:
//
//	simulate -> sign & submit -> await confirmation -> classify
//
// A phase never begins before the previous one resolved affirmatively.
// A transaction hash is never produced without a successful simulation,
// and the record store is never mutated without a successful receipt.
package pipeline

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/blocklords/market/app/configuration"
	"github.com/blocklords/market/blockchain/evm/client"
	"github.com/blocklords/market/blockchain/evm/signer"
	"github.com/blocklords/market/common/data_type/key_value"

	eth_common "github.com/ethereum/go-ethereum/common"
	eth_types "github.com/ethereum/go-ethereum/core/types"
)

// LedgerSimulator performs the dry run of the call.
// The evm client satisfies it.
type LedgerSimulator interface {
	Simulate(ctx context.Context, from eth_common.Address, to eth_common.Address, data []byte, value *big.Int) (*client.PreparedCall, error)
}

// LedgerSubmitter awaits the receipt of the broadcasted transaction.
// The evm client satisfies it.
type LedgerSubmitter interface {
	WaitForReceipt(ctx context.Context, transaction_hash eth_common.Hash, wait_bound time.Duration, poll_interval time.Duration) (*eth_types.Receipt, error)
}

// Call is one smartcontract invocation with the exact arguments
// that will be simulated and then submitted.
type Call struct {
	To           eth_common.Address
	Data         []byte
	Value        *big.Int
	FunctionName string
}

// Config bounds the confirmation wait.
// The bound is explicit, there is no hidden default inside the client.
type Config struct {
	ConfirmationWait time.Duration
	PollInterval     time.Duration
}

// The configuration parameters
// The values are the default values if it wasn't provided by the user
var PipelineConfigurations = configuration.DefaultConfig{
	Title: "Transaction Pipeline",
	Parameters: key_value.New(map[string]interface{}{
		"MARKET_CONFIRMATION_WAIT_SECONDS": uint64(120),
		"MARKET_CONFIRMATION_POLL_SECONDS": uint64(2),
	}),
}

// NewConfig from the app configuration
func NewConfig(app_config *configuration.Config) Config {
	return Config{
		ConfirmationWait: time.Duration(app_config.GetUint64("MARKET_CONFIRMATION_WAIT_SECONDS")) * time.Second,
		PollInterval:     time.Duration(app_config.GetUint64("MARKET_CONFIRMATION_POLL_SECONDS")) * time.Second,
	}
}

// Pipeline executes the calls over the injected collaborators.
// The collaborators are stateless and shared, the pipeline itself
// is safe for the concurrent use.
type Pipeline struct {
	simulator LedgerSimulator
	signer    signer.Signer
	submitter LedgerSubmitter
	reporter  ProgressReporter
	config    Config
}

// New Pipeline over the ledger collaborators
func New(simulator LedgerSimulator, tx_signer signer.Signer, submitter LedgerSubmitter, reporter ProgressReporter, config Config) *Pipeline {
	return &Pipeline{
		simulator: simulator,
		signer:    tx_signer,
		submitter: submitter,
		reporter:  reporter,
		config:    config,
	}
}

// Run the four phases for the call. The returned outcome is terminal,
// the pipeline never retries on its own.
//
// Once the transaction was broadcasted there is no cancellation,
// the confirmation wait runs to the receipt or to the wait bound.
func (p *Pipeline) Run(ctx context.Context, call Call) Outcome {
	// Phase 1: dry run with the exact arguments against the current state.
	// A revert here costs no gas and asks for no signature.
	p.reporter.Progress(SIMULATE, key_value.Empty().
		Set("function", call.FunctionName).
		Set("to", call.To.Hex()))

	prepared_call, err := p.simulator.Simulate(ctx, p.signer.Address(), call.To, call.Data, call.Value)
	if err != nil {
		outcome := Outcome{Kind: PRECONDITION_FAILED, Err: err}
		p.reporter.Terminal(outcome)
		return outcome
	}

	// Phase 2: hand the simulated call to the wallet
	p.reporter.Progress(SUBMIT, key_value.Empty().
		Set("function", call.FunctionName).
		Set("signer", p.signer.Address().Hex()))

	transaction_hash, err := p.signer.SignAndSend(ctx, prepared_call)
	if err != nil {
		if errors.Is(err, signer.ErrUserRejected) {
			outcome := Outcome{Kind: USER_REJECTED, Err: err}
			p.reporter.Terminal(outcome)
			return outcome
		}

		outcome := Outcome{Kind: SUBMISSION_ERROR, Err: err}
		p.reporter.Terminal(outcome)
		return outcome
	}

	// Phase 3: await the receipt within the wait bound
	p.reporter.Progress(CONFIRM, key_value.Empty().
		Set("function", call.FunctionName).
		Set("tx_hash", transaction_hash.Hex()))

	receipt, err := p.submitter.WaitForReceipt(ctx, transaction_hash, p.config.ConfirmationWait, p.config.PollInterval)
	if err != nil {
		if errors.Is(err, client.ErrReceiptTimeout) {
			outcome := Outcome{Kind: CONFIRMATION_TIMEOUT, TxHash: transaction_hash, Err: err}
			p.reporter.Terminal(outcome)
			return outcome
		}

		outcome := Outcome{Kind: SUBMISSION_ERROR, TxHash: transaction_hash, Err: err}
		p.reporter.Terminal(outcome)
		return outcome
	}

	// Phase 4: classify the receipt
	if receipt.Status != eth_types.ReceiptStatusSuccessful {
		outcome := Outcome{Kind: ONCHAIN_FAILURE, TxHash: transaction_hash, Receipt: receipt, Err: errors.New("the receipt status is failed")}
		p.reporter.Terminal(outcome)
		return outcome
	}

	outcome := Outcome{Kind: SUCCESS, TxHash: transaction_hash, Receipt: receipt}
	p.reporter.Terminal(outcome)
	return outcome
}
