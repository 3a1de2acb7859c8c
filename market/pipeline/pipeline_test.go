package pipeline

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/blocklords/market/blockchain/evm/client"
	"github.com/blocklords/market/blockchain/evm/signer"
	"github.com/blocklords/market/common/data_type/key_value"

	eth_common "github.com/ethereum/go-ethereum/common"
	eth_types "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/suite"
)

// fake_simulator is the ledger dry run stub
type fake_simulator struct {
	err       error
	simulated uint
}

func (f *fake_simulator) Simulate(_ context.Context, from eth_common.Address, to eth_common.Address, data []byte, value *big.Int) (*client.PreparedCall, error) {
	f.simulated++
	if f.err != nil {
		return nil, f.err
	}

	return &client.PreparedCall{
		From:     from,
		To:       to,
		Data:     data,
		Value:    value,
		GasLimit: 21000,
		GasPrice: big.NewInt(1),
		Nonce:    7,
		ChainId:  big.NewInt(1),
	}, nil
}

// fake_signer signs without a wallet
type fake_signer struct {
	err     error
	signed  uint
	address eth_common.Address
	hash    eth_common.Hash
}

func (f *fake_signer) Address() eth_common.Address { return f.address }
func (f *fake_signer) Type() signer.Type           { return signer.MANAGER }

func (f *fake_signer) SignAndSend(_ context.Context, _ *client.PreparedCall) (eth_common.Hash, error) {
	f.signed++
	if f.err != nil {
		return eth_common.Hash{}, f.err
	}

	return f.hash, nil
}

// fake_submitter returns the canned receipt
type fake_submitter struct {
	err     error
	receipt *eth_types.Receipt
}

func (f *fake_submitter) WaitForReceipt(_ context.Context, _ eth_common.Hash, _ time.Duration, _ time.Duration) (*eth_types.Receipt, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.receipt, nil
}

// fake_reporter collects the phases and the terminal outcome
type fake_reporter struct {
	phases   []Phase
	terminal *Outcome
}

func (f *fake_reporter) Progress(phase Phase, _ key_value.KeyValue) {
	f.phases = append(f.phases, phase)
}

func (f *fake_reporter) Terminal(outcome Outcome) {
	f.terminal = &outcome
}

// Define the suite, and absorb the built-in basic suite
// functionality from testify - including a T() method which
// returns the current testing context
type TestPipelineSuite struct {
	suite.Suite
	simulator *fake_simulator
	signer    *fake_signer
	submitter *fake_submitter
	reporter  *fake_reporter
	call      Call
	tx_hash   eth_common.Hash
}

func (suite *TestPipelineSuite) SetupTest() {
	suite.tx_hash = eth_common.HexToHash("0xabc1")

	suite.simulator = &fake_simulator{}
	suite.signer = &fake_signer{address: eth_common.HexToAddress("0x1"), hash: suite.tx_hash}
	suite.submitter = &fake_submitter{receipt: &eth_types.Receipt{Status: eth_types.ReceiptStatusSuccessful, TxHash: suite.tx_hash}}
	suite.reporter = &fake_reporter{}

	suite.call = Call{
		To:           eth_common.HexToAddress("0x2"),
		Data:         []byte{0x01},
		Value:        big.NewInt(0),
		FunctionName: "listItem",
	}
}

func (suite *TestPipelineSuite) pipeline() *Pipeline {
	config := Config{ConfirmationWait: time.Second, PollInterval: time.Millisecond}
	return New(suite.simulator, suite.signer, suite.submitter, suite.reporter, config)
}

func (suite *TestPipelineSuite) TestSuccess() {
	outcome := suite.pipeline().Run(context.TODO(), suite.call)

	suite.Require().Equal(SUCCESS, outcome.Kind)
	suite.Require().True(outcome.Ok())
	suite.Require().Equal(suite.tx_hash, outcome.TxHash)
	suite.Require().NotNil(outcome.Receipt)

	// all three phases were reported in order, then the terminal outcome
	suite.Require().Equal([]Phase{SIMULATE, SUBMIT, CONFIRM}, suite.reporter.phases)
	suite.Require().NotNil(suite.reporter.terminal)
	suite.Require().Equal(SUCCESS, suite.reporter.terminal.Kind)
}

func (suite *TestPipelineSuite) TestSimulationFailure() {
	suite.simulator.err = errors.New("execution reverted: not approved")

	outcome := suite.pipeline().Run(context.TODO(), suite.call)

	suite.Require().Equal(PRECONDITION_FAILED, outcome.Kind)
	suite.Require().False(outcome.HasTxHash())

	// nothing was handed to the wallet
	suite.Require().Zero(suite.signer.signed)
	suite.Require().Equal([]Phase{SIMULATE}, suite.reporter.phases)
}

func (suite *TestPipelineSuite) TestUserRejection() {
	suite.signer.err = signer.ErrUserRejected

	outcome := suite.pipeline().Run(context.TODO(), suite.call)

	// a rejection is terminal and carries no transaction hash
	suite.Require().Equal(USER_REJECTED, outcome.Kind)
	suite.Require().False(outcome.HasTxHash())

	// the rejection happened once, the pipeline never retried
	suite.Require().Equal(uint(1), suite.signer.signed)
	suite.Require().Equal(uint(1), suite.simulator.simulated)
}

func (suite *TestPipelineSuite) TestSubmissionError() {
	suite.signer.err = errors.New("connection refused")

	outcome := suite.pipeline().Run(context.TODO(), suite.call)

	suite.Require().Equal(SUBMISSION_ERROR, outcome.Kind)
	suite.Require().False(outcome.HasTxHash())
}

func (suite *TestPipelineSuite) TestConfirmationTimeout() {
	suite.submitter.err = client.ErrReceiptTimeout

	outcome := suite.pipeline().Run(context.TODO(), suite.call)

	// the transaction was broadcasted, the hash must survive the timeout
	suite.Require().Equal(CONFIRMATION_TIMEOUT, outcome.Kind)
	suite.Require().True(outcome.HasTxHash())
	suite.Require().Equal(suite.tx_hash, outcome.TxHash)
}

func (suite *TestPipelineSuite) TestOnchainFailure() {
	suite.submitter.receipt = &eth_types.Receipt{Status: eth_types.ReceiptStatusFailed, TxHash: suite.tx_hash}

	outcome := suite.pipeline().Run(context.TODO(), suite.call)

	// the gas was spent, the receipt and the hash are kept for the audit
	suite.Require().Equal(ONCHAIN_FAILURE, outcome.Kind)
	suite.Require().True(outcome.HasTxHash())
	suite.Require().NotNil(outcome.Receipt)
	suite.Require().False(outcome.Ok())
}

// A transaction hash never exists without a successful simulation
func (suite *TestPipelineSuite) TestNoHashWithoutSimulation() {
	suite.simulator.err = errors.New("execution reverted")

	for i := 0; i < 10; i++ {
		outcome := suite.pipeline().Run(context.TODO(), suite.call)
		suite.Require().False(outcome.HasTxHash())
	}

	suite.Require().Zero(suite.signer.signed)
}

// In order for 'go test' to run this suite, we need to create
// a normal test function and pass our suite to suite.Run
func TestPipeline(t *testing.T) {
	suite.Run(t, new(TestPipelineSuite))
}
