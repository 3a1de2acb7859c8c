package workflow

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/blocklords/market/app/log"
	"github.com/blocklords/market/blockchain/evm/abi"
	"github.com/blocklords/market/blockchain/evm/client"
	"github.com/blocklords/market/blockchain/evm/signer"
	"github.com/blocklords/market/blockchain/network"
	"github.com/blocklords/market/market/collection"
	"github.com/blocklords/market/market/pipeline"
	"github.com/blocklords/market/market/resource"
	"github.com/blocklords/market/market/role"
	"github.com/blocklords/market/market/royalty"
	"github.com/blocklords/market/market/sync"
	"github.com/blocklords/market/market/transaction"

	eth_common "github.com/ethereum/go-ethereum/common"
	eth_types "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/suite"
)

const (
	manager_hex     = "0x1000000000000000000000000000000000000001"
	admin_hex       = "0x1000000000000000000000000000000000000002"
	creator_hex     = "0x1000000000000000000000000000000000000003"
	collection_hex  = "0x2000000000000000000000000000000000000001"
	marketplace_hex = "0x2000000000000000000000000000000000000002"
	royalty_hex     = "0x2000000000000000000000000000000000000003"
)

// fake_reader answers the read-only calls by the 4 byte selector
// of the calldata
type fake_reader struct {
	responses map[string][]byte
	err       error
}

func (f *fake_reader) ReadContract(_ context.Context, _ eth_common.Address, data []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(data) < 4 {
		return nil, errors.New("short calldata")
	}

	response, ok := f.responses[hex.EncodeToString(data[:4])]
	if !ok {
		return nil, errors.New("unexpected read call")
	}

	return response, nil
}

// fake_ledger simulates, signs and confirms without a node
type fake_ledger struct {
	simulate_err error
	sign_err     error
	receipt_err  error
	failed       bool
	signer_type  signer.Type
	address      eth_common.Address
	tx_hash      eth_common.Hash
	submitted    uint
}

func (f *fake_ledger) Simulate(_ context.Context, from eth_common.Address, to eth_common.Address, data []byte, value *big.Int) (*client.PreparedCall, error) {
	if f.simulate_err != nil {
		return nil, f.simulate_err
	}

	return &client.PreparedCall{From: from, To: to, Data: data, Value: value, ChainId: big.NewInt(1)}, nil
}

func (f *fake_ledger) Address() eth_common.Address { return f.address }
func (f *fake_ledger) Type() signer.Type           { return f.signer_type }

func (f *fake_ledger) SignAndSend(_ context.Context, _ *client.PreparedCall) (eth_common.Hash, error) {
	if f.sign_err != nil {
		return eth_common.Hash{}, f.sign_err
	}
	f.submitted++

	return f.tx_hash, nil
}

func (f *fake_ledger) WaitForReceipt(_ context.Context, tx_hash eth_common.Hash, _ time.Duration, _ time.Duration) (*eth_types.Receipt, error) {
	if f.receipt_err != nil {
		return nil, f.receipt_err
	}

	status := eth_types.ReceiptStatusSuccessful
	if f.failed {
		status = eth_types.ReceiptStatusFailed
	}

	return &eth_types.Receipt{Status: status, TxHash: tx_hash}, nil
}

// fake_records is the in-memory record store, serving both
// the workflow loader and the synchronizer store
type fake_records struct {
	resources   map[uint64]*resource.Resource
	collections map[uint64]*collection.Collection

	saved_records       map[string]*transaction.Record
	saved_beneficiaries []*royalty.Beneficiary
	status_err          error
}

func new_fake_records() *fake_records {
	return &fake_records{
		resources:     map[uint64]*resource.Resource{},
		collections:   map[uint64]*collection.Collection{},
		saved_records: map[string]*transaction.Record{},
	}
}

func (f *fake_records) GetResource(id uint64) (*resource.Resource, error) {
	r, ok := f.resources[id]
	if !ok {
		return nil, errors.New("no resource")
	}
	copied := *r
	return &copied, nil
}

func (f *fake_records) GetCollection(id uint64) (*collection.Collection, error) {
	c, ok := f.collections[id]
	if !ok {
		return nil, errors.New("no collection")
	}
	return c, nil
}

func (f *fake_records) UpdateResourceStatus(id uint64, status resource.Status) error {
	if f.status_err != nil {
		return f.status_err
	}
	f.resources[id].Status = status
	return nil
}

func (f *fake_records) AppendTransactionRecord(record *transaction.Record) error {
	if _, ok := f.saved_records[record.TransactionHash]; !ok {
		f.saved_records[record.TransactionHash] = record
	}
	return nil
}

func (f *fake_records) CreateBeneficiary(beneficiary *royalty.Beneficiary) error {
	f.saved_beneficiaries = append(f.saved_beneficiaries, beneficiary)
	return nil
}

func (f *fake_records) TransactionRecorded(transaction_hash string) (bool, error) {
	_, ok := f.saved_records[transaction_hash]
	return ok, nil
}

// Define the suite, and absorb the built-in basic suite
// functionality from testify - including a T() method which
// returns the current testing context
type TestWorkflowSuite struct {
	suite.Suite
	reader  *fake_reader
	ledger  *fake_ledger
	records *fake_records

	has_role_selector string
	owner_selector    string
	owner_of_selector string
}

func (suite *TestWorkflowSuite) SetupTest() {
	// learn the selectors from the same definitions the workflows pack with
	marketplace_abi, err := abi.New(abi.Marketplace)
	suite.Require().NoError(err)
	nft_abi, err := abi.New(abi.Nft)
	suite.Require().NoError(err)

	has_role_data, err := marketplace_abi.Pack("hasRole", role.SELLER_ROLE, eth_common.HexToAddress(manager_hex))
	suite.Require().NoError(err)
	owner_data, err := marketplace_abi.Pack("owner")
	suite.Require().NoError(err)
	owner_of_data, err := nft_abi.Pack("ownerOf", big.NewInt(1))
	suite.Require().NoError(err)

	suite.has_role_selector = hex.EncodeToString(has_role_data[:4])
	suite.owner_selector = hex.EncodeToString(owner_data[:4])
	suite.owner_of_selector = hex.EncodeToString(owner_of_data[:4])

	suite.reader = &fake_reader{responses: map[string][]byte{}}
	suite.grantRole(true)
	suite.setContractOwner(eth_common.HexToAddress(manager_hex))
	suite.setTokenHolder(eth_common.HexToAddress(admin_hex))

	suite.ledger = &fake_ledger{
		signer_type: signer.MANAGER,
		address:     eth_common.HexToAddress(manager_hex),
		tx_hash:     eth_common.HexToHash("0xabc1"),
	}

	suite.records = new_fake_records()
	suite.records.collections[1] = &collection.Collection{
		Id:              1,
		Name:            "genesis",
		ContractAddress: collection_hex,
		Deployment: collection.Deployment{
			NetworkId:          "1",
			MarketplaceAddress: marketplace_hex,
			RoyaltyAddress:     royalty_hex,
			Active:             true,
		},
	}
	suite.records.resources[7] = &resource.Resource{
		Id:           7,
		CollectionId: 1,
		TokenId:      big.NewInt(42),
		Status:       resource.ROYALTYSET,
		OwnerAddress: admin_hex,
	}
}

func (suite *TestWorkflowSuite) grantRole(granted bool) {
	word := make([]byte, 32)
	if granted {
		word[31] = 1
	}
	suite.reader.responses[suite.has_role_selector] = word
}

func (suite *TestWorkflowSuite) setContractOwner(owner eth_common.Address) {
	word := make([]byte, 32)
	copy(word[12:], owner.Bytes())
	suite.reader.responses[suite.owner_selector] = word
}

func (suite *TestWorkflowSuite) setTokenHolder(holder eth_common.Address) {
	word := make([]byte, 32)
	copy(word[12:], holder.Bytes())
	suite.reader.responses[suite.owner_of_selector] = word
}

func (suite *TestWorkflowSuite) orchestrator() *Orchestrator {
	logger, err := log.New("workflow-test", log.WITHOUT_TIMESTAMP)
	suite.Require().NoError(err)

	checker, err := role.NewChecker(suite.reader)
	suite.Require().NoError(err)

	config := pipeline.Config{ConfirmationWait: time.Second, PollInterval: time.Millisecond}
	tx_pipeline := pipeline.New(suite.ledger, suite.ledger, suite.ledger, pipeline.NewLogReporter(logger), config)

	orchestrator, err := New(
		&network.Network{Id: "1", Type: network.EVM},
		checker,
		tx_pipeline,
		sync.New(suite.records, logger),
		suite.records,
		suite.ledger,
		eth_common.HexToAddress(admin_hex),
		logger,
	)
	suite.Require().NoError(err)

	return orchestrator
}

func (suite *TestWorkflowSuite) TestListing() {
	result, err := suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.SUCCESS, result.Outcome.Kind)
	suite.Require().True(result.Sync.Ok())

	// the resource advanced to LISTED
	suite.Require().NotNil(result.Resource)
	suite.Require().Equal(resource.LISTED, result.Resource.Status)

	// one audit record with the exact base unit price
	record := suite.records.saved_records[suite.ledger.tx_hash.Hex()]
	suite.Require().NotNil(record)
	suite.Require().Equal("listItem", record.FunctionName)
	suite.Require().Equal("500000000000000000", record.Price)
	suite.Require().Equal("1", record.NetworkId)
}

func (suite *TestWorkflowSuite) TestListingRoleDenied() {
	suite.grantRole(false)

	result, err := suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.ROLE_DENIED, result.Outcome.Kind)

	// nothing reached the ledger, nothing reached the store
	suite.Require().Zero(suite.ledger.submitted)
	suite.Require().Empty(suite.records.saved_records)
	suite.Require().Equal(resource.ROYALTYSET, suite.records.resources[7].Status)
}

// An RPC outage during the role check denies, it never grants
func (suite *TestWorkflowSuite) TestListingRoleCheckOutage() {
	suite.reader.err = errors.New("connection refused")

	result, err := suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.ROLE_DENIED, result.Outcome.Kind)
	suite.Require().Zero(suite.ledger.submitted)
}

func (suite *TestWorkflowSuite) TestListingLifecycleGate() {
	// the royalty configuration wasn't confirmed yet
	suite.records.resources[7].Status = resource.MINTED

	result, err := suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.PRECONDITION_FAILED, result.Outcome.Kind)
	suite.Require().Zero(suite.ledger.submitted)

	// a listed resource can not list again, the status never regresses
	suite.records.resources[7].Status = resource.LISTED

	result, err = suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().NoError(err)
	suite.Require().Equal(pipeline.PRECONDITION_FAILED, result.Outcome.Kind)
}

func (suite *TestWorkflowSuite) TestListingInvalidPrice() {
	// 19 fractional digits never round
	result, err := suite.orchestrator().ListNft(context.TODO(), 7, "0.0000000000000000001")
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.PRECONDITION_FAILED, result.Outcome.Kind)
	suite.Require().Zero(suite.ledger.submitted)
}

// A corrupt row without a token never reaches the abi packer
func (suite *TestWorkflowSuite) TestListingUnminted() {
	suite.records.resources[7].TokenId = nil

	result, err := suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.PRECONDITION_FAILED, result.Outcome.Kind)
	suite.Require().Zero(suite.ledger.submitted)
}

// The declined signature is a normal user action: no hash, no retry,
// nothing written
func (suite *TestWorkflowSuite) TestListingUserRejection() {
	suite.ledger.sign_err = signer.ErrUserRejected

	result, err := suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.USER_REJECTED, result.Outcome.Kind)
	suite.Require().False(result.Outcome.HasTxHash())
	suite.Require().Zero(suite.ledger.submitted)

	suite.Require().Nil(result.Sync)
	suite.Require().Empty(suite.records.saved_records)
	suite.Require().Equal(resource.ROYALTYSET, suite.records.resources[7].Status)
}

// The custodied resource is listable by the marketplace owner only
func (suite *TestWorkflowSuite) TestListingCustodyEligibility() {
	suite.setContractOwner(eth_common.HexToAddress(creator_hex))

	result, err := suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().NoError(err)
	suite.Require().Equal(pipeline.ROLE_DENIED, result.Outcome.Kind)

	// the resource held outside the escrow is listable by any seller
	suite.records.resources[7].OwnerAddress = creator_hex

	result, err = suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().NoError(err)
	suite.Require().Equal(pipeline.SUCCESS, result.Outcome.Kind)
}

func (suite *TestWorkflowSuite) TestListingOnchainFailure() {
	suite.ledger.failed = true

	result, err := suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.ONCHAIN_FAILURE, result.Outcome.Kind)
	suite.Require().True(result.Outcome.HasTxHash())

	// a failed receipt mutates nothing off-chain
	suite.Require().Nil(result.Sync)
	suite.Require().Empty(suite.records.saved_records)
	suite.Require().Equal(resource.ROYALTYSET, suite.records.resources[7].Status)
}

func (suite *TestWorkflowSuite) TestListingConfirmationTimeout() {
	suite.ledger.receipt_err = client.ErrReceiptTimeout

	result, err := suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().NoError(err)

	// the hash survives the timeout for the manual follow up
	suite.Require().Equal(pipeline.CONFIRMATION_TIMEOUT, result.Outcome.Kind)
	suite.Require().True(result.Outcome.HasTxHash())
	suite.Require().Empty(suite.records.saved_records)
}

// Confirmed on-chain but the store diverged: the outcome stays
// successful and the report asks for a reconciliation
func (suite *TestWorkflowSuite) TestListingSyncDivergence() {
	suite.records.status_err = errors.New("deadlock")

	result, err := suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.SUCCESS, result.Outcome.Kind)
	suite.Require().False(result.Sync.Ok())
	suite.Require().True(result.Sync.NeedsReconciliation())

	// the audit record still landed
	suite.Require().Len(suite.records.saved_records, 1)
}

func (suite *TestWorkflowSuite) TestRoyaltyConfiguration() {
	suite.records.resources[7].Status = resource.MINTED

	result, err := suite.orchestrator().ConfigureRoyalties(context.TODO(), 7,
		[]string{creator_hex, admin_hex}, []string{"2.5", "7.5"}, "10")
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.SUCCESS, result.Outcome.Kind)
	suite.Require().True(result.Sync.Ok())
	suite.Require().Equal(resource.ROYALTYSET, result.Resource.Status)

	// one beneficiary row per recipient, exactly scaled
	suite.Require().Len(suite.records.saved_beneficiaries, 2)
	for _, beneficiary := range suite.records.saved_beneficiaries {
		suite.Require().Equal(uint64(1000), beneficiary.TotalPercentage)
		if beneficiary.Recipient == creator_hex {
			suite.Require().Equal(uint64(250), beneficiary.Percentage)
		} else {
			suite.Require().Equal(uint64(750), beneficiary.Percentage)
		}
	}
}

func (suite *TestWorkflowSuite) TestRoyaltyUnminted() {
	suite.records.resources[7].Status = resource.MINTED
	suite.records.resources[7].TokenId = nil

	result, err := suite.orchestrator().ConfigureRoyalties(context.TODO(), 7,
		[]string{creator_hex}, []string{"10"}, "10")
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.PRECONDITION_FAILED, result.Outcome.Kind)
	suite.Require().Zero(suite.ledger.submitted)
}

func (suite *TestWorkflowSuite) TestRoyaltyShareMismatch() {
	suite.records.resources[7].Status = resource.MINTED

	// 2.5 + 7.5 is not 11
	result, err := suite.orchestrator().ConfigureRoyalties(context.TODO(), 7,
		[]string{creator_hex, admin_hex}, []string{"2.5", "7.5"}, "11")
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.PRECONDITION_FAILED, result.Outcome.Kind)
	suite.Require().Zero(suite.ledger.submitted)

	// mismatching list sizes
	result, err = suite.orchestrator().ConfigureRoyalties(context.TODO(), 7,
		[]string{creator_hex}, []string{"2.5", "7.5"}, "10")
	suite.Require().NoError(err)
	suite.Require().Equal(pipeline.PRECONDITION_FAILED, result.Outcome.Kind)

	// a third fractional digit is rejected, never rounded
	result, err = suite.orchestrator().ConfigureRoyalties(context.TODO(), 7,
		[]string{creator_hex}, []string{"2.505"}, "2.505")
	suite.Require().NoError(err)
	suite.Require().Equal(pipeline.PRECONDITION_FAILED, result.Outcome.Kind)
}

func (suite *TestWorkflowSuite) TestRoyaltyLifecycleGate() {
	// already configured
	result, err := suite.orchestrator().ConfigureRoyalties(context.TODO(), 7,
		[]string{creator_hex}, []string{"10"}, "10")
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.PRECONDITION_FAILED, result.Outcome.Kind)
	suite.Require().Zero(suite.ledger.submitted)
}

func (suite *TestWorkflowSuite) TestApprove() {
	result, err := suite.orchestrator().ApproveForTransfer(context.TODO(), 7)
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.SUCCESS, result.Outcome.Kind)
	suite.Require().True(result.Sync.Ok())

	// the approval doesn't advance the lifecycle
	suite.Require().Equal(resource.ROYALTYSET, result.Resource.Status)
	suite.Require().Len(suite.records.saved_records, 1)
}

func (suite *TestWorkflowSuite) TestApproveNonManagerWallet() {
	suite.ledger.signer_type = signer.EXTERNAL

	result, err := suite.orchestrator().ApproveForTransfer(context.TODO(), 7)
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.ROLE_DENIED, result.Outcome.Kind)
	suite.Require().Zero(suite.ledger.submitted)
}

// The ledger holder diverged from the record store, the custody
// workflow stops before spending any gas
func (suite *TestWorkflowSuite) TestApproveHolderMismatch() {
	suite.setTokenHolder(eth_common.HexToAddress(creator_hex))

	result, err := suite.orchestrator().ApproveForTransfer(context.TODO(), 7)
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.PRECONDITION_FAILED, result.Outcome.Kind)
	suite.Require().Zero(suite.ledger.submitted)
}

func (suite *TestWorkflowSuite) TestTransfer() {
	result, err := suite.orchestrator().TransferOwnership(context.TODO(), 7, creator_hex)
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.SUCCESS, result.Outcome.Kind)
	suite.Require().True(result.Sync.Ok())
	suite.Require().Equal(resource.ROYALTYSET, result.Resource.Status)

	record := suite.records.saved_records[suite.ledger.tx_hash.Hex()]
	suite.Require().NotNil(record)
	suite.Require().Equal("transferFrom", record.FunctionName)
	suite.Require().Equal(admin_hex, record.TxFrom)
	suite.Require().Equal(creator_hex, record.TxTo)
}

func (suite *TestWorkflowSuite) TestTransferUnminted() {
	suite.records.resources[7].TokenId = nil

	result, err := suite.orchestrator().TransferOwnership(context.TODO(), 7, creator_hex)
	suite.Require().NoError(err)

	suite.Require().Equal(pipeline.PRECONDITION_FAILED, result.Outcome.Kind)
	suite.Require().Zero(suite.ledger.submitted)
}

// At most one pipeline in flight per resource
func (suite *TestWorkflowSuite) TestLeaseExclusion() {
	orchestrator := suite.orchestrator()

	suite.Require().NoError(orchestrator.leases.TryAcquire(7))

	_, err := orchestrator.ListNft(context.TODO(), 7, "0.5")
	suite.Require().ErrorIs(err, ErrLeaseHeld)

	// a different resource is unaffected
	suite.Require().NoError(orchestrator.leases.TryAcquire(8))
	orchestrator.leases.Release(8)

	// the release frees the lease for the next run
	orchestrator.leases.Release(7)

	result, err := orchestrator.ListNft(context.TODO(), 7, "0.5")
	suite.Require().NoError(err)
	suite.Require().Equal(pipeline.SUCCESS, result.Outcome.Kind)
}

func (suite *TestWorkflowSuite) TestInactiveDeployment() {
	suite.records.collections[1].Deployment.Active = false

	_, err := suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().Error(err)
	suite.Require().Zero(suite.ledger.submitted)
}

func (suite *TestWorkflowSuite) TestForeignNetworkDeployment() {
	suite.records.collections[1].Deployment.NetworkId = "56"

	_, err := suite.orchestrator().ListNft(context.TODO(), 7, "0.5")
	suite.Require().Error(err)
	suite.Require().Zero(suite.ledger.submitted)
}

// In order for 'go test' to run this suite, we need to create
// a normal test function and pass our suite to suite.Run
func TestWorkflow(t *testing.T) {
	suite.Run(t, new(TestWorkflowSuite))
}
