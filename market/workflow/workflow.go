// Package workflow turns the operator intents into the safely
// sequenced smartcontract calls followed by the record store
// synchronization.
//
// Every workflow follows the same shape: acquire the per-resource
// lease, re-check the authorization gate, validate the lifecycle
// pre-conditions, run the transaction pipeline and mirror the
// confirmed effect into the store.
package workflow

import (
	"context"
	"fmt"

	"github.com/blocklords/market/app/log"
	"github.com/blocklords/market/blockchain/evm/abi"
	"github.com/blocklords/market/blockchain/evm/signer"
	"github.com/blocklords/market/blockchain/network"
	"github.com/blocklords/market/db"
	"github.com/blocklords/market/market/collection"
	"github.com/blocklords/market/market/pipeline"
	"github.com/blocklords/market/market/resource"
	"github.com/blocklords/market/market/role"
	"github.com/blocklords/market/market/sync"

	eth_common "github.com/ethereum/go-ethereum/common"
)

// Loader reads the resource and its collection from the record store.
type Loader interface {
	GetResource(id uint64) (*resource.Resource, error)
	GetCollection(id uint64) (*collection.Collection, error)
}

// DbLoader is the Loader over the mysql connection
type DbLoader struct {
	con *db.Database
}

// NewDbLoader over the database connection
func NewDbLoader(con *db.Database) *DbLoader {
	return &DbLoader{con: con}
}

func (loader *DbLoader) GetResource(id uint64) (*resource.Resource, error) {
	return resource.Get(loader.con, id)
}

func (loader *DbLoader) GetCollection(id uint64) (*collection.Collection, error) {
	return collection.Get(loader.con, id)
}

// Result of one workflow invocation.
//
// The on-chain outcome and the store synchronization are two separate
// fields on purpose. "Fully succeeded" is Outcome.Ok() && Sync.Ok(),
// "succeeded but needs a manual reconciliation" is
// Outcome.Ok() && Sync.NeedsReconciliation().
type Result struct {
	Outcome  pipeline.Outcome
	Sync     *sync.Report
	Resource *resource.Resource
}

// Orchestrator owns the workflow entry points.
type Orchestrator struct {
	network      *network.Network
	checker      *role.Checker
	pipeline     *pipeline.Pipeline
	synchronizer *sync.Synchronizer
	loader       Loader
	signer       signer.Signer

	// the escrow address that custodies the resources before listing
	admin_address eth_common.Address

	marketplace_abi *abi.Abi
	royalty_abi     *abi.Abi
	nft_abi         *abi.Abi

	leases *Leases
	logger *log.Logger
}

// New Orchestrator over the collaborators
func New(
	net *network.Network,
	checker *role.Checker,
	tx_pipeline *pipeline.Pipeline,
	synchronizer *sync.Synchronizer,
	loader Loader,
	tx_signer signer.Signer,
	admin_address eth_common.Address,
	logger *log.Logger,
) (*Orchestrator, error) {
	marketplace_abi, err := abi.New(abi.Marketplace)
	if err != nil {
		return nil, fmt.Errorf("abi.New(marketplace): %w", err)
	}
	royalty_abi, err := abi.New(abi.Royalty)
	if err != nil {
		return nil, fmt.Errorf("abi.New(royalty): %w", err)
	}
	nft_abi, err := abi.New(abi.Nft)
	if err != nil {
		return nil, fmt.Errorf("abi.New(nft): %w", err)
	}

	return &Orchestrator{
		network:         net,
		checker:         checker,
		pipeline:        tx_pipeline,
		synchronizer:    synchronizer,
		loader:          loader,
		signer:          tx_signer,
		admin_address:   admin_address,
		marketplace_abi: marketplace_abi,
		royalty_abi:     royalty_abi,
		nft_abi:         nft_abi,
		leases:          NewLeases(),
		logger:          logger.Child("workflow"),
	}, nil
}

// load the resource with its collection, and check the deployment
func (o *Orchestrator) load(resource_id uint64) (*resource.Resource, *collection.Collection, error) {
	market_resource, err := o.loader.GetResource(resource_id)
	if err != nil {
		return nil, nil, fmt.Errorf("loader.GetResource of %d: %w", resource_id, err)
	}

	market_collection, err := o.loader.GetCollection(market_resource.CollectionId)
	if err != nil {
		return nil, nil, fmt.Errorf("loader.GetCollection of %d: %w", market_resource.CollectionId, err)
	}

	if !market_collection.Deployment.Active {
		return nil, nil, fmt.Errorf("the deployment of collection %d is not active", market_collection.Id)
	}
	if market_collection.Deployment.NetworkId != o.network.Id {
		return nil, nil, fmt.Errorf("collection %d is deployed on network %s, the orchestrator runs on %s",
			market_collection.Id, market_collection.Deployment.NetworkId, o.network.Id)
	}

	return market_resource, market_collection, nil
}

// role_denied is the terminal result of a failed authorization gate
func role_denied(err error) *Result {
	return &Result{
		Outcome: pipeline.Outcome{Kind: pipeline.ROLE_DENIED, Err: err},
	}
}

// precondition_failed is the terminal result of a failed local
// pre-condition. Nothing was sent to the ledger.
func precondition_failed(err error) *Result {
	return &Result{
		Outcome: pipeline.Outcome{Kind: pipeline.PRECONDITION_FAILED, Err: err},
	}
}

// snapshot reloads the resource after the synchronization,
// so the caller gets the updated state
func (o *Orchestrator) snapshot(resource_id uint64) *resource.Resource {
	updated, err := o.loader.GetResource(resource_id)
	if err != nil {
		o.logger.Warn("reloading the resource snapshot failed", "resource_id", resource_id, "error", err)
		return nil
	}

	return updated
}

// checkRole re-checks the gate at the call time. The grants can be
// revoked between the page load and the submission, therefore the
// result of a previous check is never reused.
func (o *Orchestrator) checkRole(ctx context.Context, contract_address string, role_id eth_common.Hash) (bool, error) {
	granted, err := o.checker.HasRole(ctx, eth_common.HexToAddress(contract_address), role_id, o.signer.Address())
	if err != nil {
		return false, fmt.Errorf("checker.HasRole on %s: %w", contract_address, err)
	}

	return granted, nil
}
