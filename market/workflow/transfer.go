package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blocklords/market/blockchain/evm/signer"
	"github.com/blocklords/market/market/pipeline"
	"github.com/blocklords/market/market/resource"
	"github.com/blocklords/market/market/role"
	"github.com/blocklords/market/market/sync"
	"github.com/blocklords/market/market/transaction"

	eth_common "github.com/ethereum/go-ethereum/common"
)

// ApproveForTransfer grants the marketplace smartcontract the spending
// right over the resource's token.
//
// On a confirmed receipt one audit record with the "approve" function
// name is appended. The lifecycle status doesn't change.
func (o *Orchestrator) ApproveForTransfer(ctx context.Context, resource_id uint64) (*Result, error) {
	if err := o.leases.TryAcquire(resource_id); err != nil {
		return nil, err
	}
	defer o.leases.Release(resource_id)

	market_resource, market_collection, err := o.load(resource_id)
	if err != nil {
		return nil, err
	}

	if !market_resource.Minted() {
		return precondition_failed(fmt.Errorf("the resource %d has no token yet", resource_id)), nil
	}

	if result, err := o.custodyGate(ctx, market_resource, market_collection.ContractAddress); result != nil || err != nil {
		return result, err
	}

	data, err := o.nft_abi.Pack("approve",
		eth_common.HexToAddress(market_collection.Deployment.MarketplaceAddress),
		market_resource.TokenId,
	)
	if err != nil {
		return nil, fmt.Errorf("nft_abi.Pack: %w", err)
	}

	outcome := o.pipeline.Run(ctx, pipeline.Call{
		To:           eth_common.HexToAddress(market_collection.ContractAddress),
		Data:         data,
		FunctionName: "approve",
	})
	if !outcome.Ok() {
		return &Result{Outcome: outcome, Resource: market_resource}, nil
	}

	record := transaction.New(o.network.Id, "approve", outcome.TxHash.Hex(), uint64(time.Now().Unix())).
		AddParties(o.signer.Address().Hex(), market_collection.Deployment.MarketplaceAddress, market_collection.ContractAddress)

	report := o.synchronizer.Sync(sync.Effects{
		ResourceId: resource_id,
		Record:     record,
	})

	return &Result{
		Outcome:  outcome,
		Sync:     report,
		Resource: o.snapshot(resource_id),
	}, nil
}

// TransferOwnership moves the custodial ownership of the token,
// typically into the admin escrow before a listing.
//
// On a confirmed receipt one audit record with the "transferFrom"
// function name is appended. The lifecycle status doesn't change.
func (o *Orchestrator) TransferOwnership(ctx context.Context, resource_id uint64, to string) (*Result, error) {
	if err := o.leases.TryAcquire(resource_id); err != nil {
		return nil, err
	}
	defer o.leases.Release(resource_id)

	market_resource, market_collection, err := o.load(resource_id)
	if err != nil {
		return nil, err
	}

	if !market_resource.Minted() {
		return precondition_failed(fmt.Errorf("the resource %d has no token yet", resource_id)), nil
	}

	if result, err := o.custodyGate(ctx, market_resource, market_collection.ContractAddress); result != nil || err != nil {
		return result, err
	}

	data, err := o.nft_abi.Pack("transferFrom",
		eth_common.HexToAddress(market_resource.OwnerAddress),
		eth_common.HexToAddress(to),
		market_resource.TokenId,
	)
	if err != nil {
		return nil, fmt.Errorf("nft_abi.Pack: %w", err)
	}

	outcome := o.pipeline.Run(ctx, pipeline.Call{
		To:           eth_common.HexToAddress(market_collection.ContractAddress),
		Data:         data,
		FunctionName: "transferFrom",
	})
	if !outcome.Ok() {
		return &Result{Outcome: outcome, Resource: market_resource}, nil
	}

	record := transaction.New(o.network.Id, "transferFrom", outcome.TxHash.Hex(), uint64(time.Now().Unix())).
		AddParties(market_resource.OwnerAddress, to, market_collection.ContractAddress)

	report := o.synchronizer.Sync(sync.Effects{
		ResourceId: resource_id,
		Record:     record,
	})

	return &Result{
		Outcome:  outcome,
		Sync:     report,
		Resource: o.snapshot(resource_id),
	}, nil
}

// custodyGate combines the three facts that guard the custody
// workflows. All three should hold:
//
//   - the caller is the collection admin
//   - the caller's wallet is the manager type
//   - the token is held by the party that the record store expects
//
// Returns a terminal result when a fact doesn't hold, nil when
// the gate passed.
func (o *Orchestrator) custodyGate(ctx context.Context, market_resource *resource.Resource, collection_address string) (*Result, error) {
	granted, err := o.checkRole(ctx, collection_address, role.COLLECTION_ADMIN_ROLE)
	if err != nil {
		return role_denied(err), nil
	}
	if !granted {
		return role_denied(fmt.Errorf("the %s account doesn't hold the collection admin role", o.signer.Address().Hex())), nil
	}

	if o.signer.Type() != signer.MANAGER {
		return role_denied(fmt.Errorf("the custody workflows expect the manager wallet, not '%s'", o.signer.Type())), nil
	}

	onchain_owner, err := o.tokenOwner(ctx, market_resource, collection_address)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(onchain_owner.Hex(), market_resource.OwnerAddress) {
		return precondition_failed(fmt.Errorf("the token of resource %d is held by %s, the record store expects %s",
			market_resource.Id, onchain_owner.Hex(), market_resource.OwnerAddress)), nil
	}

	return nil, nil
}

// tokenOwner reads the current token holder from the ledger
func (o *Orchestrator) tokenOwner(ctx context.Context, market_resource *resource.Resource, collection_address string) (eth_common.Address, error) {
	data, err := o.nft_abi.Pack("ownerOf", market_resource.TokenId)
	if err != nil {
		return eth_common.Address{}, fmt.Errorf("nft_abi.Pack: %w", err)
	}

	raw, err := o.checker.Read(ctx, eth_common.HexToAddress(collection_address), data)
	if err != nil {
		return eth_common.Address{}, fmt.Errorf("checker.Read of %s: %w", collection_address, err)
	}

	values, err := o.nft_abi.Unpack("ownerOf", raw)
	if err != nil {
		return eth_common.Address{}, fmt.Errorf("nft_abi.Unpack: %w", err)
	}
	if len(values) != 1 {
		return eth_common.Address{}, fmt.Errorf("'ownerOf' returned %d values, expected one", len(values))
	}

	owner, ok := values[0].(eth_common.Address)
	if !ok {
		return eth_common.Address{}, fmt.Errorf("'ownerOf' returned %T, expected address", values[0])
	}

	return owner, nil
}
