package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blocklords/market/market/pipeline"
	"github.com/blocklords/market/market/price"
	"github.com/blocklords/market/market/resource"
	"github.com/blocklords/market/market/role"
	"github.com/blocklords/market/market/sync"
	"github.com/blocklords/market/market/transaction"

	eth_common "github.com/ethereum/go-ethereum/common"
)

// ListNft puts the resource on sale on the marketplace smartcontract.
//
// Pre-conditions: the caller holds the seller role on the marketplace,
// the resource is past its royalty configuration, and either the caller
// is the marketplace owner or the resource is not custodied by the
// admin escrow.
//
// On a confirmed receipt the resource advances to LISTED and one audit
// record with the "listItem" function name is appended.
func (o *Orchestrator) ListNft(ctx context.Context, resource_id uint64, price_amount string) (*Result, error) {
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

	// the price conversion is exact, a lossy price never reaches the ledger
	base_price, err := price.ToBaseUnit(price_amount, price.BASE_UNIT_DECIMALS)
	if err != nil {
		return precondition_failed(fmt.Errorf("price.ToBaseUnit of '%s': %w", price_amount, err)), nil
	}

	// the lifecycle gate: listing is only reachable from ROYALTYSET
	if !market_resource.Status.CanAdvanceTo(resource.LISTED) {
		return precondition_failed(fmt.Errorf("the resource %d status is '%s', the royalty configuration should be confirmed before listing",
			resource_id, market_resource.Status.String())), nil
	}

	marketplace_address := market_collection.Deployment.MarketplaceAddress

	granted, err := o.checkRole(ctx, marketplace_address, role.SELLER_ROLE)
	if err != nil {
		return role_denied(err), nil
	}
	if !granted {
		return role_denied(fmt.Errorf("the %s account doesn't hold the seller role", o.signer.Address().Hex())), nil
	}

	eligible, err := o.listingEligible(ctx, market_resource, marketplace_address)
	if err != nil {
		return role_denied(err), nil
	}
	if !eligible {
		return role_denied(fmt.Errorf("the %s account is not eligible to list the resource %d", o.signer.Address().Hex(), resource_id)), nil
	}

	data, err := o.marketplace_abi.Pack("listItem",
		eth_common.HexToAddress(market_collection.ContractAddress),
		market_resource.TokenId,
		base_price,
	)
	if err != nil {
		return nil, fmt.Errorf("marketplace_abi.Pack: %w", err)
	}

	outcome := o.pipeline.Run(ctx, pipeline.Call{
		To:           eth_common.HexToAddress(marketplace_address),
		Data:         data,
		FunctionName: "listItem",
	})
	if !outcome.Ok() {
		return &Result{Outcome: outcome, Resource: market_resource}, nil
	}

	record := transaction.New(o.network.Id, "listItem", outcome.TxHash.Hex(), uint64(time.Now().Unix())).
		AddParties(o.signer.Address().Hex(), marketplace_address, market_collection.ContractAddress).
		AddPrice(base_price.String())

	report := o.synchronizer.Sync(sync.Effects{
		ResourceId: resource_id,
		NewStatus:  resource.LISTED,
		Record:     record,
	})

	return &Result{
		Outcome:  outcome,
		Sync:     report,
		Resource: o.snapshot(resource_id),
	}, nil
}

// listingEligible combines the ownership facts of the listing:
// the caller is the marketplace owner, or the resource is not
// custodied by the admin escrow.
func (o *Orchestrator) listingEligible(ctx context.Context, market_resource *resource.Resource, marketplace_address string) (bool, error) {
	owner, err := o.checker.Owner(ctx, eth_common.HexToAddress(marketplace_address))
	if err != nil {
		return false, fmt.Errorf("checker.Owner of %s: %w", marketplace_address, err)
	}

	caller_is_owner := owner == o.signer.Address()
	admin_custodied := strings.EqualFold(market_resource.OwnerAddress, o.admin_address.Hex())

	return caller_is_owner || !admin_custodied, nil
}
