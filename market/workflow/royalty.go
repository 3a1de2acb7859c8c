package workflow

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/blocklords/market/market/pipeline"
	"github.com/blocklords/market/market/resource"
	"github.com/blocklords/market/market/role"
	"github.com/blocklords/market/market/royalty"
	"github.com/blocklords/market/market/sync"
	"github.com/blocklords/market/market/transaction"

	eth_common "github.com/ethereum/go-ethereum/common"
)

// ConfigureRoyalties declares the resale shares of the resource
// on the royalty smartcontract.
//
// The share percentages are validated locally before any interaction
// with the ledger: a configuration whose shares don't sum up to the
// declared total never costs an RPC round trip.
//
// On a confirmed receipt the resource advances to ROYALTYSET, one
// beneficiary row per recipient is written and one audit record with
// the "setRoyalty" function name is appended. A failed beneficiary row
// doesn't roll back the confirmed on-chain configuration, it is
// reported for a manual reconciliation instead.
func (o *Orchestrator) ConfigureRoyalties(ctx context.Context, resource_id uint64, recipients []string, percentages []string, total_percentage string) (*Result, error) {
	if len(recipients) != len(percentages) {
		return precondition_failed(fmt.Errorf("%d recipients for %d percentages", len(recipients), len(percentages))), nil
	}

	// scale exactly, then validate locally. fail fast before the lease
	// and before any RPC round trip.
	scaled_percentages := make([]uint64, len(percentages))
	for i, percentage := range percentages {
		scaled, err := royalty.ScalePercentage(percentage)
		if err != nil {
			return precondition_failed(fmt.Errorf("royalty.ScalePercentage of '%s': %w", percentage, err)), nil
		}
		scaled_percentages[i] = scaled
	}

	scaled_total, err := royalty.ScalePercentage(total_percentage)
	if err != nil {
		return precondition_failed(fmt.Errorf("royalty.ScalePercentage of '%s': %w", total_percentage, err)), nil
	}

	if err := royalty.ValidateShares(scaled_percentages, scaled_total); err != nil {
		return precondition_failed(fmt.Errorf("royalty.ValidateShares: %w", err)), nil
	}

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

	// the lifecycle gate: the royalty configuration follows the mint
	if !market_resource.Status.CanAdvanceTo(resource.ROYALTYSET) {
		return precondition_failed(fmt.Errorf("the resource %d status is '%s', the royalties are configured on a minted resource",
			resource_id, market_resource.Status.String())), nil
	}

	royalty_address := market_collection.Deployment.RoyaltyAddress

	granted, err := o.checkRole(ctx, royalty_address, role.ROYALTY_ADMIN_ROLE)
	if err != nil {
		return role_denied(err), nil
	}
	if !granted {
		return role_denied(fmt.Errorf("the %s account doesn't hold the royalty admin role", o.signer.Address().Hex())), nil
	}

	receivers := make([]eth_common.Address, len(recipients))
	for i, recipient := range recipients {
		receivers[i] = eth_common.HexToAddress(recipient)
	}
	big_percentages := make([]*big.Int, len(scaled_percentages))
	for i, scaled := range scaled_percentages {
		big_percentages[i] = new(big.Int).SetUint64(scaled)
	}

	data, err := o.royalty_abi.Pack("setRoyalty",
		eth_common.HexToAddress(market_collection.ContractAddress),
		market_resource.TokenId,
		receivers,
		big_percentages,
		new(big.Int).SetUint64(scaled_total),
	)
	if err != nil {
		return nil, fmt.Errorf("royalty_abi.Pack: %w", err)
	}

	outcome := o.pipeline.Run(ctx, pipeline.Call{
		To:           eth_common.HexToAddress(royalty_address),
		Data:         data,
		FunctionName: "setRoyalty",
	})
	if !outcome.Ok() {
		return &Result{Outcome: outcome, Resource: market_resource}, nil
	}

	beneficiaries := make([]*royalty.Beneficiary, len(recipients))
	for i, recipient := range recipients {
		beneficiaries[i] = &royalty.Beneficiary{
			ResourceId:      resource_id,
			Recipient:       recipient,
			Percentage:      scaled_percentages[i],
			TotalPercentage: scaled_total,
		}
	}

	record := transaction.New(o.network.Id, "setRoyalty", outcome.TxHash.Hex(), uint64(time.Now().Unix())).
		AddParties(o.signer.Address().Hex(), royalty_address, market_collection.ContractAddress)

	report := o.synchronizer.Sync(sync.Effects{
		ResourceId:    resource_id,
		NewStatus:     resource.ROYALTYSET,
		Record:        record,
		Beneficiaries: beneficiaries,
	})

	return &Result{
		Outcome:  outcome,
		Sync:     report,
		Resource: o.snapshot(resource_id),
	}, nil
}
