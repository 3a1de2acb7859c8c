// Package resource defines the tokenizable artwork unit
// and its lifecycle status machine.
package resource

import (
	"fmt"
	"math/big"
)

// Status of the resource in its lifecycle.
//
// The status only advances forward, never regresses.
// Each forward transition is gated by a confirmed on-chain effect.
type Status string

const (
	CREATED    Status = "created"
	MINTED     Status = "minted"
	ROYALTYSET Status = "royaltyset"
	LISTED     Status = "listed"
	SOLD       Status = "sold"
)

// the forward order of the lifecycle
var status_rank = map[Status]int{
	CREATED:    0,
	MINTED:     1,
	ROYALTYSET: 2,
	LISTED:     3,
	SOLD:       4,
}

// NewStatus from given string
func NewStatus(status string) (Status, error) {
	new_status := Status(status)
	if !new_status.valid() {
		return new_status, fmt.Errorf("unsupported resource status %s", status)
	}

	return new_status, nil
}

func (status Status) valid() bool {
	_, ok := status_rank[status]
	return ok
}

// String format of Status
func (status Status) String() string {
	return string(status)
}

// Whether the transition from this status to the next one moves forward.
// The status machine is monotonic, a backward transition is never allowed.
func (status Status) CanAdvanceTo(next Status) bool {
	current_rank, ok := status_rank[status]
	if !ok {
		return false
	}
	next_rank, ok := status_rank[next]
	if !ok {
		return false
	}

	return next_rank == current_rank+1
}

// Resource is one artwork instance tokenized on the ledger.
//
// TokenId is nil until the artwork is minted.
// The status is mutated exclusively by the offchain synchronizer
// after a confirmed on-chain effect.
type Resource struct {
	Id             uint64   `json:"id"`
	CollectionId   uint64   `json:"collection_id"`
	TokenId        *big.Int `json:"token_id,omitempty"`
	Status         Status   `json:"status"`
	OwnerAddress   string   `json:"owner_address"`
	ImageUrl       string   `json:"image_url"`
	CertificateUrl string   `json:"certificate_url"`
}

// Whether the resource was minted on the ledger
func (r *Resource) Minted() bool {
	return r.TokenId != nil
}
