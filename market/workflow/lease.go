package workflow

import (
	"errors"
	go_sync "sync"
)

// ErrLeaseHeld is returned when another pipeline is in flight
// for the same resource.
var ErrLeaseHeld = errors.New("another transaction is in flight for this resource")

// Leases is the per-resource mutual exclusion.
//
// At most one pipeline may be in flight for one resource. Two pipelines
// racing for the same resource could both pass the simulation and both
// submit, corrupting the record store even when the ledger serializes
// them correctly. The lease is held for the whole pipeline run and
// released on any terminal outcome, the timeout included.
type Leases struct {
	mutex go_sync.Mutex
	held  map[uint64]bool
}

// NewLeases creates the empty lease table
func NewLeases() *Leases {
	return &Leases{
		held: make(map[uint64]bool),
	}
}

// TryAcquire the lease of the resource. Fails fast with ErrLeaseHeld,
// it never blocks waiting for the other pipeline.
func (leases *Leases) TryAcquire(resource_id uint64) error {
	leases.mutex.Lock()
	defer leases.mutex.Unlock()

	if leases.held[resource_id] {
		return ErrLeaseHeld
	}

	leases.held[resource_id] = true
	return nil
}

// Release the lease of the resource
func (leases *Leases) Release(resource_id uint64) {
	leases.mutex.Lock()
	defer leases.mutex.Unlock()

	delete(leases.held, resource_id)
}
