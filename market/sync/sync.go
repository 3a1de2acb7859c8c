// Package sync mirrors the confirmed on-chain effects into the record store.
//
// The on-chain effect is already permanent when this package runs.
// Each store mutation is therefore independent and best-effort: a failed
// write is logged and reported, never retried automatically, and it never
// rolls back the other writes nor the on-chain call itself.
package sync

import (
	go_sync "sync"

	"github.com/blocklords/market/app/log"
	"github.com/blocklords/market/market/resource"
	"github.com/blocklords/market/market/royalty"
	"github.com/blocklords/market/market/transaction"
)

// Store is the narrow surface of the persisted record store
// that the synchronizer mutates. Each method is independently
// callable and individually failable.
type Store interface {
	UpdateResourceStatus(id uint64, status resource.Status) error
	AppendTransactionRecord(record *transaction.Record) error
	CreateBeneficiary(beneficiary *royalty.Beneficiary) error
	TransactionRecorded(transaction_hash string) (bool, error)
}

// Effects are the workflow's declared store mutations
// attributed to one confirmed receipt.
//
// NewStatus is empty for the workflows that don't advance
// the lifecycle, such as the approval.
type Effects struct {
	ResourceId    uint64
	NewStatus     resource.Status
	Record        *transaction.Record
	Beneficiaries []*royalty.Beneficiary
}

// BeneficiaryFailure is one beneficiary row that couldn't be written.
// The rows written before and after it are unaffected.
type BeneficiaryFailure struct {
	Recipient string
	Err       error
}

// Report of one synchronization run.
//
// The report is separate from the on-chain outcome on purpose:
// "confirmed on-chain but recording failed" is an actionable warning
// for a manual reconciliation, not an overall failure.
type Report struct {
	AlreadyRecorded     bool
	StatusUpdated       bool
	RecordAppended      bool
	BeneficiariesSaved  []string
	BeneficiaryFailures []BeneficiaryFailure
	StatusErr           error
	RecordErr           error
}

// Ok is whether every mutation of the run committed
func (report *Report) Ok() bool {
	return report.StatusErr == nil && report.RecordErr == nil && len(report.BeneficiaryFailures) == 0
}

// NeedsReconciliation is whether the store diverged from the ledger
func (report *Report) NeedsReconciliation() bool {
	return !report.AlreadyRecorded && !report.Ok()
}

// Synchronizer applies the effects to the store.
type Synchronizer struct {
	store  Store
	logger *log.Logger
}

// New Synchronizer over the store
func New(store Store, logger *log.Logger) *Synchronizer {
	return &Synchronizer{
		store:  store,
		logger: logger.Child("sync"),
	}
}

// Sync applies the effects of the confirmed transaction.
//
// Idempotent with respect to the transaction hash: when the hash was
// recorded already, nothing is written again and the report says so.
// The beneficiary rows are written concurrently, each failure is
// captured on its own.
func (s *Synchronizer) Sync(effects Effects) *Report {
	report := &Report{}

	recorded, err := s.store.TransactionRecorded(effects.Record.TransactionHash)
	if err != nil {
		// can't prove it's new, write the record anyway: the store
		// dedupes on the hash, so the worst case is a no-op insert
		s.logger.Warn("recorded check failed, continuing", "tx_hash", effects.Record.TransactionHash, "error", err)
	} else if recorded {
		s.logger.Info("transaction recorded already, skipping", "tx_hash", effects.Record.TransactionHash)
		report.AlreadyRecorded = true
		return report
	}

	if len(effects.NewStatus) > 0 {
		if err := s.store.UpdateResourceStatus(effects.ResourceId, effects.NewStatus); err != nil {
			s.logger.Error("resource status update failed", "resource_id", effects.ResourceId, "status", effects.NewStatus.String(), "error", err)
			report.StatusErr = err
		} else {
			report.StatusUpdated = true
		}
	}

	if err := s.store.AppendTransactionRecord(effects.Record); err != nil {
		s.logger.Error("audit record append failed", "tx_hash", effects.Record.TransactionHash, "error", err)
		report.RecordErr = err
	} else {
		report.RecordAppended = true
	}

	if len(effects.Beneficiaries) > 0 {
		s.sync_beneficiaries(effects.Beneficiaries, report)
	}

	return report
}

// fan out the independent beneficiary writes, bounded by the recipient count
func (s *Synchronizer) sync_beneficiaries(beneficiaries []*royalty.Beneficiary, report *Report) {
	var wait_group go_sync.WaitGroup
	var mutex go_sync.Mutex

	for _, beneficiary := range beneficiaries {
		wait_group.Add(1)

		go func(beneficiary *royalty.Beneficiary) {
			defer wait_group.Done()

			err := s.store.CreateBeneficiary(beneficiary)

			mutex.Lock()
			defer mutex.Unlock()

			if err != nil {
				s.logger.Error("beneficiary row failed", "recipient", beneficiary.Recipient, "error", err)
				report.BeneficiaryFailures = append(report.BeneficiaryFailures, BeneficiaryFailure{
					Recipient: beneficiary.Recipient,
					Err:       err,
				})
			} else {
				report.BeneficiariesSaved = append(report.BeneficiariesSaved, beneficiary.Recipient)
			}
		}(beneficiary)
	}

	wait_group.Wait()
}
