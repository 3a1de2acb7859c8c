package pipeline

import (
	"github.com/blocklords/market/app/log"
	"github.com/blocklords/market/common/data_type/key_value"
)

// Phase of the pipeline run.
type Phase string

const (
	SIMULATE Phase = "simulate"
	SUBMIT   Phase = "submit"
	CONFIRM  Phase = "confirm"
)

// String format of the Phase
func (phase Phase) String() string {
	return string(phase)
}

// ProgressReporter receives one event per phase transition
// and the terminal outcome that replaces the progress.
//
// The reporter is what the UI layer turns into the
// in-progress, success and failure notifications.
type ProgressReporter interface {
	Progress(phase Phase, detail key_value.KeyValue)
	Terminal(outcome Outcome)
}

// LogReporter prints the progress into the service logs.
// It's the default reporter when the caller didn't supply one.
type LogReporter struct {
	logger *log.Logger
}

// NewLogReporter over the logger
func NewLogReporter(logger *log.Logger) *LogReporter {
	return &LogReporter{logger: logger.Child("progress")}
}

func (reporter *LogReporter) Progress(phase Phase, detail key_value.KeyValue) {
	kv := make([]interface{}, 0, len(detail)*2+2)
	kv = append(kv, "phase", phase.String())
	for name, value := range detail {
		kv = append(kv, name, value)
	}

	reporter.logger.Info("pipeline progress", kv...)
}

func (reporter *LogReporter) Terminal(outcome Outcome) {
	if outcome.Ok() {
		reporter.logger.Info("pipeline confirmed", "tx_hash", outcome.TxHash.Hex())
		return
	}

	// gas may have been spent, these two are prominent
	if outcome.Kind == ONCHAIN_FAILURE || outcome.Kind == CONFIRMATION_TIMEOUT {
		reporter.logger.Error("pipeline failed after submission", "kind", outcome.Kind.String(), "tx_hash", outcome.TxHash.Hex(), "error", outcome.Err)
		return
	}

	// a user rejection is a normal action, nothing to alarm on
	if outcome.Kind == USER_REJECTED {
		reporter.logger.Info("pipeline cancelled by the user")
		return
	}

	reporter.logger.Warn("pipeline aborted", "kind", outcome.Kind.String(), "error", outcome.Err)
}
