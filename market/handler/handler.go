// Package handler binds the marketplace commands to the workflow
// orchestrator. Each command arrives as a message.Request over the
// reply controller and leaves as a message.Reply carrying the
// terminal outcome.
package handler

import (
	"context"
	"fmt"

	"github.com/blocklords/market/app/communication/message"
	"github.com/blocklords/market/app/controller"
	app_log "github.com/blocklords/market/app/log"
	"github.com/blocklords/market/common/data_type/key_value"
	"github.com/blocklords/market/market/workflow"
)

// command names
const (
	LIST_NFT             = "list_nft"
	CONFIGURE_ROYALTIES  = "configure_royalties"
	APPROVE_FOR_TRANSFER = "approve_for_transfer"
	TRANSFER_OWNERSHIP   = "transfer_ownership"
)

// Handler dispatches the marketplace commands to the orchestrator
type Handler struct {
	orchestrator *workflow.Orchestrator
}

// New handler around the orchestrator
func New(orchestrator *workflow.Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

// CommandHandlers registers every marketplace command
func (h *Handler) CommandHandlers() controller.CommandHandlers {
	return controller.EmptyHandlers().
		Add(LIST_NFT, h.onListNft).
		Add(CONFIGURE_ROYALTIES, h.onConfigureRoyalties).
		Add(APPROVE_FOR_TRANSFER, h.onApproveForTransfer).
		Add(TRANSFER_OWNERSHIP, h.onTransferOwnership)
}

func (h *Handler) onListNft(request message.Request, _ *app_log.Logger) message.Reply {
	resource_id, err := request.Parameters.GetUint64("resource_id")
	if err != nil {
		return message.Fail("parameters.GetUint64: " + err.Error())
	}
	price, err := request.Parameters.GetString("price")
	if err != nil {
		return message.Fail("parameters.GetString: " + err.Error())
	}

	result, err := h.orchestrator.ListNft(context.Background(), resource_id, price)
	if err != nil {
		return message.Fail(err.Error())
	}

	return resultReply(result)
}

func (h *Handler) onConfigureRoyalties(request message.Request, _ *app_log.Logger) message.Reply {
	resource_id, err := request.Parameters.GetUint64("resource_id")
	if err != nil {
		return message.Fail("parameters.GetUint64: " + err.Error())
	}
	recipients, err := request.Parameters.GetStringList("recipients")
	if err != nil {
		return message.Fail("parameters.GetStringList: " + err.Error())
	}
	percentages, err := request.Parameters.GetStringList("percentages")
	if err != nil {
		return message.Fail("parameters.GetStringList: " + err.Error())
	}
	total_percentage, err := request.Parameters.GetString("total_percentage")
	if err != nil {
		return message.Fail("parameters.GetString: " + err.Error())
	}

	result, err := h.orchestrator.ConfigureRoyalties(context.Background(), resource_id, recipients, percentages, total_percentage)
	if err != nil {
		return message.Fail(err.Error())
	}

	return resultReply(result)
}

func (h *Handler) onApproveForTransfer(request message.Request, _ *app_log.Logger) message.Reply {
	resource_id, err := request.Parameters.GetUint64("resource_id")
	if err != nil {
		return message.Fail("parameters.GetUint64: " + err.Error())
	}

	result, err := h.orchestrator.ApproveForTransfer(context.Background(), resource_id)
	if err != nil {
		return message.Fail(err.Error())
	}

	return resultReply(result)
}

func (h *Handler) onTransferOwnership(request message.Request, _ *app_log.Logger) message.Reply {
	resource_id, err := request.Parameters.GetUint64("resource_id")
	if err != nil {
		return message.Fail("parameters.GetUint64: " + err.Error())
	}
	to, err := request.Parameters.GetString("to")
	if err != nil {
		return message.Fail("parameters.GetString: " + err.Error())
	}

	result, err := h.orchestrator.TransferOwnership(context.Background(), resource_id, to)
	if err != nil {
		return message.Fail(err.Error())
	}

	return resultReply(result)
}

// resultReply flattens the workflow result into the reply parameters.
// A non SUCCESS outcome still replies with the OK status. The command
// itself was served, the outcome kind tells the caller what happened
// on the ledger.
func resultReply(result *workflow.Result) message.Reply {
	parameters := key_value.Empty().
		Set("outcome", result.Outcome.Kind.String()).
		Set("confirmed", result.Outcome.Ok())

	if result.Outcome.HasTxHash() {
		parameters.Set("transaction_hash", result.Outcome.TxHash.Hex())
	}
	if result.Outcome.Err != nil {
		parameters.Set("reason", result.Outcome.Err.Error())
	}
	if result.Resource != nil {
		parameters.Set("resource_status", result.Resource.Status.String())
	}
	if result.Sync != nil {
		parameters.
			Set("sync_ok", result.Sync.Ok()).
			Set("needs_reconciliation", result.Sync.NeedsReconciliation())
	}

	return message.Reply{
		Status:     message.OK,
		Message:    fmt.Sprintf("the %s outcome", result.Outcome.Kind),
		Parameters: parameters,
	}
}
