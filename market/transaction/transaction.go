// Package transaction keeps the append-only audit trail
// between the ledger and the record store.
package transaction

// Record is one audit entry per confirmed on-chain call.
// Never updated, never deleted. The transaction hash makes it unique,
// which is what makes the offchain synchronization idempotent.
type Record struct {
	NetworkId       string `json:"network_id"`
	FunctionName    string `json:"function_name"`
	TransactionHash string `json:"transaction_hash"`
	TxFrom          string `json:"tx_from"`
	TxTo            string `json:"tx_to"`
	Price           string `json:"price"` // base units, decimal digits
	ContractAddress string `json:"contract_address"`
	Timestamp       uint64 `json:"timestamp"`
}

// New audit record for the confirmed call
func New(network_id string, function_name string, transaction_hash string, timestamp uint64) *Record {
	return &Record{
		NetworkId:       network_id,
		FunctionName:    function_name,
		TransactionHash: transaction_hash,
		Timestamp:       timestamp,
	}
}

// AddParties sets the addresses of the call
func (record *Record) AddParties(from string, to string, contract_address string) *Record {
	record.TxFrom = from
	record.TxTo = to
	record.ContractAddress = contract_address

	return record
}

// AddPrice sets the price of the call in the base units
func (record *Record) AddPrice(price string) *Record {
	record.Price = price

	return record
}
