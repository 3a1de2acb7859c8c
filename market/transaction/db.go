package transaction

import (
	"fmt"

	"github.com/blocklords/market/db"
)

// Save appends the audit record.
//
// The transaction hash column is unique, and the insert ignores the
// duplicates. Re-saving a record of an already recorded transaction
// is a no-op, which keeps the synchronization idempotent.
func Save(con *db.Database, record *Record) error {
	_, err := con.Connection.Exec(`INSERT IGNORE INTO market_transactions
	(network_id, function_name, transaction_hash, tx_from, tx_to, price, contract_address, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.NetworkId, record.FunctionName, record.TransactionHash, record.TxFrom, record.TxTo, record.Price, record.ContractAddress, record.Timestamp)
	if err != nil {
		return fmt.Errorf("transaction record insert of %s: %w", record.TransactionHash, err)
	}

	return nil
}

// Exists returns whether the transaction hash was recorded already
func Exists(con *db.Database, transaction_hash string) (bool, error) {
	query := `SELECT COUNT(transaction_hash) FROM market_transactions WHERE transaction_hash = ? `

	var amount uint
	err := con.Connection.QueryRow(query, transaction_hash).Scan(&amount)
	if err != nil {
		return false, fmt.Errorf("transaction record count of %s: %w", transaction_hash, err)
	}

	return amount > 0, nil
}

// GetAll returns the audit records of the contract address
func GetAll(con *db.Database, contract_address string) ([]*Record, error) {
	query := `
	SELECT
		network_id,
		function_name,
		transaction_hash,
		tx_from,
		tx_to,
		price,
		contract_address,
		timestamp
	FROM
		market_transactions
	WHERE
		contract_address = ?
	ORDER BY
		timestamp ASC `

	rows, err := con.Connection.Query(query, contract_address)
	if err != nil {
		return nil, fmt.Errorf("transaction records of %s: %w", contract_address, err)
	}
	defer rows.Close()

	var records []*Record

	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.NetworkId, &r.FunctionName, &r.TransactionHash, &r.TxFrom, &r.TxTo, &r.Price, &r.ContractAddress, &r.Timestamp); err != nil {
			return nil, err
		}

		records = append(records, &r)
	}

	return records, nil
}
