package sync

import (
	"github.com/blocklords/market/db"
	"github.com/blocklords/market/market/resource"
	"github.com/blocklords/market/market/royalty"
	"github.com/blocklords/market/market/transaction"
)

// MysqlStore is the record store over the mysql connection.
type MysqlStore struct {
	con *db.Database
}

// NewMysqlStore over the database connection
func NewMysqlStore(con *db.Database) *MysqlStore {
	return &MysqlStore{con: con}
}

func (store *MysqlStore) UpdateResourceStatus(id uint64, status resource.Status) error {
	return resource.SetStatus(store.con, id, status)
}

func (store *MysqlStore) AppendTransactionRecord(record *transaction.Record) error {
	return transaction.Save(store.con, record)
}

func (store *MysqlStore) CreateBeneficiary(beneficiary *royalty.Beneficiary) error {
	return royalty.Save(store.con, beneficiary)
}

func (store *MysqlStore) TransactionRecorded(transaction_hash string) (bool, error) {
	return transaction.Exists(store.con, transaction_hash)
}
