package resource

import (
	"database/sql"
	"fmt"
	"math/big"

	"github.com/blocklords/market/db"
)

// Get returns the resource by its id
func Get(con *db.Database, id uint64) (*Resource, error) {
	query := `
	SELECT
		id,
		collection_id,
		token_id,
		status,
		owner_address,
		image_url,
		certificate_url
	FROM
		market_resources
	WHERE
		id = ? `

	var r Resource
	var raw_token_id sql.NullString
	var raw_status string

	err := con.Connection.QueryRow(query, id).Scan(&r.Id, &r.CollectionId, &raw_token_id, &raw_status, &r.OwnerAddress, &r.ImageUrl, &r.CertificateUrl)
	if err != nil {
		return nil, fmt.Errorf("resource %d QueryRow: %w", id, err)
	}

	status, err := NewStatus(raw_status)
	if err != nil {
		return nil, fmt.Errorf("resource %d NewStatus: %w", id, err)
	}
	r.Status = status

	if raw_token_id.Valid {
		token_id, ok := new(big.Int).SetString(raw_token_id.String, 10)
		if !ok {
			return nil, fmt.Errorf("resource %d has invalid token id '%s'", id, raw_token_id.String)
		}
		r.TokenId = token_id
	}

	return &r, nil
}

// SetStatus updates the resource lifecycle status.
//
// The monotonic invariant is enforced by the caller, the offchain
// synchronizer, after a confirmed on-chain effect.
func SetStatus(con *db.Database, id uint64, status Status) error {
	_, err := con.Connection.Exec(`UPDATE market_resources SET status = ? WHERE id = ?`, status.String(), id)
	if err != nil {
		return fmt.Errorf("resource %d status update: %w", id, err)
	}

	return nil
}
