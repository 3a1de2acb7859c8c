package collection

import (
	"fmt"

	"github.com/blocklords/market/db"
)

// Get returns the collection by its id, along with its deployment
func Get(con *db.Database, id uint64) (*Collection, error) {
	query := `
	SELECT
		c.id,
		c.name,
		c.contract_address,
		d.network_id,
		d.factory_address,
		d.marketplace_address,
		d.royalty_address,
		d.active
	FROM
		market_collections AS c
	INNER JOIN
		market_deployments AS d ON d.id = c.deployment_id
	WHERE
		c.id = ? `

	var c Collection

	err := con.Connection.QueryRow(query, id).Scan(
		&c.Id,
		&c.Name,
		&c.ContractAddress,
		&c.Deployment.NetworkId,
		&c.Deployment.FactoryAddress,
		&c.Deployment.MarketplaceAddress,
		&c.Deployment.RoyaltyAddress,
		&c.Deployment.Active,
	)
	if err != nil {
		return nil, fmt.Errorf("collection %d QueryRow: %w", id, err)
	}

	return &c, nil
}
