package royalty

import (
	"fmt"

	"github.com/blocklords/market/db"
)

// Save the beneficiary row
func Save(con *db.Database, b *Beneficiary) error {
	_, err := con.Connection.Exec(`INSERT INTO market_beneficiaries
	(resource_id, recipient, percentage, total_percentage)
	VALUES (?, ?, ?, ?)`, b.ResourceId, b.Recipient, b.Percentage, b.TotalPercentage)
	if err != nil {
		return fmt.Errorf("beneficiary insert for resource %d recipient %s: %w", b.ResourceId, b.Recipient, err)
	}

	return nil
}

// GetAll returns the beneficiaries of the resource
func GetAll(con *db.Database, resource_id uint64) ([]*Beneficiary, error) {
	query := `
	SELECT
		resource_id,
		recipient,
		percentage,
		total_percentage
	FROM
		market_beneficiaries
	WHERE
		resource_id = ? `

	rows, err := con.Connection.Query(query, resource_id)
	if err != nil {
		return nil, fmt.Errorf("beneficiaries of resource %d: %w", resource_id, err)
	}
	defer rows.Close()

	var beneficiaries []*Beneficiary

	for rows.Next() {
		var b Beneficiary
		if err := rows.Scan(&b.ResourceId, &b.Recipient, &b.Percentage, &b.TotalPercentage); err != nil {
			return nil, err
		}

		beneficiaries = append(beneficiaries, &b)
	}

	return beneficiaries, nil
}
