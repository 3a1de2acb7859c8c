// Package collection defines the deployed contract family
// that the resources belong to.
package collection

// Deployment keeps the addresses of the smartcontracts confirmed
// on a specific network. Immutable once the addresses are confirmed.
type Deployment struct {
	NetworkId          string `json:"network_id"`
	FactoryAddress     string `json:"factory_address"`
	MarketplaceAddress string `json:"marketplace_address"`
	RoyaltyAddress     string `json:"royalty_address"`
	Active             bool   `json:"active"`
}

// Collection of the resources. Many resources share one collection.
type Collection struct {
	Id              uint64     `json:"id"`
	Name            string     `json:"name"`
	ContractAddress string     `json:"contract_address"`
	Deployment      Deployment `json:"deployment"`
}
