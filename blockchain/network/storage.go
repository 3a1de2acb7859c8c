// The storage.go file loads the network parameters from application environment.
//
// IMPORTANT! networks are not stored in the database! On environment variables only
package network

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/blocklords/market/app/configuration"
)

const (
	MARKET_NETWORKS = "MARKET_NETWORKS"
)

// Returns list of the blockchain networks from the app configuration.
//
// The app_config is passed explicitly, so tests can run
// multiple configurations concurrently.
func GetNetworks(app_config *configuration.Config, network_type NetworkType) (Networks, error) {
	app_config.SetDefault(MARKET_NETWORKS, DefaultConfiguration())

	env := app_config.GetString(MARKET_NETWORKS)
	if len(env) == 0 {
		return nil, errors.New("the environment variable 'MARKET_NETWORKS' is empty")
	}

	var raw_networks []map[string]interface{}
	decoder := json.NewDecoder(strings.NewReader(env))
	decoder.UseNumber()

	if err := decoder.Decode(&raw_networks); err != nil {
		return nil, errors.New("invalid json for MARKET_NETWORKS " + err.Error())
	}

	networks := make([]*Network, 0)

	for _, raw := range raw_networks {
		network, err := New(raw)
		if err != nil {
			return nil, errors.New("convert json to network " + err.Error())
		}

		if network_type == ALL || network_type == network.Type {
			networks = append(networks, network)
		}
	}

	return networks, nil
}
