package network

// Returns the default networks configuration for the service
func DefaultConfiguration() string {
	networks := `
	[
		{"id": "1", "providers": [
			{
				"url": "https://eth.llamarpc.com"
			}
		], "type": "evm"},
		{"id": "56", "providers": [
			{
				"url": "https://rpc.ankr.com/bsc"
			}
		], "type": "evm"},
		{"id": "1284", "providers": [
			{
				"url": "https://1rpc.io/glmr"
			},
			{
				"url": "https://rpc.ankr.com/moonbeam"
			}
		], "type": "evm"}
	]`

	return networks
}
