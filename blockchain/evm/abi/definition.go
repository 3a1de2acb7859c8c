package abi

// The json definitions of the deployed smartcontract interfaces.
// Only the functions that the backoffice calls are kept here.

// Marketplace smartcontract interface
const Marketplace = `[
	{"type": "function", "name": "listItem", "stateMutability": "nonpayable",
		"inputs": [
			{"name": "nft", "type": "address"},
			{"name": "tokenId", "type": "uint256"},
			{"name": "price", "type": "uint256"}
		],
		"outputs": []},
	{"type": "function", "name": "hasRole", "stateMutability": "view",
		"inputs": [
			{"name": "role", "type": "bytes32"},
			{"name": "account", "type": "address"}
		],
		"outputs": [{"name": "", "type": "bool"}]},
	{"type": "function", "name": "owner", "stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "address"}]}
]`

// Royalty manager smartcontract interface
const Royalty = `[
	{"type": "function", "name": "setRoyalty", "stateMutability": "nonpayable",
		"inputs": [
			{"name": "nft", "type": "address"},
			{"name": "tokenId", "type": "uint256"},
			{"name": "receivers", "type": "address[]"},
			{"name": "percentages", "type": "uint96[]"},
			{"name": "totalPercentage", "type": "uint96"}
		],
		"outputs": []},
	{"type": "function", "name": "hasRole", "stateMutability": "view",
		"inputs": [
			{"name": "role", "type": "bytes32"},
			{"name": "account", "type": "address"}
		],
		"outputs": [{"name": "", "type": "bool"}]}
]`

// Collection nft smartcontract interface
const Nft = `[
	{"type": "function", "name": "approve", "stateMutability": "nonpayable",
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "tokenId", "type": "uint256"}
		],
		"outputs": []},
	{"type": "function", "name": "transferFrom", "stateMutability": "nonpayable",
		"inputs": [
			{"name": "from", "type": "address"},
			{"name": "to", "type": "address"},
			{"name": "tokenId", "type": "uint256"}
		],
		"outputs": []},
	{"type": "function", "name": "ownerOf", "stateMutability": "view",
		"inputs": [{"name": "tokenId", "type": "uint256"}],
		"outputs": [{"name": "", "type": "address"}]},
	{"type": "function", "name": "hasRole", "stateMutability": "view",
		"inputs": [
			{"name": "role", "type": "bytes32"},
			{"name": "account", "type": "address"}
		],
		"outputs": [{"name": "", "type": "bool"}]}
]`
