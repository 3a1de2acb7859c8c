// Market is the transaction orchestration service of the NFT marketplace.
//
// It receives the marketplace commands over the reply controller,
// runs them through the simulate, sign and submit, confirm pipeline
// against the EVM ledger, then mirrors the confirmed effects into
// the off-chain Mysql database.
//
// The workflows are:
//   - list_nft to put the resource on the marketplace
//   - configure_royalties to set the resale beneficiaries
//   - approve_for_transfer to let the marketplace move the custodied token
//   - transfer_ownership to hand the custodied token over
//
// The security layers include two parts:
//   - the on-chain role gates checked before every submission
//   - vault to keep the manager account key
package main

import (
	"github.com/blocklords/market/app/configuration"
	"github.com/blocklords/market/app/controller"
	"github.com/blocklords/market/app/log"
	"github.com/blocklords/market/blockchain/evm/client"
	"github.com/blocklords/market/blockchain/evm/signer"
	"github.com/blocklords/market/blockchain/network"
	"github.com/blocklords/market/common/data_type/key_value"
	"github.com/blocklords/market/db"
	"github.com/blocklords/market/market/handler"
	"github.com/blocklords/market/market/pipeline"
	"github.com/blocklords/market/market/role"
	"github.com/blocklords/market/market/sync"
	"github.com/blocklords/market/market/workflow"
	"github.com/blocklords/market/security/vault"

	eth_common "github.com/ethereum/go-ethereum/common"
)

// ServiceConfigurations are the parameters of the service itself.
var ServiceConfigurations = configuration.DefaultConfig{
	Title: "Market",
	Parameters: key_value.New(map[string]interface{}{
		"MARKET_PORT":          "4010",
		"MARKET_NETWORK_ID":    "1",
		"MARKET_ADMIN_ADDRESS": nil,
		"MARKET_MANAGER_KEY":   nil,
	}),
}

func main() {
	logger, err := log.New("main", log.WITH_TIMESTAMP)
	if err != nil {
		log.Fatal("log.New(`main`)", "error", err)
	}

	logger.Info("Load app configuration")
	app_config, err := configuration.NewAppConfig(logger)
	if err != nil {
		logger.Fatal("configuration.NewAppConfig", "error", err)
	}

	app_config.SetDefaults(ServiceConfigurations)
	app_config.SetDefaults(db.DatabaseConfigurations)
	app_config.SetDefaults(pipeline.PipelineConfigurations)

	if !app_config.Exist("MARKET_ADMIN_ADDRESS") {
		logger.Fatal("missing 'MARKET_ADMIN_ADDRESS' environment variable")
	}
	admin_address := eth_common.HexToAddress(app_config.GetString("MARKET_ADMIN_ADDRESS"))

	manager_key := loadManagerKey(app_config, logger)

	logger.Info("Connect to the database")
	database_parameters, err := db.GetParameters(app_config)
	if err != nil {
		logger.Fatal("db.GetParameters", "error", err)
	}
	database, err := db.Open(logger, database_parameters, db.GetDefaultCredentials(app_config))
	if err != nil {
		logger.Fatal("db.Open", "error", err)
	}
	defer func() { _ = database.Close() }()

	logger.Info("Connect to the blockchain node")
	networks, err := network.GetNetworks(app_config, network.EVM)
	if err != nil {
		logger.Fatal("network.GetNetworks", "error", err)
	}
	net, err := networks.Get(app_config.GetString("MARKET_NETWORK_ID"))
	if err != nil {
		logger.Fatal("networks.Get", "error", err)
	}
	evm_client, err := client.New(net)
	if err != nil {
		logger.Fatal("client.New", "error", err)
	}

	tx_signer, err := signer.NewFromHex(manager_key, evm_client)
	if err != nil {
		logger.Fatal("signer.NewFromHex", "error", err)
	}
	logger.Info("The manager account", "address", tx_signer.Address().Hex())

	checker, err := role.NewChecker(evm_client)
	if err != nil {
		logger.Fatal("role.NewChecker", "error", err)
	}

	tx_pipeline := pipeline.New(
		evm_client,
		tx_signer,
		evm_client,
		pipeline.NewLogReporter(logger),
		pipeline.NewConfig(app_config),
	)

	synchronizer := sync.New(sync.NewMysqlStore(database), logger)

	orchestrator, err := workflow.New(
		net,
		checker,
		tx_pipeline,
		synchronizer,
		workflow.NewDbLoader(database),
		tx_signer,
		admin_address,
		logger,
	)
	if err != nil {
		logger.Fatal("workflow.New", "error", err)
	}

	reply, err := controller.NewReply(app_config.GetString("MARKET_PORT"), logger)
	if err != nil {
		logger.Fatal("controller.NewReply", "error", err)
	}

	err = reply.Run(handler.New(orchestrator).CommandHandlers())
	if err != nil {
		logger.Fatal("controller.Run", "error", err)
	}
}

// loadManagerKey fetches the manager account key from the vault.
// With the --plain argument the key is read from the environment
// instead, that's for the local development only.
func loadManagerKey(app_config *configuration.Config, logger *log.Logger) string {
	if app_config.Plain {
		logger.Warn("App is running in an unsafe environment, the manager key is read from the environment")

		if !app_config.Exist("MARKET_MANAGER_KEY") {
			logger.Fatal("missing 'MARKET_MANAGER_KEY' environment variable")
		}
		return app_config.GetString("MARKET_MANAGER_KEY")
	}

	app_config.SetDefaults(vault.VaultConfigurations)

	logger.Info("Security enabled, fetch the manager key from the vault")
	vault_client, err := vault.New(app_config, logger)
	if err != nil {
		logger.Fatal("vault.New", "error", err)
	}
	go vault_client.PeriodicallyRenewLeases()

	manager_key, err := vault_client.GetSignerKey()
	if err != nil {
		logger.Fatal("vault.GetSignerKey", "error", err)
	}

	return manager_key
}
