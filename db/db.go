// The db package handles all the database operations.
// Note that for now it uses Mysql as a hardcoded data
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blocklords/market/app/configuration"
	"github.com/blocklords/market/app/log"
	"github.com/blocklords/market/common/data_type/key_value"
	_ "github.com/go-sql-driver/mysql"
)

type DatabaseParameters struct {
	hostname string
	port     string
	name     string
	timeout  time.Duration
}

// DatabaseCredentials is a set of credentials, either the static defaults
// or the dynamic ones retrieved from Vault
type DatabaseCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Database struct {
	Connection      *sql.DB
	connectionMutex sync.Mutex
	parameters      DatabaseParameters
	logger          *log.Logger
}

// The configuration parameters
// The values are the default values if it wasn't provided by the user
// Set the default value to nil, if the parameter is required from the user
var DatabaseConfigurations = configuration.DefaultConfig{
	Title: "Database",
	Parameters: key_value.New(map[string]interface{}{
		"MARKET_DATABASE_HOST":     "localhost",
		"MARKET_DATABASE_PORT":     "3306",
		"MARKET_DATABASE_NAME":     "art_market",
		"MARKET_DATABASE_TIMEOUT":  uint64(10),
		"MARKET_DATABASE_USERNAME": "root",
		"MARKET_DATABASE_PASSWORD": "tiger",
	}),
}

// Database parameters fetched from the environment variable.
// It loads parameters such as:
// - host
// - port
// - name
func GetParameters(app_config *configuration.Config) (*DatabaseParameters, error) {
	timeout := app_config.GetUint64("MARKET_DATABASE_TIMEOUT")
	if timeout > 3600 {
		return nil, errors.New("the 'MARKET_DATABASE_TIMEOUT' value can not be greater than 3600 (seconds)")
	} else if timeout == 0 {
		return nil, errors.New("the 'MARKET_DATABASE_TIMEOUT' can not be zero")
	}

	return &DatabaseParameters{
		hostname: app_config.GetString("MARKET_DATABASE_HOST"),
		port:     app_config.GetString("MARKET_DATABASE_PORT"),
		name:     app_config.GetString("MARKET_DATABASE_NAME"),
		timeout:  time.Duration(timeout) * time.Second,
	}, nil
}

func GetDefaultCredentials(app_config *configuration.Config) DatabaseCredentials {
	return DatabaseCredentials{
		Username: app_config.GetString("MARKET_DATABASE_USERNAME"),
		Password: app_config.GetString("MARKET_DATABASE_PASSWORD"),
	}
}

// Open establishes a database connection with the given credentials
func Open(logger *log.Logger, parameters *DatabaseParameters, credentials DatabaseCredentials) (*Database, error) {
	database := &Database{
		Connection:      nil,
		connectionMutex: sync.Mutex{},
		parameters:      *parameters,
		logger:          logger.Child("database"),
	}

	ctx := context.TODO()

	// establish the first connection
	if err := database.Reconnect(ctx, credentials); err != nil {
		return nil, err
	}

	return database, nil
}

func (db *Database) Timeout() time.Duration {
	return db.parameters.timeout
}

// Reconnect will be called periodically to refresh the database connection
// since the dynamic credentials expire after some time, it will:
//  1. construct a connection string using the given credentials
//  2. establish a database connection
//  3. close & replace the existing connection with the new one behind a mutex
func (db *Database) Reconnect(ctx context.Context, credentials DatabaseCredentials) error {
	ctx, cancelContextFunc := context.WithTimeout(ctx, db.parameters.timeout)
	defer cancelContextFunc()

	db.logger.Info(
		"connecting to `mysql` database",
		"protocol", "tcp",
		"database", db.parameters.name,
		"host", db.parameters.hostname,
		"port", db.parameters.port,
		"username", credentials.Username,
		"timeout", db.parameters.timeout.String(),
	)

	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?timeout=%s",
		credentials.Username,
		credentials.Password,
		db.parameters.hostname,
		db.parameters.port,
		db.parameters.name,
		db.parameters.timeout.String(),
	)

	connection, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}

	// wait until the database is ready or timeout expires
	for {
		err = connection.Ping()
		if err == nil {
			break
		}
		select {
		case <-time.After(500 * time.Millisecond):
			continue
		case <-ctx.Done():
			return fmt.Errorf("database connection test failed: %w", err)
		}
	}

	db.closeReplaceConnection(connection)

	db.logger.Info("connecting to the database: success!", "database", db.parameters.name)

	return nil
}

func (db *Database) closeReplaceConnection(new *sql.DB) {
	/* */ db.connectionMutex.Lock()
	defer db.connectionMutex.Unlock()

	// close the existing connection, if exists
	if db.Connection != nil {
		_ = db.Connection.Close()
	}

	// replace with a new connection
	db.Connection = new
}

func (db *Database) Close() error {
	/* */ db.connectionMutex.Lock()
	defer db.connectionMutex.Unlock()

	if db.Connection != nil {
		return db.Connection.Close()
	}

	return nil
}
