// Package database opens per-request MySQL connections and turns query
// results into spreadsheet-ready value grids.
package database

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
)

const (
	DefaultConnectTimeout = 60 * time.Second
	DefaultPort           = 3306
)

// Target identifies the database a relay reads from.
type Target struct {
	Host     string
	User     string
	Password string
	Database string
}

// ConnectionError reports a database that could not be reached or refused
// the supplied credentials.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return e.Err.Error() }

func (e *ConnectionError) Unwrap() error { return e.Err }

// ConnectorOptions tunes how connections are opened.
type ConnectorOptions struct {
	ConnectTimeout time.Duration
	DefaultPort    int
}

// Connector opens one MySQL connection per call.
type Connector struct {
	options ConnectorOptions
	open    func(cfg *mysqldriver.Config) (*sql.DB, error)
	logger  zerolog.Logger
}

// NewConnector returns a Connector dialing with options. Zero options fall
// back to DefaultConnectTimeout and DefaultPort.
func NewConnector(options ConnectorOptions, logger zerolog.Logger) *Connector {
	if options.ConnectTimeout <= 0 {
		options.ConnectTimeout = DefaultConnectTimeout
	}
	if options.DefaultPort <= 0 {
		options.DefaultPort = DefaultPort
	}
	return &Connector{
		options: options,
		open:    openMySQL,
		logger:  logger.With().Str("component", "db-connector").Logger(),
	}
}

func openMySQL(cfg *mysqldriver.Config) (*sql.DB, error) {
	connector, err := mysqldriver.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

// Config builds the driver configuration for target.
func (c *Connector) Config(target Target) *mysqldriver.Config {
	addr := target.Host
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(c.options.DefaultPort))
	}

	cfg := mysqldriver.NewConfig()
	cfg.User = target.User
	cfg.Passwd = target.Password
	cfg.Net = "tcp"
	cfg.Addr = addr
	cfg.DBName = target.Database
	cfg.AllowNativePasswords = true
	cfg.ParseTime = true
	cfg.Timeout = c.options.ConnectTimeout
	return cfg
}

// Connect opens a single connection to target and verifies it with a ping.
// The caller owns the returned handle and must close it.
func (c *Connector) Connect(ctx context.Context, target Target) (*sql.DB, error) {
	cfg := c.Config(target)

	db, err := c.open(cfg)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, c.options.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		c.logger.Warn().Err(err).
			Str("addr", cfg.Addr).
			Str("database", cfg.DBName).
			Msg("Database unreachable")
		return nil, &ConnectionError{Err: err}
	}

	c.logger.Debug().Str("addr", cfg.Addr).Str("database", cfg.DBName).Msg("Connected")
	return db, nil
}
