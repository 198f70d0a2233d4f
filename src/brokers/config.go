package brokers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/username/stonksoverwatch/backend/src/database"
	"github.com/username/stonksoverwatch/backend/src/logger"
	"github.com/username/stonksoverwatch/backend/src/security"
)

// Credentials holds per-broker secrets. Which fields matter depends on the
// broker; HasMinimalCredentials applies the broker-specific rules.
type Credentials struct {
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	TOTPSecret string `json:"totp_secret,omitempty"`
	APIKey     string `json:"api_key,omitempty"`
	APISecret  string `json:"api_secret,omitempty"`
	AccountID  string `json:"account_id,omitempty"`
}

// knownPlaceholders are values shipped in sample configuration files that
// must never be treated as real credentials.
var knownPlaceholders = map[string]bool{
	"your_username":   true,
	"your_password":   true,
	"your_api_key":    true,
	"your_api_secret": true,
	"changeme":        true,
	"xxx":             true,
}

func isPlaceholder(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if knownPlaceholders[v] {
		return true
	}
	return strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">")
}

// HasMinimalCredentials reports whether the credentials look usable for the
// given broker. This is an explicit plausibility check (length, placeholder
// rejection), not a cryptographic validation.
func (c Credentials) HasMinimalCredentials(broker string) bool {
	switch broker {
	case BrokerDeGiro:
		if isPlaceholder(c.Username) || isPlaceholder(c.Password) {
			return false
		}
		return len(c.Username) >= 3 && len(c.Password) >= 6
	case BrokerBitvavo:
		if isPlaceholder(c.APIKey) || isPlaceholder(c.APISecret) {
			return false
		}
		return len(c.APIKey) >= 16 && len(c.APISecret) >= 16
	case BrokerIBKR:
		if isPlaceholder(c.AccountID) {
			return false
		}
		return len(c.AccountID) >= 8
	default:
		return false
	}
}

// Config is the per-broker configuration record.
type Config struct {
	Broker                 string      `json:"broker"`
	Enabled                bool        `json:"enabled"`
	StartDate              string      `json:"start_date"` // YYYY-MM-DD, earliest data to import
	UpdateFrequencyMinutes int         `json:"update_frequency_minutes"`
	Credentials            Credentials `json:"credentials"`
}

// DefaultConfig returns a disabled configuration for a broker.
func DefaultConfig(broker string) Config {
	return Config{
		Broker:                 broker,
		Enabled:                false,
		UpdateFrequencyMinutes: 60,
	}
}

// ConfigFromJSON builds a Config from a JSON document, applying defaults
// for missing fields.
func ConfigFromJSON(broker string, data []byte) (Config, error) {
	cfg := DefaultConfig(broker)
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing configuration for %s: %w", broker, err)
	}
	cfg.Broker = broker
	if cfg.UpdateFrequencyMinutes <= 0 {
		cfg.UpdateFrequencyMinutes = 60
	}
	return cfg, nil
}

// IsEnabled reports whether the broker should be queried at all.
func (c Config) IsEnabled() bool {
	return c.Enabled
}

// ConfigStore loads and persists broker configuration. Rows live in the
// brokers_configuration table with the credentials blob encrypted at rest;
// a JSON file can override individual brokers (useful for development and
// the desktop build).
type ConfigStore struct {
	db           *sql.DB
	cipher       *security.Cipher
	overridePath string
}

// NewConfigStore wires a store over the given database and cipher.
// overridePath may be empty to disable JSON overrides.
func NewConfigStore(db *sql.DB, cipher *security.Cipher, overridePath string) *ConfigStore {
	return &ConfigStore{db: db, cipher: cipher, overridePath: overridePath}
}

// Load returns the configuration for one broker: the DB row (or defaults
// when absent) with any JSON-file override applied on top.
func (s *ConfigStore) Load(broker string) (Config, error) {
	cfg, err := s.loadFromDB(broker)
	if err != nil {
		return Config{}, err
	}
	overrides, err := s.loadOverrides()
	if err != nil {
		logger.L.Warn("Could not read brokers override file, using DB configuration only", "path", s.overridePath, "error", err)
		return cfg, nil
	}
	if raw, ok := overrides[broker]; ok {
		merged, err := ConfigFromJSON(broker, raw)
		if err != nil {
			return Config{}, err
		}
		return merged, nil
	}
	return cfg, nil
}

// LoadAll returns the configuration for every known broker.
func (s *ConfigStore) LoadAll() (map[string]Config, error) {
	out := make(map[string]Config)
	for _, broker := range []string{BrokerDeGiro, BrokerBitvavo, BrokerIBKR} {
		cfg, err := s.Load(broker)
		if err != nil {
			return nil, err
		}
		out[broker] = cfg
	}
	return out, nil
}

// IsEnabled implements the aggregator-side configuration gate.
func (s *ConfigStore) IsEnabled(broker string) bool {
	cfg, err := s.Load(broker)
	if err != nil {
		logger.L.Error("Could not load broker configuration", "broker", broker, "error", err)
		return false
	}
	return cfg.IsEnabled()
}

// Save upserts the configuration row, encrypting the credentials blob.
func (s *ConfigStore) Save(cfg Config) error {
	credsJSON, err := json.Marshal(cfg.Credentials)
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	encrypted, err := s.cipher.Encrypt(credsJSON)
	if err != nil {
		return fmt.Errorf("encrypting credentials: %w", err)
	}

	return database.WithRetry(func() error {
		_, err := s.db.Exec(`
			INSERT INTO brokers_configuration (broker, enabled, start_date, update_frequency_minutes, credentials)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(broker) DO UPDATE SET
				enabled = excluded.enabled,
				start_date = excluded.start_date,
				update_frequency_minutes = excluded.update_frequency_minutes,
				credentials = excluded.credentials`,
			cfg.Broker, boolToInt(cfg.Enabled), cfg.StartDate, cfg.UpdateFrequencyMinutes, encrypted)
		return err
	})
}

func (s *ConfigStore) loadFromDB(broker string) (Config, error) {
	row := s.db.QueryRow(`
		SELECT enabled, COALESCE(start_date, ''), update_frequency_minutes, credentials
		FROM brokers_configuration WHERE broker = ?`, broker)

	var enabled, frequency int
	var startDate, encrypted string
	err := row.Scan(&enabled, &startDate, &frequency, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultConfig(broker), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("loading configuration for %s: %w", broker, err)
	}

	cfg := Config{
		Broker:                 broker,
		Enabled:                enabled != 0,
		StartDate:              startDate,
		UpdateFrequencyMinutes: frequency,
	}

	if encrypted != "" {
		plaintext, err := s.cipher.Decrypt(encrypted)
		if err != nil {
			logger.L.Error("Could not decrypt broker credentials, treating as empty", "broker", broker, "error", err)
			return cfg, nil
		}
		if err := json.Unmarshal(plaintext, &cfg.Credentials); err != nil {
			return Config{}, fmt.Errorf("parsing credentials for %s: %w", broker, err)
		}
	}
	return cfg, nil
}

func (s *ConfigStore) loadOverrides() (map[string]json.RawMessage, error) {
	if s.overridePath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.overridePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	overrides := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.overridePath, err)
	}
	return overrides, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
