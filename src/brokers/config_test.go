package brokers

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/username/stonksoverwatch/backend/src/security"
)

func TestHasMinimalCredentials(t *testing.T) {
	tests := []struct {
		name   string
		broker string
		creds  Credentials
		want   bool
	}{
		{"degiro valid", BrokerDeGiro, Credentials{Username: "alice", Password: "hunter22"}, true},
		{"degiro short password", BrokerDeGiro, Credentials{Username: "alice", Password: "abc"}, false},
		{"degiro placeholder username", BrokerDeGiro, Credentials{Username: "your_username", Password: "hunter22"}, false},
		{"degiro angle-bracket placeholder", BrokerDeGiro, Credentials{Username: "<username>", Password: "hunter22"}, false},
		{"bitvavo valid", BrokerBitvavo, Credentials{APIKey: "0123456789abcdef", APISecret: "fedcba9876543210"}, true},
		{"bitvavo short key", BrokerBitvavo, Credentials{APIKey: "short", APISecret: "fedcba9876543210"}, false},
		{"bitvavo placeholder", BrokerBitvavo, Credentials{APIKey: "your_api_key", APISecret: "fedcba9876543210"}, false},
		{"ibkr valid", BrokerIBKR, Credentials{AccountID: "U1234567"}, true},
		{"ibkr short", BrokerIBKR, Credentials{AccountID: "U123"}, false},
		{"unknown broker", "robinhood", Credentials{Username: "alice", Password: "hunter22"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.creds.HasMinimalCredentials(tc.broker))
		})
	}
}

func TestConfigFromJSONDefaults(t *testing.T) {
	cfg, err := ConfigFromJSON(BrokerDeGiro, []byte(`{"enabled": true}`))
	require.NoError(t, err)
	assert.Equal(t, BrokerDeGiro, cfg.Broker)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.UpdateFrequencyMinutes)

	_, err = ConfigFromJSON(BrokerDeGiro, []byte(`{not json`))
	assert.Error(t, err)
}

func newTestStore(t *testing.T, overridePath string) *ConfigStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE brokers_configuration (
			broker TEXT PRIMARY KEY,
			enabled INTEGER NOT NULL DEFAULT 0,
			start_date TEXT,
			update_frequency_minutes INTEGER NOT NULL DEFAULT 60,
			credentials TEXT NOT NULL DEFAULT ''
		)`)
	require.NoError(t, err)

	key, err := security.LoadOrCreateKey(filepath.Join(t.TempDir(), "secret.key"))
	require.NoError(t, err)
	cipher, err := security.NewCipher(key)
	require.NoError(t, err)

	return NewConfigStore(db, cipher, overridePath)
}

func TestConfigStoreSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t, "")

	cfg := DefaultConfig(BrokerDeGiro)
	cfg.Enabled = true
	cfg.StartDate = "2023-01-01"
	cfg.Credentials = Credentials{Username: "alice", Password: "hunter22", TOTPSecret: "JBSWY3DPEHPK3PXP"}
	require.NoError(t, store.Save(cfg))

	loaded, err := store.Load(BrokerDeGiro)
	require.NoError(t, err)
	assert.True(t, loaded.Enabled)
	assert.Equal(t, "2023-01-01", loaded.StartDate)
	assert.Equal(t, cfg.Credentials, loaded.Credentials)

	// Credentials never land in the table as plaintext.
	var stored string
	err = storeDB(store).QueryRow(`SELECT credentials FROM brokers_configuration WHERE broker = ?`, BrokerDeGiro).Scan(&stored)
	require.NoError(t, err)
	assert.NotContains(t, stored, "alice")
	assert.NotContains(t, stored, "hunter22")
}

func TestConfigStoreDefaultsWhenAbsent(t *testing.T) {
	store := newTestStore(t, "")

	cfg, err := store.Load(BrokerBitvavo)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.UpdateFrequencyMinutes)
	assert.False(t, store.IsEnabled(BrokerBitvavo))
}

func TestLoadAllCoversEveryKnownBroker(t *testing.T) {
	store := newTestStore(t, "")

	saved := DefaultConfig(BrokerBitvavo)
	saved.Enabled = true
	require.NoError(t, store.Save(saved))

	configs, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, configs, 3)
	assert.True(t, configs[BrokerBitvavo].Enabled)
	assert.False(t, configs[BrokerDeGiro].Enabled)
	assert.Equal(t, BrokerIBKR, configs[BrokerIBKR].Broker)
}

func TestConfigStoreJSONOverrideWins(t *testing.T) {
	overridePath := filepath.Join(t.TempDir(), "brokers.json")
	override := `{"degiro": {"enabled": true, "start_date": "2020-06-01", "credentials": {"username": "override-user", "password": "override-pass"}}}`
	require.NoError(t, os.WriteFile(overridePath, []byte(override), 0o600))

	store := newTestStore(t, overridePath)

	dbCfg := DefaultConfig(BrokerDeGiro)
	dbCfg.Enabled = false
	dbCfg.StartDate = "2024-01-01"
	require.NoError(t, store.Save(dbCfg))

	loaded, err := store.Load(BrokerDeGiro)
	require.NoError(t, err)
	assert.True(t, loaded.Enabled)
	assert.Equal(t, "2020-06-01", loaded.StartDate)
	assert.Equal(t, "override-user", loaded.Credentials.Username)

	// Brokers not named in the file still come from the database.
	other, err := store.Load(BrokerIBKR)
	require.NoError(t, err)
	assert.False(t, other.Enabled)
}

// storeDB reaches into the store for verification queries.
func storeDB(s *ConfigStore) *sql.DB { return s.db }
