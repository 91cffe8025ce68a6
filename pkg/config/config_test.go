package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.Drafts.Store)
	assert.Equal(t, 2000, cfg.Drafts.DebounceMS)
	assert.Equal(t, "2s", cfg.Drafts.Debounce().String())
	assert.Equal(t, 4, cfg.Drafts.Max)
	assert.Equal(t, "30m0s", cfg.Drafts.IdleTTL().String())
	assert.Equal(t, "FAC", cfg.Billing.InvoicePrefix)
	assert.True(t, cfg.Billing.DefaultTaxRate.IsZero())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFromViper_Valores(t *testing.T) {
	v := viper.New()
	v.Set("DRAFTS_STORE", "SQLite")
	v.Set("DRAFTS_DEBOUNCE_MS", "500")
	v.Set("BILLING_DEFAULT_TAX_RATE", "8")
	v.Set("BILLING_DEFAULT_VAT_RATE", "19.5")
	v.Set("APP_COMPANY_ID", "c-1")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Drafts.Store)
	assert.Equal(t, 500, cfg.Drafts.DebounceMS)
	assert.Equal(t, "8", cfg.Billing.DefaultTaxRate.String())
	assert.Equal(t, "19.5", cfg.Billing.DefaultVATRate.String())
	assert.Equal(t, "c-1", cfg.App.CompanyID)
}

func TestFromViper_Invalidos(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"store desconocido", "DRAFTS_STORE", "redis"},
		{"maximo cero", "DRAFTS_MAX", "0"},
		{"inactividad negativa", "DRAFTS_IDLE_MINUTES", "-5"},
		{"tasa no numerica", "BILLING_DEFAULT_TAX_RATE", "ocho"},
		{"iva negativo", "BILLING_DEFAULT_VAT_RATE", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/w", DBName: "pharma", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fw@db:5432/pharma?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
