package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toprix-comparateur/toprix-backend/config"
)

func testAppConfig() *config.Config {
	return &config.Config{
		MongoDB: config.MongoDBConfig{
			URI:            "mongodb://shared:27017",
			SearchIndex:    "Products",
			MaxPoolSize:    40,
			ConnectTimeout: 3 * time.Second,
			RetryWrites:    true,
		},
		Stores: []config.StoreConfig{
			{ID: "mytek", Name: "Mytek", SiteURL: "https://www.mytek.tn", URI: "mongodb://mytek:27017", Database: "Produits", Collection: "DB"},
			{ID: "tunisianet", Name: "Tunisianet", URI: "mongodb://shared:27017", Database: "Produits", Collection: "DB"},
		},
		Comparatif: config.ComparatifConfig{
			Enabled:        true,
			URI:            "mongodb://shared:27017",
			Database:       "Comparatif",
			Collection:     "DB",
			ReferenceField: DefaultReferenceField,
			OfferOrder:     []string{"tunisianet", "unknown", "mytek"},
		},
	}
}

func TestPoolFromConfig(t *testing.T) {
	pool := PoolFromConfig(testAppConfig())

	assert.Equal(t, uint64(40), pool.MaxPoolSize)
	assert.Equal(t, 3*time.Second, pool.ConnectTimeout)
	assert.True(t, pool.RetryWrites)
}

func TestStoresFromConfig(t *testing.T) {
	stores := StoresFromConfig(testAppConfig())

	require.Len(t, stores, 2)
	assert.Equal(t, "mytek", stores[0].ID)
	assert.Equal(t, "mongodb://mytek:27017", stores[0].URI)
	assert.Equal(t, "https://www.mytek.tn", stores[0].SiteURL)
	assert.Equal(t, "tunisianet", stores[1].ID)
	for _, s := range stores {
		assert.Equal(t, "Products", s.SearchIndex)
	}
}

func TestComparatifFromConfig(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		got := ComparatifFromConfig(testAppConfig())

		require.NotNil(t, got)
		assert.Equal(t, "Comparatif", got.Database)
		assert.Equal(t, DefaultReferenceField, got.ReferenceField)
		assert.Equal(t, []string{"Tunisianet", "Mytek"}, got.StoreLabels)
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := testAppConfig()
		cfg.Comparatif.Enabled = false

		assert.Nil(t, ComparatifFromConfig(cfg))
	})
}
