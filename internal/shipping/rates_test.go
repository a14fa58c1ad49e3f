package shipping

import (
	"os"
	"path/filepath"
	"testing"
	"waseet-api/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	table, err := Load("")
	require.NoError(t, err)

	cost, err := table.Cost("alger", entity.HomeDelivery)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(400).Equal(cost))

	cost, err = table.Cost("SETIF", entity.DeskDelivery)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(450).Equal(cost))

	rates := table.Rates()
	require.NotEmpty(t, rates)
	assert.Equal(t, 1, rates[0].Code)
}

func TestCost_Errors(t *testing.T) {
	table := NewTable([]Rate{{Code: 16, Name: "Alger", Home: 400, Desk: 250}})

	_, err := table.Cost("Atlantis", entity.HomeDelivery)
	require.ErrorIs(t, err, ErrUnknownWilaya)

	_, err = table.Cost("Alger", entity.DeliveryType("drone"))
	require.ErrorIs(t, err, ErrUnknownDeliveryType)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wilayas:\n  - {code: 31, name: Oran, home: 700, desk: 400}\n"), 0o644))

	table, err := Load(path)
	require.NoError(t, err)

	cost, err := table.Cost("Oran", entity.HomeDelivery)
	require.NoError(t, err)
	assert.Equal(t, "700", cost.String())

	_, err = Parse([]byte("wilayas: []\n"))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
