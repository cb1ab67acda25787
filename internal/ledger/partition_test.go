package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhhuang/moneybook/internal/ledger"
)

func TestPartitionKey(t *testing.T) {
	assert.Equal(t, "2024-05", ledger.PartitionKey(date(2024, time.May, 1)))
	assert.Equal(t, "2024-05", ledger.PartitionKey(date(2024, time.May, 31)))
	assert.Equal(t, "2024-06", ledger.PartitionKey(date(2024, time.June, 1)))
	assert.Equal(t, "2023-12", ledger.PartitionKey(date(2023, time.December, 31)))
}

func TestParsePartitionKey(t *testing.T) {
	first, err := ledger.ParsePartitionKey("2024-05")
	require.NoError(t, err)
	assert.True(t, first.Equal(date(2024, time.May, 1)))

	_, err = ledger.ParsePartitionKey("app_settings")
	assert.Error(t, err)

	_, err = ledger.ParsePartitionKey("2024-5")
	assert.Error(t, err)
}
