package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reversal-alert-bot/internal/types"
)

func initTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "bot.db")))
	t.Cleanup(func() { CloseDB() })
}

func TestAlertHistoryRoundTrip(t *testing.T) {
	initTestDB(t)

	count, err := CountAlertHistory()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	first := types.ReversalAlert{
		Address:     "CAaddr1",
		Symbol:      "ONE",
		PercentGain: 40.0,
		LocalBottom: 0.8,
		Price:       1.12,
		FiredAt:     time.Now().UTC(),
	}
	second := types.ReversalAlert{
		Address:     "CAaddr2",
		Symbol:      "TWO",
		PercentGain: 55.5,
		LocalBottom: 0.002,
		Price:       0.0031,
		FiredAt:     time.Now().UTC(),
	}

	require.NoError(t, InsertAlertHistory(first))
	require.NoError(t, InsertAlertHistory(second))

	count, err = CountAlertHistory()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	alerts, err := GetAlertHistory(10)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	// newest first
	assert.Equal(t, "TWO", alerts[0].Symbol)
	assert.InDelta(t, 55.5, alerts[0].PercentGain, 0.001)
	assert.Equal(t, "ONE", alerts[1].Symbol)
	assert.InDelta(t, 0.8, alerts[1].LocalBottom, 0.0001)
}

func TestMetricPersistence(t *testing.T) {
	initTestDB(t)

	value, err := GetMetric("alerts_fired")
	require.NoError(t, err)
	assert.Equal(t, 0.0, value)

	require.NoError(t, SaveMetric("alerts_fired", 7))
	require.NoError(t, SaveMetric("alerts_fired", 9))

	value, err = GetMetric("alerts_fired")
	require.NoError(t, err)
	assert.Equal(t, 9.0, value)
}
