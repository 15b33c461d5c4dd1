package irrigation

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettings(t *testing.T) *SettingsStore {
	t.Helper()

	store, err := NewSettingsStore(DefaultSettings())
	require.NoError(t, err)

	return store
}

func TestDrynessThresholdAcceptsRange(t *testing.T) {
	store := newTestSettings(t)

	for value := MIN_DRYNESS_THRESHOLD; value <= MAX_DRYNESS_THRESHOLD; value++ {
		_, err := store.Apply(SETTING_DRYNESS_THRESHOLD, strconv.Itoa(value))
		require.NoError(t, err)
		assert.Equal(t, value, store.Settings().DrynessThreshold)
	}
}

func TestDrynessThresholdRejects(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		reason string
	}{
		{"zero", "0", "smaller than 350"},
		{"below range", "349", "smaller than 350"},
		{"above range", "436", "larger than 435"},
		{"not a number", "dry", "could not be converted"},
		{"empty", "", "could not be converted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestSettings(t)
			_, err := store.SetDrynessThreshold(410)
			require.NoError(t, err)

			_, err = store.Apply(SETTING_DRYNESS_THRESHOLD, tt.raw)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Reason, tt.reason)
			assert.Equal(t, 410, store.Settings().DrynessThreshold)
		})
	}
}

func TestWateringSeconds(t *testing.T) {
	store := newTestSettings(t)

	change, err := store.Apply(SETTING_WATERING_SECONDS, " 7 ")
	require.NoError(t, err)
	assert.Equal(t, SettingChange{Setting: SETTING_WATERING_SECONDS, OldValue: "5", NewValue: "7"}, change)

	_, err = store.Apply(SETTING_WATERING_SECONDS, "11")
	assert.Error(t, err)
	assert.EqualError(t, err, `invalid watering-seconds "11": value cannot be larger than 10`)

	_, err = store.Apply(SETTING_WATERING_SECONDS, "0")
	assert.Error(t, err)

	assert.Equal(t, 7, store.Settings().WateringSeconds)
}

func TestSampleFrequencyDoesNotWrap(t *testing.T) {
	store := newTestSettings(t)

	// 300 would be 44 as a byte
	_, err := store.Apply(SETTING_SAMPLE_FREQUENCY, "300")
	assert.Error(t, err)
	assert.Equal(t, uint8(DEFAULT_SAMPLE_FREQUENCY_MINUTES), store.Settings().SampleFrequencyMinutes)

	_, err = store.Apply(SETTING_SAMPLE_FREQUENCY, "120")
	require.NoError(t, err)
	assert.Equal(t, uint8(120), store.Settings().SampleFrequencyMinutes)
}

func TestHysteresisRatio(t *testing.T) {
	store := newTestSettings(t)

	change, err := store.Apply(SETTING_HYSTERESIS_RATIO, "1.25")
	require.NoError(t, err)
	assert.Equal(t, "1.1", change.OldValue)
	assert.Equal(t, "1.25", change.NewValue)

	for _, raw := range []string{"0.99", "2", "NaN", "abc"} {
		_, err := store.Apply(SETTING_HYSTERESIS_RATIO, raw)
		assert.Error(t, err, raw)
	}

	_, err = store.SetRefillHysteresisRatio(math.Inf(1))
	assert.Error(t, err)

	assert.Equal(t, 1.25, store.Settings().RefillHysteresisRatio)
}

func TestApplyUnknownSetting(t *testing.T) {
	store := newTestSettings(t)

	_, err := store.Apply("pump-speed", "3")
	assert.ErrorIs(t, err, ErrUnknownSetting)
}

func TestNewSettingsStore(t *testing.T) {
	settings := DefaultSettings()
	settings.NumberOfSamples = 0

	store, err := NewSettingsStore(settings)
	require.NoError(t, err)
	assert.Equal(t, DEFAULT_NUMBER_OF_SAMPLES, store.Settings().NumberOfSamples)

	settings.DrynessThreshold = 500
	_, err = NewSettingsStore(settings)
	assert.Error(t, err)
}
