package irrigation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

const (
	MIN_DRYNESS_THRESHOLD        = 350
	MAX_DRYNESS_THRESHOLD        = 435
	MIN_WATERING_SECONDS         = 1
	MAX_WATERING_SECONDS         = 10
	MIN_SAMPLE_FREQUENCY_MINUTES = 1
	MAX_SAMPLE_FREQUENCY_MINUTES = 120
	MIN_REFILL_HYSTERESIS_RATIO  = 1.00
	MAX_REFILL_HYSTERESIS_RATIO  = 1.99

	DEFAULT_DRYNESS_THRESHOLD        = 400
	DEFAULT_WATERING_SECONDS         = 5
	DEFAULT_SAMPLE_FREQUENCY_MINUTES = 60
	DEFAULT_REFILL_HYSTERESIS_RATIO  = 1.10
	DEFAULT_NUMBER_OF_SAMPLES        = 1000
)

// Names accepted by SettingsStore.Apply.
const (
	SETTING_DRYNESS_THRESHOLD = "dryness-threshold"
	SETTING_WATERING_SECONDS  = "watering-seconds"
	SETTING_SAMPLE_FREQUENCY  = "sample-frequency"
	SETTING_HYSTERESIS_RATIO  = "hysteresis-ratio"
)

type (
	Settings struct {
		DrynessThreshold       int     `json:"dryness_threshold"`
		WateringSeconds        int     `json:"watering_seconds"`
		SampleFrequencyMinutes uint8   `json:"sample_frequency_minutes"`
		RefillHysteresisRatio  float64 `json:"refill_hysteresis_ratio"`
		// NumberOfSamples stays at DEFAULT_NUMBER_OF_SAMPLES in the server and
		// never comes from JSON.
		NumberOfSamples        int     `json:"-"`
	}

	// SettingChange describes an accepted update.
	SettingChange struct {
		Setting  string `json:"setting"`
		OldValue string `json:"old_value"`
		NewValue string `json:"new_value"`
	}

	// SettingsStore holds the runtime tunables. Every update is validated and
	// applied under the lock so readers never see a partial write.
	SettingsStore struct {
		mu       sync.RWMutex
		settings Settings
	}
)

func DefaultSettings() Settings {
	return Settings{
		DrynessThreshold:       DEFAULT_DRYNESS_THRESHOLD,
		WateringSeconds:        DEFAULT_WATERING_SECONDS,
		SampleFrequencyMinutes: DEFAULT_SAMPLE_FREQUENCY_MINUTES,
		RefillHysteresisRatio:  DEFAULT_REFILL_HYSTERESIS_RATIO,
		NumberOfSamples:        DEFAULT_NUMBER_OF_SAMPLES,
	}
}

// NewSettingsStore validates the initial settings. A zero NumberOfSamples is
// replaced with the default.
func NewSettingsStore(initial Settings) (*SettingsStore, error) {
	if initial.NumberOfSamples == 0 {
		initial.NumberOfSamples = DEFAULT_NUMBER_OF_SAMPLES
	}

	if err := validateInt(SETTING_DRYNESS_THRESHOLD, initial.DrynessThreshold, MIN_DRYNESS_THRESHOLD, MAX_DRYNESS_THRESHOLD); err != nil {
		return nil, err
	}
	if err := validateInt(SETTING_WATERING_SECONDS, initial.WateringSeconds, MIN_WATERING_SECONDS, MAX_WATERING_SECONDS); err != nil {
		return nil, err
	}
	if err := validateInt(SETTING_SAMPLE_FREQUENCY, int(initial.SampleFrequencyMinutes), MIN_SAMPLE_FREQUENCY_MINUTES, MAX_SAMPLE_FREQUENCY_MINUTES); err != nil {
		return nil, err
	}
	if err := validateRatio(initial.RefillHysteresisRatio); err != nil {
		return nil, err
	}
	if initial.NumberOfSamples < 0 {
		return nil, &ValidationError{
			Setting: "number-of-samples",
			Value:   strconv.Itoa(initial.NumberOfSamples),
			Reason:  "must be positive",
		}
	}

	return &SettingsStore{settings: initial}, nil
}

// Settings returns a copy of the current settings.
func (s *SettingsStore) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

func (s *SettingsStore) SetDrynessThreshold(value int) (int, error) {
	if err := validateInt(SETTING_DRYNESS_THRESHOLD, value, MIN_DRYNESS_THRESHOLD, MAX_DRYNESS_THRESHOLD); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.settings.DrynessThreshold
	s.settings.DrynessThreshold = value

	return old, nil
}

func (s *SettingsStore) SetWateringSeconds(value int) (int, error) {
	if err := validateInt(SETTING_WATERING_SECONDS, value, MIN_WATERING_SECONDS, MAX_WATERING_SECONDS); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.settings.WateringSeconds
	s.settings.WateringSeconds = value

	return old, nil
}

// SetSampleFrequencyMinutes takes an int so values above 255 are rejected
// instead of wrapping into range.
func (s *SettingsStore) SetSampleFrequencyMinutes(value int) (uint8, error) {
	if err := validateInt(SETTING_SAMPLE_FREQUENCY, value, MIN_SAMPLE_FREQUENCY_MINUTES, MAX_SAMPLE_FREQUENCY_MINUTES); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.settings.SampleFrequencyMinutes
	s.settings.SampleFrequencyMinutes = uint8(value)

	return old, nil
}

func (s *SettingsStore) SetRefillHysteresisRatio(value float64) (float64, error) {
	if err := validateRatio(value); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.settings.RefillHysteresisRatio
	s.settings.RefillHysteresisRatio = value

	return old, nil
}

// Apply parses raw and updates the named setting.
func (s *SettingsStore) Apply(setting string, raw string) (SettingChange, error) {
	raw = strings.TrimSpace(raw)
	change := SettingChange{Setting: setting}

	switch setting {
	case SETTING_DRYNESS_THRESHOLD:
		value, err := parseInt(setting, raw)
		if err != nil {
			return change, err
		}
		old, err := s.SetDrynessThreshold(value)
		if err != nil {
			return change, err
		}
		change.OldValue, change.NewValue = strconv.Itoa(old), strconv.Itoa(value)

	case SETTING_WATERING_SECONDS:
		value, err := parseInt(setting, raw)
		if err != nil {
			return change, err
		}
		old, err := s.SetWateringSeconds(value)
		if err != nil {
			return change, err
		}
		change.OldValue, change.NewValue = strconv.Itoa(old), strconv.Itoa(value)

	case SETTING_SAMPLE_FREQUENCY:
		value, err := parseInt(setting, raw)
		if err != nil {
			return change, err
		}
		old, err := s.SetSampleFrequencyMinutes(value)
		if err != nil {
			return change, err
		}
		change.OldValue, change.NewValue = strconv.Itoa(int(old)), strconv.Itoa(value)

	case SETTING_HYSTERESIS_RATIO:
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return change, &ValidationError{Setting: setting, Value: raw, Reason: "value could not be converted to a number"}
		}
		old, err := s.SetRefillHysteresisRatio(value)
		if err != nil {
			return change, err
		}
		change.OldValue, change.NewValue = formatRatio(old), formatRatio(value)

	default:
		return change, fmt.Errorf("%w: %s", ErrUnknownSetting, setting)
	}

	return change, nil
}

func parseInt(setting, raw string) (int, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Setting: setting, Value: raw, Reason: "value could not be converted to an integer"}
	}

	return value, nil
}

func validateInt(setting string, value, min, max int) error {
	if value < min {
		return &ValidationError{
			Setting: setting,
			Value:   strconv.Itoa(value),
			Reason:  fmt.Sprintf("value cannot be smaller than %d", min),
		}
	}

	if value > max {
		return &ValidationError{
			Setting: setting,
			Value:   strconv.Itoa(value),
			Reason:  fmt.Sprintf("value cannot be larger than %d", max),
		}
	}

	return nil
}

func validateRatio(value float64) error {
	if math.IsNaN(value) {
		return &ValidationError{Setting: SETTING_HYSTERESIS_RATIO, Value: formatRatio(value), Reason: "value is not a number"}
	}

	if value < MIN_REFILL_HYSTERESIS_RATIO {
		return &ValidationError{
			Setting: SETTING_HYSTERESIS_RATIO,
			Value:   formatRatio(value),
			Reason:  fmt.Sprintf("value cannot be smaller than %.2f", MIN_REFILL_HYSTERESIS_RATIO),
		}
	}

	if value > MAX_REFILL_HYSTERESIS_RATIO {
		return &ValidationError{
			Setting: SETTING_HYSTERESIS_RATIO,
			Value:   formatRatio(value),
			Reason:  fmt.Sprintf("value cannot be larger than %.2f", MAX_REFILL_HYSTERESIS_RATIO),
		}
	}

	return nil
}

func formatRatio(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
