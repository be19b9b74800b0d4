package client

import (
	"encoding/json"
	"fmt"

	"github.com/quasilyte/gdata"
)

const settingsKey = "peer-settings"

// Settings are remembered between runs of the headless peer.
type Settings struct {
	LastServer string `json:"lastServer"`
	PlayerName string `json:"playerName"`
}

// ItemStore is the subset of *gdata.Manager the settings need.
type ItemStore interface {
	LoadItem(key string) ([]byte, error)
	SaveItem(key string, data []byte) error
}

type SettingsStore struct {
	items ItemStore
}

// OpenSettings opens the per-user data directory of appName.
func OpenSettings(appName string) (*SettingsStore, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	return NewSettingsStore(m), nil
}

func NewSettingsStore(items ItemStore) *SettingsStore {
	return &SettingsStore{items: items}
}

// Load returns the saved settings, or zero settings if none were saved.
func (s *SettingsStore) Load() (Settings, error) {
	var settings Settings
	data, err := s.items.LoadItem(settingsKey)
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}
	if len(data) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return settings, nil
}

func (s *SettingsStore) Save(settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("serialize settings: %w", err)
	}
	if err := s.items.SaveItem(settingsKey, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
