package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

// ErrNoConfigFile is returned by Persist when no config file has been loaded.
var ErrNoConfigFile = errors.New("no config file in use")

// Store writes preference changes back to the config file.
type Store struct {
	mu sync.Mutex
	v  *viper.Viper
}

// NewStore returns a store over v, or over the global viper instance if v is nil.
func NewStore(v *viper.Viper) *Store {
	if v == nil {
		v = viper.GetViper()
	}
	return &Store{v: v}
}

// Persist sets key and saves it to the config file in use. Only key changes
// in the file: values that come from flags or defaults are not written.
func (s *Store) Persist(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(key, value)

	path := s.v.ConfigFileUsed()
	if path == "" {
		return fmt.Errorf("save %s: %w", key, ErrNoConfigFile)
	}
	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType(ConfigType)
	if err := file.ReadInConfig(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	file.Set(key, value)
	if err := file.WriteConfig(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
