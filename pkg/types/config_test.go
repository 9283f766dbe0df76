package types

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{name: "complete", cfg: Config{DataDir: "/data", System: "dnd5e"}},
		{name: "missing data dir", cfg: Config{System: "dnd5e"}, want: ErrNoDataDir},
		{name: "missing system", cfg: Config{DataDir: "/data"}, want: ErrNoSystem},
		{name: "unsafe system name", cfg: Config{DataDir: "/data", System: "a/b"}, want: ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.want))
			}
		})
	}
}

func TestConfigRootPath(t *testing.T) {
	cfg := Config{DataDir: "/data", System: "dnd5e"}
	assert.Equal(t, filepath.Join("/data", "dnd5e.db"), cfg.RootPath())
}
