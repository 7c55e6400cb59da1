package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePageSize(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{name: "configured value", cfg: Config{PageSize: 50}, want: 50},
		{name: "zero falls back", cfg: Config{PageSize: 0}, want: 20},
		{name: "negative falls back", cfg: Config{PageSize: -1}, want: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.EffectivePageSize())
		})
	}
}
