package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type fakeFeature struct {
	name    string
	enabled bool
	loadErr error
	loaded  bool
}

func (f *fakeFeature) Name() string    { return f.name }
func (f *fakeFeature) IsEnabled() bool { return f.enabled }
func (f *fakeFeature) Load(fiber.Router) error {
	f.loaded = true
	return f.loadErr
}

func TestManager_LoadAll(t *testing.T) {
	app := fiber.New()

	t.Run("skips disabled features", func(t *testing.T) {
		enabled := &fakeFeature{name: "a", enabled: true}
		disabled := &fakeFeature{name: "b", enabled: false}

		mgr := NewManager()
		mgr.Register(enabled)
		mgr.Register(disabled)

		assert.NoError(t, mgr.LoadAll(app))
		assert.True(t, enabled.loaded)
		assert.False(t, disabled.loaded)
	})

	t.Run("fails fast on the first error", func(t *testing.T) {
		failing := &fakeFeature{name: "a", enabled: true, loadErr: errors.New("boom")}
		after := &fakeFeature{name: "b", enabled: true}

		mgr := NewManager()
		mgr.Register(failing)
		mgr.Register(after)

		err := mgr.LoadAll(app)
		assert.ErrorContains(t, err, "failed to load feature a")
		assert.False(t, after.loaded)
	})
}
