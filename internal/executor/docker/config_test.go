package docker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_KnownLanguages(t *testing.T) {
	cfg := DefaultConfig()

	for _, name := range []string{"javascript", "python", "bash"} {
		lang, ok := cfg.Languages[name]
		assert.True(t, ok, "language %s should be configured", name)
		assert.NotEmpty(t, lang.Image)
		assert.NotEmpty(t, lang.Command)
	}
}

func TestConfig_LanguageFallback(t *testing.T) {
	cfg := DefaultConfig()

	// Empty name resolves to the default language.
	lang, ok := cfg.language("")
	assert.True(t, ok)
	assert.Equal(t, cfg.Languages[cfg.Default], lang)

	// Unknown names don't resolve — the runner rejects them instead of
	// silently running in the wrong sandbox.
	_, ok = cfg.language("cobol")
	assert.False(t, ok)
}
