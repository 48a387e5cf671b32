package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry(nil)

	assert.Equal(t, "EMAIL", r.DisplayName("EMAIL_ADDRESS"))
	assert.Equal(t, "EMAIL", r.DisplayName("email_address"))
	assert.Equal(t, "DENYLIST", r.DisplayName("DENYLIST_TERM"))

	// Unknown types fall back to the raw uppercase type.
	assert.Equal(t, "CUSTOM_THING", r.DisplayName("custom_thing"))
	// Empty types fall back to the generic placeholder.
	assert.Equal(t, FallbackLabel, r.DisplayName(""))
	assert.Equal(t, FallbackLabel, r.DisplayName("   "))

	assert.Equal(t, "nl", r.LanguageFor("nl_core_news_lg"))
	assert.Equal(t, "en", r.LanguageFor("unknown_model"))
}

func TestParseRegistryFileOverrides(t *testing.T) {
	data := []byte(`
display_names:
  PERSON: Naam
  custom_thing: Custom
models:
  - id: xx_custom_model
    language: nl
`)
	rf, err := ParseRegistryFile(data)
	require.NoError(t, err)

	r := NewRegistry(rf)
	assert.Equal(t, "Naam", r.DisplayName("PERSON"))
	assert.Equal(t, "Custom", r.DisplayName("CUSTOM_THING"))
	// Defaults not overridden stay intact.
	assert.Equal(t, "EMAIL", r.DisplayName("EMAIL_ADDRESS"))
	assert.Equal(t, "nl", r.LanguageFor("xx_custom_model"))
}

func TestParseRegistryFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown top-level key", "unknown: true"},
		{"model without language", "models:\n  - id: x"},
		{"bad language code", "models:\n  - id: x\n    language: dutch"},
		{"not yaml", ":\n  - ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegistryFile([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadRegistryFileMissingIsNil(t *testing.T) {
	rf, err := LoadRegistryFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Nil(t, rf)
}

func TestLoadRegistryFileReadsDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display_names:\n  URL: Link\n"), 0o600))

	rf, err := LoadRegistryFile(path)
	require.NoError(t, err)
	require.NotNil(t, rf)
	assert.Equal(t, "Link", NewRegistry(rf).DisplayName("URL"))
}
