package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/lawlawrd/polly/internal/entity"
)

// registrySchema is the JSON Schema for the registry YAML file.
const registrySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "polly registry",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "display_names": {
      "type": "object",
      "additionalProperties": {"type": "string", "minLength": 1}
    },
    "models": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "language"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "language": {"type": "string", "pattern": "^[a-z]{2}(-[A-Z]{2})?$"}
        }
      }
    }
  }
}`

// RegistryFile is the top-level YAML structure for a registry config file.
type RegistryFile struct {
	DisplayNames map[string]string `yaml:"display_names" json:"display_names"`
	Models       []ModelConfig     `yaml:"models" json:"models"`
}

// ModelConfig maps a detector model identifier to the language code the
// outbound analysis request must carry for that model.
type ModelConfig struct {
	ID       string `yaml:"id" json:"id"`
	Language string `yaml:"language" json:"language"`
}

// Registry resolves entity-type display names and detector-model languages.
// It is immutable after construction; lookups are safe for concurrent use.
type Registry struct {
	displayNames map[string]string
	languages    map[string]string
}

// FallbackLabel is used when an entity type is empty after normalization.
const FallbackLabel = "REDACTED"

// defaultDisplayNames covers the entity types the stock detection models
// emit. A registry file can override or extend these.
var defaultDisplayNames = map[string]string{
	"PERSON":                "PERSON",
	"EMAIL_ADDRESS":         "EMAIL",
	"PHONE_NUMBER":          "PHONE",
	"LOCATION":              "LOCATION",
	"IBAN_CODE":             "IBAN",
	"CREDIT_CARD":           "CREDIT_CARD",
	"IP_ADDRESS":            "IP",
	"URL":                   "URL",
	"DATE_TIME":             "DATE",
	entity.TypeDenylistTerm: "DENYLIST",
}

// defaultModelLanguages maps the stock detector model ids to their language.
var defaultModelLanguages = map[string]string{
	"en_core_web_lg":  "en",
	"nl_core_news_lg": "nl",
	"de_core_news_lg": "de",
	"fr_core_news_lg": "fr",
}

// NewRegistry builds a registry from the embedded defaults overlaid with an
// optional RegistryFile (nil means defaults only).
func NewRegistry(file *RegistryFile) *Registry {
	r := &Registry{
		displayNames: make(map[string]string, len(defaultDisplayNames)),
		languages:    make(map[string]string, len(defaultModelLanguages)),
	}
	for k, v := range defaultDisplayNames {
		r.displayNames[k] = v
	}
	for k, v := range defaultModelLanguages {
		r.languages[k] = v
	}
	if file != nil {
		for k, v := range file.DisplayNames {
			r.displayNames[strings.ToUpper(Canonical(k))] = v
		}
		for _, m := range file.Models {
			r.languages[m.ID] = m.Language
		}
	}
	return r
}

// DisplayName resolves the human-readable label for an entity type. Unknown
// types fall back to the raw uppercase type; empty types to FallbackLabel.
func (r *Registry) DisplayName(entityType string) string {
	t := strings.ToUpper(Canonical(entityType))
	if t == "" {
		return FallbackLabel
	}
	if name, ok := r.displayNames[t]; ok {
		return name
	}
	return t
}

// LanguageFor resolves the language code for a detector model id,
// defaulting to "en" for unknown models.
func (r *Registry) LanguageFor(modelID string) string {
	if lang, ok := r.languages[modelID]; ok {
		return lang
	}
	return "en"
}

// ParseRegistryFile parses registry YAML bytes, validating them against the
// registry JSON Schema first so a malformed file fails loudly at startup
// instead of producing silent lookup misses.
func ParseRegistryFile(data []byte) (*RegistryFile, error) {
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parsing registry YAML: %w", err)
	}
	asJSON, err := json.Marshal(normalizeYAML(generic))
	if err != nil {
		return nil, fmt.Errorf("converting registry YAML for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(registrySchema),
		gojsonschema.NewBytesLoader(asJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("validating registry: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid registry file: %s", strings.Join(msgs, "; "))
	}

	var rf RegistryFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing registry YAML: %w", err)
	}
	return &rf, nil
}

// LoadRegistryFile reads and parses a registry YAML file from disk.
// Returns nil (not an error) if the file does not exist, so callers can
// treat a missing registry as defaults-only.
func LoadRegistryFile(path string) (*RegistryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading registry file %s: %w", path, err)
	}
	return ParseRegistryFile(data)
}

// normalizeYAML converts yaml.v3's map[string]interface{} trees (and any
// nested map[interface{}]interface{} from older documents) into
// JSON-marshalable values.
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(item)
		}
		return out
	case []interface{}:
		for i, item := range val {
			val[i] = normalizeYAML(item)
		}
		return val
	default:
		return v
	}
}
