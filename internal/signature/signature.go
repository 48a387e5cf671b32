// Package signature computes a change-detection digest over a
// result-plus-settings bundle.
//
// Persistence uses the digest to decide whether a result is new relative to
// a previously saved one, so two payloads that differ only in JSON key order
// or floating-point jitter must produce the same digest while any semantic
// difference must not. No cryptographic property is required; the sha256
// step only condenses the canonical form into a fixed-width key.
package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// floatPrecision is the number of decimal places numbers are rounded to
// before serialization, absorbing floating-point noise.
const floatPrecision = 6

// Payload is the bounded field set covered by the digest. Everything the
// user can change between saves is here; transient fields (timestamps,
// correlation ids) deliberately are not.
type Payload struct {
	SourceText   string        `json:"source_text"`
	SourceMarkup string        `json:"source_markup"`
	ResultText   string        `json:"result_text"`
	ResultMarkup string        `json:"result_markup"`
	Model        string        `json:"model"`
	Language     string        `json:"language"`
	Threshold    float64       `json:"threshold"`
	AllowText    string        `json:"allow_list"`
	DenyText     string        `json:"deny_list"`
	EntityTypes  []string      `json:"entity_types"`
	Entities     []interface{} `json:"entities"`
	Items        []interface{} `json:"items"`
}

// Signature returns the canonical digest of the payload in the form
// "sha256:<hex>". The payload may be a Payload, a map decoded from JSON, or
// any JSON-marshalable value.
func Signature(payload interface{}) (string, error) {
	canonical, err := Canonical(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(canonical))
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}

// Canonical serializes the payload into its stable textual form: object keys
// sorted lexicographically at every nesting level, arrays preserved in
// order, numbers rounded to a fixed precision, non-finite numbers coerced to
// null, and entity-type lists deduplicated and sorted.
func Canonical(payload interface{}) (string, error) {
	tree, err := toTree(payload)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	writeCanonical(&sb, tree, "")
	return sb.String(), nil
}

// toTree converts an arbitrary payload into the generic JSON tree the
// canonical writer walks. Values that are already JSON-native pass through
// untouched, keeping non-finite floats alive for the writer to coerce to
// null; anything else takes a Marshal round-trip, so a typed struct holding
// NaN is an error rather than a silent coercion.
func toTree(payload interface{}) (interface{}, error) {
	switch payload.(type) {
	case nil, bool, string, float64, float32, int, int64, json.Number,
		map[string]interface{}, []interface{}:
		return payload, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing payload: %w", err)
	}
	var tree interface{}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("canonicalizing payload: %w", err)
	}
	return tree, nil
}

// writeCanonical renders one node. The key of the node within its parent
// object is passed down so list-valued special cases (entity_types) can be
// normalized in place.
func writeCanonical(sb *strings.Builder, v interface{}, key string) {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		sb.WriteString(strconv.FormatBool(val))
	case string:
		quoted, _ := json.Marshal(val)
		sb.Write(quoted)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			sb.WriteString("null")
			return
		}
		sb.WriteString(formatNumber(f))
	case float64:
		sb.WriteString(formatNumber(val))
	case float32:
		sb.WriteString(formatNumber(float64(val)))
	case int:
		sb.WriteString(strconv.Itoa(val))
	case int64:
		sb.WriteString(strconv.FormatInt(val, 10))
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			quoted, _ := json.Marshal(k)
			sb.Write(quoted)
			sb.WriteByte(':')
			writeCanonical(sb, val[k], k)
		}
		sb.WriteByte('}')
	case []interface{}:
		items := val
		if key == "entity_types" {
			items = normalizeTypeList(val)
		}
		sb.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanonical(sb, item, "")
		}
		sb.WriteByte(']')
	case []string:
		generic := make([]interface{}, len(val))
		for i, s := range val {
			generic[i] = s
		}
		writeCanonical(sb, generic, key)
	default:
		// Unknown scalar kinds fall back to their JSON encoding.
		data, err := json.Marshal(val)
		if err != nil {
			sb.WriteString("null")
			return
		}
		sb.Write(data)
	}
}

// formatNumber rounds to floatPrecision decimals and renders without
// trailing zeros. NaN and infinities become null.
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	shift := math.Pow10(floatPrecision)
	rounded := math.Round(f*shift) / shift
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// normalizeTypeList dedupes and sorts a list of entity-type strings so the
// digest ignores selection order and repeats. Non-string members pass
// through after the strings, preserving their relative order.
func normalizeTypeList(items []interface{}) []interface{} {
	seen := make(map[string]bool, len(items))
	var types []string
	var rest []interface{}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			rest = append(rest, item)
			continue
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		types = append(types, s)
	}
	sort.Strings(types)
	out := make([]interface{}, 0, len(types)+len(rest))
	for _, t := range types {
		out = append(out, t)
	}
	return append(out, rest...)
}
