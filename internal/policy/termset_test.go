package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTermSetListMode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "comma separated",
			input: "Alice, Bob,charlie",
			want:  []string{"alice", "bob", "charlie"},
		},
		{
			name:  "newline separated",
			input: "Alice\nBob\n\ncharlie\n",
			want:  []string{"alice", "bob", "charlie"},
		},
		{
			name:  "blank entries dropped",
			input: ",, ,\n ,",
			want:  nil,
		},
		{
			name:  "multi-word terms survive list mode",
			input: "Jan Jansen\nProject X",
			want:  []string{"jan jansen", "project x"},
		},
		{
			name:  "duplicates collapse",
			input: "alice,ALICE,Alice",
			want:  []string{"alice"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewTermSet(tt.input)
			assert.Len(t, set, len(tt.want))
			for _, term := range tt.want {
				assert.True(t, set.Contains(term), "missing %q", term)
			}
		})
	}
}

func TestNewTypeSetUppercasesAndSplitsOnWhitespace(t *testing.T) {
	set := NewTypeSet("person, email_address\tphone_number location")
	assert.Len(t, set, 4)
	assert.True(t, set.Contains("PERSON"))
	assert.True(t, set.Contains("EMAIL_ADDRESS"))
	assert.True(t, set.Contains("PHONE_NUMBER"))
	assert.True(t, set.Contains("LOCATION"))
	assert.False(t, set.Contains("person"))
}

func TestCanonicalAppliesNFC(t *testing.T) {
	// "é" as combining sequence (e + U+0301) must equal precomposed U+00E9.
	combining := "Café"
	precomposed := "Café"
	assert.Equal(t, Canonical(precomposed), Canonical(combining))

	set := NewTermSet(combining)
	assert.True(t, set.Contains(CanonicalTerm(precomposed)))
}

func TestTermSetEmpty(t *testing.T) {
	assert.True(t, NewTermSet("").Empty())
	assert.True(t, TermSet{}.Empty())
	assert.False(t, NewTermSet("x").Empty())
}
