package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArguments(t *testing.T) {
	tests := []struct {
		args    string
		address string
		target  string
	}{
		{"Cm6fNnMk7NfzStP9CZpsQA2v3jjzbcYGAxdJySmHpump 40", "Cm6fNnMk7NfzStP9CZpsQA2v3jjzbcYGAxdJySmHpump", "40"},
		{"abc 12.5", "abc", "12.5"},
		{"abc", "abc", ""},
		{"  abc   40  ", "abc", "40"},
		{"", "", ""},
	}

	for _, tt := range tests {
		address, target := ParseArguments(tt.args)
		assert.Equal(t, tt.address, address, "args: %q", tt.args)
		assert.Equal(t, tt.target, target, "args: %q", tt.args)
	}
}

func TestAuthorized(t *testing.T) {
	restricted := &Bot{Config: BotConfig{AllowedUserID: 42}}
	assert.True(t, restricted.Authorized(42))
	assert.False(t, restricted.Authorized(7))

	open := &Bot{Config: BotConfig{}}
	assert.True(t, open.Authorized(7))
}
