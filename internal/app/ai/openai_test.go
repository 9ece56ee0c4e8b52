package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenAIModelsListsConfiguredModelFirst(t *testing.T) {
	engine := NewOpenAIEngine("key", "https://api.openai.com/v1", "gpt-4o")
	assert.Equal(t, []string{"gpt-4o", "gpt-4", "gpt-3.5-turbo"}, engine.Models())
}

func TestOpenAIModelsSkipDuplicateFallback(t *testing.T) {
	engine := NewOpenAIEngine("key", "https://api.openai.com/v1", "gpt-4")
	assert.Equal(t, []string{"gpt-4", "gpt-3.5-turbo"}, engine.Models())
}
