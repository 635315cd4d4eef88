package ai

import "testing"

func validConfig() *Config {
	return &Config{
		APIKey:         "sk-test",
		EmbeddingModel: "text-embedding-3-small",
		ChatModel:      "gpt-4o-mini",
		Temperature:    0.3,
		MaxTokens:      1024,
		EmbedBatchSize: 64,
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config should pass, got: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.APIKey = "" }},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }},
		{"missing chat model", func(c *Config) { c.ChatModel = "" }},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }},
		{"zero batch size", func(c *Config) { c.EmbedBatchSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("%s should fail validation", tt.name)
			}
		})
	}
}

func TestConfig_Validate_BaseURLOptional(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.BaseURL = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty BaseURL should be allowed, got: %v", err)
	}

	cfg.BaseURL = "http://localhost:11434/v1"
	if err := cfg.Validate(); err != nil {
		t.Errorf("custom BaseURL should be allowed, got: %v", err)
	}
}
