package config

import (
	"fmt"
)

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.Provider.Model == "" {
		errs = append(errs, "provider.model must not be empty")
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		errs = append(errs, "provider.temperature must be between 0 and 2")
	}
	if c.Provider.MaxOutputTokens < 1 {
		errs = append(errs, "provider.max_output_tokens must be >= 1")
	}
	if c.MCP.ServerURL == "" {
		errs = append(errs, "mcp.server_url must not be empty")
	}
	if c.MCP.ToolTimeoutSeconds < 1 {
		errs = append(errs, "mcp.tool_timeout_seconds must be >= 1")
	}
	if c.Orchestrator.MaxRounds < 1 {
		errs = append(errs, "orchestrator.max_rounds must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
