package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Provider     ProviderConfig     `yaml:"provider"`
	MCP          MCPConfig          `yaml:"mcp"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
}

type ServerConfig struct {
	Host string `yaml:"host"` // Default: 0.0.0.0
	Port int    `yaml:"port"` // Default: 5000
}

type ProviderConfig struct {
	Model           string  `yaml:"model"`             // Default: gemini-2.0-flash
	Temperature     float32 `yaml:"temperature"`       // Default: 0.7
	MaxOutputTokens int32   `yaml:"max_output_tokens"` // Default: 2000
	SystemPrompt    string  `yaml:"system_prompt"`     // Default: built-in pharmacist prompt
}

type MCPConfig struct {
	ServerURL          string `yaml:"server_url"`           // Default: http://localhost:3000
	ToolTimeoutSeconds int    `yaml:"tool_timeout_seconds"` // Default: 60
}

type OrchestratorConfig struct {
	MaxRounds int `yaml:"max_rounds"` // Default: 8
}

// DefaultSystemPrompt steers the assistant toward the medication-availability
// domain and direct tool use.
const DefaultSystemPrompt = `Eres un asistente especializado en información sobre disponibilidad de medicamentos en centros de salud del noroeste peruano.

Cuando te pregunten sobre medicamentos o inventario médico, utiliza las herramientas disponibles para proporcionar información precisa. NO pidas permiso para utilizar herramientas, úsalas directamente cuando sea necesario.

Presenta la información de manera clara y útil, incluyendo disponibilidad del medicamento, ubicaciones donde está disponible e información sobre stock.

Si el usuario hace una pregunta no relacionada con medicamentos o inventario médico, responde amablemente que estás especializado en información sobre medicamentos y no puedes ayudar con otros temas.`

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Provider: ProviderConfig{
			Model:           "gemini-2.0-flash",
			Temperature:     0.7,
			MaxOutputTokens: 2000,
			SystemPrompt:    DefaultSystemPrompt,
		},
		MCP: MCPConfig{
			ServerURL:          "http://localhost:3000",
			ToolTimeoutSeconds: 60,
		},
		Orchestrator: OrchestratorConfig{
			MaxRounds: 8,
		},
	}
}
