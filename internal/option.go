package internal

// Mode selects which shell Run starts.
type Mode string

// Shells.
const (
	ModeTUI   Mode = "tui"
	ModeServe Mode = "serve"
	ModeMCP   Mode = "mcp"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	mode    Mode
	version string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMode selects the shell to run. Defaults to ModeTUI.
func WithMode(mode Mode) Option {
	return func(a *application) {
		a.mode = mode
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(version string) Option {
	return func(a *application) {
		a.version = version
	}
}
