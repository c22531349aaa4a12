// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SummarizerBackend selects the text-generation service behind the risk summarizer.
type SummarizerBackend string

const (
	// SummarizerNone runs the summarizer in pass-through mode.
	SummarizerNone   SummarizerBackend = "none"
	SummarizerClaude SummarizerBackend = "claude"
	SummarizerGemini SummarizerBackend = "gemini"
)

// SummarizerConfig holds settings for the risk summarizer.
type SummarizerConfig struct {
	// Backend is none, claude, or gemini (default none).
	Backend SummarizerBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Model is the model identifier passed to the backend.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates against the backend. Falls back to .secrets/.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxTokens caps the length of the generated conclusion (default 1024).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout bounds a single generation call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// CaptureBackend identifies the headless browser driver used for rasterization.
type CaptureBackend string

const (
	CaptureChromedp CaptureBackend = "chromedp"
	CaptureRod      CaptureBackend = "rod"
)

// CaptureConfig holds settings for rasterizing rendered pages.
type CaptureConfig struct {
	// Backend is chromedp or rod (default chromedp).
	Backend CaptureBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Scale is the device scale factor applied to every page (default 3).
	Scale float64 `json:"scale" yaml:"scale" mapstructure:"scale"`

	// Workers bounds how many pages are captured at once (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// ChromePath overrides the browser binary. Empty means auto-detect.
	ChromePath string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty" mapstructure:"chrome_path"`

	// Timeout bounds the capture of one page.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// DocumentConfig holds the physical page geometry and PDF metadata.
type DocumentConfig struct {
	// PageWidth and PageHeight are in millimetres (default A4, 210x297).
	PageWidth  float64 `json:"page_width" yaml:"page_width" mapstructure:"page_width"`
	PageHeight float64 `json:"page_height" yaml:"page_height" mapstructure:"page_height"`

	Title  string `json:"title" yaml:"title" mapstructure:"title"`
	Author string `json:"author" yaml:"author" mapstructure:"author"`
}

// DeliveryConfig holds settings for the delivery actions.
type DeliveryConfig struct {
	// OutputDir is where downloaded reports are written (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// UploadURL is the upload endpoint (e.g. "http://localhost:8080/api/upload").
	UploadURL string `json:"upload_url" yaml:"upload_url" mapstructure:"upload_url"`

	// PrintCommand and OpenCommand override the detected system commands.
	PrintCommand string `json:"print_command,omitempty" yaml:"print_command,omitempty" mapstructure:"print_command"`
	OpenCommand  string `json:"open_command,omitempty" yaml:"open_command,omitempty" mapstructure:"open_command"`

	// Timeout bounds an upload request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ServerConfig holds settings for the upload server.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// StorageDir receives uploaded documents (default "uploads").
	StorageDir string `json:"storage_dir" yaml:"storage_dir" mapstructure:"storage_dir"`

	// LedgerPath is the SQLite receipts database (default "uploads/ledger.db").
	LedgerPath string `json:"ledger_path" yaml:"ledger_path" mapstructure:"ledger_path"`

	// PublicBaseURL prefixes the locator returned for each upload.
	PublicBaseURL string `json:"public_base_url" yaml:"public_base_url" mapstructure:"public_base_url"`

	// MaxUploadBytes caps the request body (default 32 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// LoggerConfig holds settings for the structured logger.
type LoggerConfig struct {
	// Level is debug, info, warn, or error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json (default console).
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// File, when set, adds a rotating JSON log file.
	File       string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress" yaml:"compress" mapstructure:"compress"`
}

// Config groups the settings of every stage.
type Config struct {
	Summarizer SummarizerConfig `json:"summarizer" yaml:"summarizer" mapstructure:"summarizer"`
	Capture    CaptureConfig    `json:"capture" yaml:"capture" mapstructure:"capture"`
	Document   DocumentConfig   `json:"document" yaml:"document" mapstructure:"document"`
	Delivery   DeliveryConfig   `json:"delivery" yaml:"delivery" mapstructure:"delivery"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Log        LoggerConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// A4 page size in millimetres.
const (
	A4Width  = 210.0
	A4Height = 297.0
)

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Summarizer: SummarizerConfig{
			Backend:   SummarizerNone,
			MaxTokens: 1024,
			Timeout:   60 * time.Second,
		},
		Capture: CaptureConfig{
			Backend: CaptureChromedp,
			Scale:   3,
			Workers: 1,
			Timeout: 30 * time.Second,
		},
		Document: DocumentConfig{
			PageWidth:  A4Width,
			PageHeight: A4Height,
			Title:      "Property Verification Report",
			Author:     "PropVerify",
		},
		Delivery: DeliveryConfig{
			OutputDir: "output",
			UploadURL: "http://localhost:8080/api/upload",
			Timeout:   30 * time.Second,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			StorageDir:     "uploads",
			LedgerPath:     "uploads/ledger.db",
			PublicBaseURL:  "https://fake-storage.com/reports",
			MaxUploadBytes: 32 << 20,
		},
		Log: LoggerConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}
