// Package config assembles the typed runtime configuration from the
// settings file and the process environment. Environment variables
// override file values.
package config

import (
	"net"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"

	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
)

// Settings file keys.
const (
	KeyClientID         = "google.client_id"
	KeyClientSecret     = "google.client_secret"
	KeyTokenPath        = "google.token_path"
	KeyRedirectURL      = "google.redirect_url"
	KeyDefaultRecipient = "mail.default_recipient"
	KeyDriveFolderID    = "drive.folder_id"
	KeyStageTimeout     = "pipeline.stage_timeout_seconds"
	KeyArchiveBucket    = "archive.bucket"
	KeyAuthMode         = "oauth.auth_mode"
)

// Keys lists every settings key the application reads.
var Keys = []string{
	KeyClientID,
	KeyClientSecret,
	KeyTokenPath,
	KeyRedirectURL,
	KeyDefaultRecipient,
	KeyDriveFolderID,
	KeyStageTimeout,
	KeyArchiveBucket,
	KeyAuthMode,
}

// Defaults.
const (
	DefaultRedirectURL  = "http://localhost:8080/"
	DefaultStageTimeout = 60 * time.Second
	TokenFileName       = "token.json"
	HistoryFileName     = "runs.db"
)

// AuthMode selects how interactive consent is obtained.
type AuthMode string

// Auth modes.
const (
	AuthModeBrowser AuthMode = "browser"
	AuthModeConsole AuthMode = "console"
	AuthModeNone    AuthMode = "none"
)

// Config is the resolved runtime configuration.
type Config struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	TokenPath    string `env:"GOOGLE_TOKEN_PATH"`
	// TokenJSON seeds the credential when no token file exists.
	TokenJSON        string        `env:"GOOGLE_TOKEN_JSON"`
	RedirectURL      string        `env:"GOOGLE_REDIRECT_URL"`
	DefaultRecipient string        `env:"FIXED_RECIPIENT_EMAIL"`
	DriveFolderID    string        `env:"DRIVE_FOLDER_ID"`
	StageTimeout     time.Duration `env:"DOCRELAY_STAGE_TIMEOUT"`
	ArchiveBucket    string        `env:"DOCRELAY_ARCHIVE_BUCKET"`
	AuthMode         AuthMode      `env:"DOCRELAY_AUTH_MODE"`
	DataDir          string        `env:"DOCRELAY_DATA_DIR"`
}

// Load reads store, applies the environment on top and fills defaults.
// dataDir is used unless DOCRELAY_DATA_DIR overrides it.
func Load(store driven.ConfigStore, dataDir string) (*Config, error) {
	return load(store, dataDir, env.Options{})
}

func load(store driven.ConfigStore, dataDir string, opts env.Options) (*Config, error) {
	cfg := &Config{DataDir: dataDir}
	if store != nil {
		cfg.ClientID = store.GetString(KeyClientID)
		cfg.ClientSecret = store.GetString(KeyClientSecret)
		cfg.TokenPath = store.GetString(KeyTokenPath)
		cfg.RedirectURL = store.GetString(KeyRedirectURL)
		cfg.DefaultRecipient = store.GetString(KeyDefaultRecipient)
		cfg.DriveFolderID = store.GetString(KeyDriveFolderID)
		cfg.ArchiveBucket = store.GetString(KeyArchiveBucket)
		cfg.AuthMode = AuthMode(store.GetString(KeyAuthMode))
		if secs := store.GetInt(KeyStageTimeout); secs > 0 {
			cfg.StageTimeout = time.Duration(secs) * time.Second
		}
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, errors.Wrap(err, "parsing environment")
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RedirectURL == "" {
		c.RedirectURL = DefaultRedirectURL
	}
	if c.StageTimeout <= 0 {
		c.StageTimeout = DefaultStageTimeout
	}
	if c.AuthMode == "" {
		c.AuthMode = AuthModeBrowser
	}
	if c.TokenPath == "" && c.DataDir != "" {
		c.TokenPath = filepath.Join(c.DataDir, TokenFileName)
	}
}

// Validate reports settings the pipeline cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		err := errors.Newf("missing OAuth client configuration: %v", missing)
		return errors.WithHint(err, "set them in the environment or run `docrelay config set google.client_id <id>`")
	}

	if !slices.Contains([]AuthMode{AuthModeBrowser, AuthModeConsole, AuthModeNone}, c.AuthMode) {
		return errors.Newf("unknown auth mode %q (want browser, console or none)", c.AuthMode)
	}
	if _, err := c.CallbackPort(); err != nil {
		return err
	}
	if c.AuthMode == AuthModeBrowser {
		u, _ := url.Parse(c.RedirectURL)
		if host := u.Hostname(); host != "localhost" && host != "127.0.0.1" {
			err := errors.Newf("redirect URL %q must point at localhost in browser mode", c.RedirectURL)
			return errors.WithHint(err, "set DOCRELAY_AUTH_MODE=console to paste the code instead")
		}
	}
	return nil
}

// CallbackPort is the local port named by RedirectURL. A URL without
// an explicit port maps to 80.
func (c *Config) CallbackPort() (int, error) {
	u, err := url.Parse(c.RedirectURL)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing redirect URL %q", c.RedirectURL)
	}
	if u.Scheme != "http" || u.Host == "" {
		return 0, errors.Newf("redirect URL %q must be an http URL", c.RedirectURL)
	}
	_, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		return 80, nil
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return 0, errors.Newf("redirect URL %q has an invalid port", c.RedirectURL)
	}
	return n, nil
}

// HistoryPath is the run history database path.
func (c *Config) HistoryPath() string {
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, HistoryFileName)
}
