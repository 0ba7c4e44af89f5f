package nab

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikkoParkkola/nab/cookiejar"
	"github.com/MikkoParkkola/nab/fingerprint"
)

// FileConfig is the on-disk shape of Config: a flat, YAML-friendly subset of
// the tunables an embedding program is likely to want to set without
// recompiling. It is optional — Config{} works standalone — and exists only
// to let a deployment ship a config file alongside the binary the way
// donor's services do.
type FileConfig struct {
	EnablePDF          bool          `yaml:"enable_pdf"`
	EnableHTTP3        bool          `yaml:"enable_http3"`
	BrowserProfile     string        `yaml:"browser_profile"`
	CookieSource       string        `yaml:"cookie_source"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout"`
	TotalTimeout       time.Duration `yaml:"total_timeout"`
	MaxRedirects       int           `yaml:"max_redirects"`
	BatchConcurrency   int           `yaml:"batch_concurrency"`
	BatchPerURLTimeout time.Duration `yaml:"batch_per_url_timeout"`
}

// LoadConfig reads a YAML file at path and merges it onto Config{}'s zero
// value. An unset or unrecognized field in the file is simply not applied;
// Config.defaults() fills in the rest at New time.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("nab: reading config %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("nab: parsing config %s: %w", path, err)
	}
	return fc.toConfig(), nil
}

func (fc FileConfig) toConfig() Config {
	cfg := Config{
		EnablePDF:          fc.EnablePDF,
		BatchConcurrency:   fc.BatchConcurrency,
		BatchPerURLTimeout: fc.BatchPerURLTimeout,
		CookieSource:       parseCookieSource(fc.CookieSource),
	}
	cfg.Fetch.EnableHTTP3 = fc.EnableHTTP3
	cfg.Fetch.ConnectTimeout = fc.ConnectTimeout
	cfg.Fetch.TotalTimeout = fc.TotalTimeout
	cfg.Fetch.MaxRedirects = fc.MaxRedirects
	cfg.Fetch.ProfileKind = parseBrowserProfile(fc.BrowserProfile)
	return cfg
}

func parseCookieSource(s string) cookiejar.Source {
	switch s {
	case "chrome":
		return cookiejar.SourceChrome
	case "firefox":
		return cookiejar.SourceFirefox
	case "safari":
		return cookiejar.SourceSafari
	case "edge":
		return cookiejar.SourceEdge
	case "brave":
		return cookiejar.SourceBrave
	case "dia":
		return cookiejar.SourceDia
	default:
		return cookiejar.SourceNone
	}
}

func parseBrowserProfile(s string) fingerprint.Kind {
	switch s {
	case "firefox":
		return fingerprint.Firefox
	case "safari":
		return fingerprint.Safari
	default:
		return fingerprint.Chrome
	}
}
