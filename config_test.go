package nab

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MikkoParkkola/nab/cookiejar"
	"github.com/MikkoParkkola/nab/fingerprint"
)

func TestLoadConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nab.yaml")
	body := "enable_pdf: true\nenable_http3: true\nbrowser_profile: firefox\ncookie_source: chrome\nbatch_concurrency: 8\nbatch_per_url_timeout: 5s\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.EnablePDF {
		t.Error("EnablePDF = false, want true")
	}
	if !cfg.Fetch.EnableHTTP3 {
		t.Error("Fetch.EnableHTTP3 = false, want true")
	}
	if cfg.Fetch.ProfileKind != fingerprint.Firefox {
		t.Errorf("Fetch.ProfileKind = %v, want Firefox", cfg.Fetch.ProfileKind)
	}
	if cfg.CookieSource != cookiejar.SourceChrome {
		t.Errorf("CookieSource = %v, want SourceChrome", cfg.CookieSource)
	}
	if cfg.BatchConcurrency != 8 {
		t.Errorf("BatchConcurrency = %d, want 8", cfg.BatchConcurrency)
	}
	if cfg.BatchPerURLTimeout != 5*time.Second {
		t.Errorf("BatchPerURLTimeout = %v, want 5s", cfg.BatchPerURLTimeout)
	}
}

func TestLoadConfigRejectsMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/nab.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
