package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-02"
	defer func() { Version, Commit, Date = "dev", "none", "unknown" }()

	got := Template()
	for _, want := range []string{"v1.2.3", "abc123", "2026-01-02", "{{.Name}}"} {
		if !strings.Contains(got, want) {
			t.Errorf("Template() = %q, missing %q", got, want)
		}
	}
	if ua := UserAgent(); ua != "sitecanvas/v1.2.3" {
		t.Errorf("UserAgent() = %q", ua)
	}
	if info := Get(); info.Commit != "abc123" {
		t.Errorf("Get().Commit = %q", info.Commit)
	}
}
