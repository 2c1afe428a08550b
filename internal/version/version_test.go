package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	defer func() { Version, Commit = oldVersion, oldCommit }()

	Version, Commit = "", ""
	fromBuildInfo(func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "(devel)"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.modified", Value: "true"},
				{Key: "vcs.time", Value: "2026-03-01T10:00:00Z"},
			},
		}, true
	})

	if Commit != "0123456-dirty" {
		t.Errorf("Commit = %q, want 0123456-dirty", Commit)
	}
	if Version != "dev-20260301" {
		t.Errorf("Version = %q, want dev-20260301", Version)
	}
}

func TestFromBuildInfo_ModuleVersion(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	defer func() { Version, Commit = oldVersion, oldCommit }()

	Version, Commit = "", ""
	fromBuildInfo(func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "v1.4.2"}}, true
	})

	if Version != "v1.4.2" {
		t.Errorf("Version = %q, want v1.4.2", Version)
	}
	if Commit != "" {
		t.Errorf("Commit = %q, want empty without vcs stamps", Commit)
	}
}

func TestFullAndUserAgent(t *testing.T) {
	if !strings.Contains(Full(), Commit) {
		t.Errorf("Full() = %q should contain commit %q", Full(), Commit)
	}
	if !strings.HasPrefix(UserAgent(), "autobuilder/") {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}
