package version

import (
	"bytes"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		buildDate string
		want      string
	}{
		{
			name:      "version with v prefix",
			version:   "v1.2.3",
			buildDate: "2023-01-01",
			want:      "compatguard version 1.2.3 (2023-01-01)\nhttps://github.com/compatguard/cli/releases/tag/v1.2.3\n",
		},
		{
			name:      "version without v prefix",
			version:   "1.2.3",
			buildDate: "2023-01-01",
			want:      "compatguard version 1.2.3 (2023-01-01)\nhttps://github.com/compatguard/cli/releases/tag/v1.2.3\n",
		},
		{
			name:      "version without build date",
			version:   "1.2.3",
			buildDate: "",
			want:      "compatguard version 1.2.3\nhttps://github.com/compatguard/cli/releases/tag/v1.2.3\n",
		},
		{
			name:      "dev version",
			version:   "0.0.0-dev",
			buildDate: "",
			want:      "compatguard version 0.0.0-dev\nhttps://github.com/compatguard/cli/releases/latest\n",
		},
		{
			name:      "dev build of an upcoming release",
			version:   "v1.4.0-dev",
			buildDate: "2024-05-02",
			want:      "compatguard version 1.4.0-dev (2024-05-02)\nhttps://github.com/compatguard/cli/releases/latest\n",
		},
		{
			name:      "prerelease version",
			version:   "1.2.3-beta.1",
			buildDate: "2023-01-01",
			want:      "compatguard version 1.2.3-beta.1 (2023-01-01)\nhttps://github.com/compatguard/cli/releases/tag/v1.2.3-beta.1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.version, tt.buildDate)
			if got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChangelogURL(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{
			name:    "stable version",
			version: "1.2.3",
			want:    "https://github.com/compatguard/cli/releases/tag/v1.2.3",
		},
		{
			name:    "stable version with v prefix",
			version: "v1.2.3",
			want:    "https://github.com/compatguard/cli/releases/tag/v1.2.3",
		},
		{
			name:    "prerelease version",
			version: "1.2.3-beta.1",
			want:    "https://github.com/compatguard/cli/releases/tag/v1.2.3-beta.1",
		},
		{
			name:    "dev version",
			version: "0.0.0-dev",
			want:    "https://github.com/compatguard/cli/releases/latest",
		},
		{
			name:    "dev suffix on a release number",
			version: "v2.0.1-dev",
			want:    "https://github.com/compatguard/cli/releases/latest",
		},
		{
			name:    "dev suffix is not a prerelease tag",
			version: "2.0.1-devel",
			want:    "https://github.com/compatguard/cli/releases/tag/v2.0.1-devel",
		},
		{
			name:    "invalid version",
			version: "invalid",
			want:    "https://github.com/compatguard/cli/releases/latest",
		},
		{
			name:    "empty version",
			version: "",
			want:    "https://github.com/compatguard/cli/releases/latest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := changelogURL(tt.version)
			if got != tt.want {
				t.Errorf("changelogURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewCmdVersion(t *testing.T) {
	cmd := NewCmdVersion("0.3.0-dev", "")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := "compatguard version 0.3.0-dev\nhttps://github.com/compatguard/cli/releases/latest\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}
