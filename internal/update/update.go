package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const LatestReleaseURL = "https://api.github.com/repos/compatguard/cli/releases/latest"

type Release struct {
	Version     string    `yaml:"version"`
	URL         string    `yaml:"url"`
	PublishedAt time.Time `yaml:"publishedAt"`
}

type StateEntry struct {
	CheckedForUpdateAt time.Time `yaml:"checkedForUpdateAt"`
	LatestRelease      *Release  `yaml:"latestRelease"`
}

// CheckForUpdate returns the latest release when it is newer than
// currentVersion. The release endpoint is queried at most once an hour; the
// last answer is kept in stateFilePath.
func CheckForUpdate(ctx context.Context, releaseURL, stateFilePath, currentVersion string) (*Release, error) {
	state, _ := readStateFile(stateFilePath)
	if state != nil && time.Since(state.CheckedForUpdateAt) < time.Hour*1 {
		return nil, nil
	}

	release, err := LatestRelease(ctx, releaseURL)
	if err != nil {
		return nil, err
	}

	state = &StateEntry{CheckedForUpdateAt: time.Now(), LatestRelease: release}
	err = writeStateFile(stateFilePath, state)
	if err != nil {
		return nil, err
	}

	if versionGreaterThan(release.Version, currentVersion) {
		return release, nil
	}

	return nil, nil
}

func LatestRelease(ctx context.Context, releaseURL string) (*Release, error) {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 1
	client.HTTPClient.Timeout = 5 * time.Second

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, releaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release check returned %d", resp.StatusCode)
	}

	res := gjson.ParseBytes(body)
	tag := res.Get("tag_name").String()
	if tag == "" {
		return nil, errors.New("release response without tag_name")
	}
	published, _ := time.Parse(time.RFC3339, res.Get("published_at").String())

	return &Release{
		Version:     tag,
		URL:         res.Get("html_url").String(),
		PublishedAt: published,
	}, nil
}

func readStateFile(stateFilePath string) (*StateEntry, error) {
	content, err := os.ReadFile(stateFilePath)
	if err != nil {
		return nil, err
	}

	var stateEntry StateEntry
	err = yaml.Unmarshal(content, &stateEntry)
	if err != nil {
		return nil, err
	}

	return &stateEntry, nil
}

func writeStateFile(stateFilePath string, state *StateEntry) error {
	content, err := yaml.Marshal(state)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(stateFilePath), 0755)
	if err != nil {
		return err
	}

	err = os.WriteFile(stateFilePath, content, 0600)
	return err
}

func versionGreaterThan(a, b string) bool {
	versionA, err := version.NewVersion(a)
	if err != nil {
		return false
	}
	versionB, err := version.NewVersion(b)
	if err != nil {
		return false
	}
	return versionA.GreaterThan(versionB)
}
