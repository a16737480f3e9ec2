package features

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/compatguard/cli/pkg/config"
)

const catalog = `features:
  - id: dialog
    name: "<dialog>"
    status: newly
    available_since: "2022-03-14"
    category: html
    alternatives:
      - Use a modal library
    support:
      chrome: "37"
      safari: "15.4"
  - id: grid
    name: CSS Grid
    status: widely
    available_since: "2020-07-28"
    category: css
  - id: view-transitions
    name: View Transitions API
    status: limited
    category: webApi
`

func setup(t *testing.T) {
	t.Helper()
	viper.Reset()
	config.SetDefaults()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "features.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o644))
	viper.Set(config.KeySource, "file")
	viper.Set(config.KeyFeaturesFile, path)
}

func TestList(t *testing.T) {
	setup(t)

	var out bytes.Buffer
	require.NoError(t, runList(context.Background(), featuresOptions{stdout: &out}, "", ""))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "dialog"))

	out.Reset()
	require.NoError(t, runList(context.Background(), featuresOptions{stdout: &out, json: true}, "limited", ""))
	assert.Equal(t, "view-transitions", gjson.GetBytes(out.Bytes(), "0.id").String())
	assert.Len(t, gjson.ParseBytes(out.Bytes()).Array(), 1)

	out.Reset()
	require.NoError(t, runList(context.Background(), featuresOptions{stdout: &out, json: true}, "", "CSS"))
	assert.Equal(t, "grid", gjson.GetBytes(out.Bytes(), "0.id").String())

	assert.Error(t, runList(context.Background(), featuresOptions{stdout: &out}, "bogus", ""))
}

func TestSearchAndShow(t *testing.T) {
	setup(t)

	var out bytes.Buffer
	require.NoError(t, runSearch(context.Background(), featuresOptions{stdout: &out}, "grid"))
	assert.Contains(t, out.String(), "CSS Grid")

	out.Reset()
	require.NoError(t, runShow(context.Background(), featuresOptions{stdout: &out}, "dialog", nil))
	assert.Contains(t, out.String(), "<dialog> (dialog)")
	assert.Contains(t, out.String(), "Newly Available")
	assert.Contains(t, out.String(), "since:     2022-03-14")
	assert.Contains(t, out.String(), "- Use a modal library")

	assert.Error(t, runShow(context.Background(), featuresOptions{stdout: &out}, "nope", nil))
}

func TestShowBrowserSupport(t *testing.T) {
	setup(t)

	var out bytes.Buffer
	browsers := map[string]string{"safari": "15.3", "chrome": "120"}
	require.NoError(t, runShow(context.Background(), featuresOptions{stdout: &out, json: true}, "dialog", browsers))
	res := gjson.ParseBytes(out.Bytes())
	assert.Equal(t, "dialog", res.Get("id").String())
	assert.True(t, res.Get(`supportedIn.chrome 120`).Bool())
	assert.False(t, res.Get(`supportedIn.safari 15\.3`).Bool())
	assert.True(t, res.Get(`supportedIn.safari 15\.3`).Exists())

	out.Reset()
	require.NoError(t, runShow(context.Background(), featuresOptions{stdout: &out}, "dialog", map[string]string{"firefox": "98"}))
	assert.Contains(t, out.String(), "supported in:")
	assert.Contains(t, out.String(), "firefox 98")

	assert.Error(t, runShow(context.Background(), featuresOptions{stdout: &out}, "dialog", map[string]string{"chrome": "latest"}))
}

func TestShowFetchesMissingFeatureFromWebstatus(t *testing.T) {
	setup(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/features":
			fmt.Fprint(w, `{"data": [{"feature_id": "grid", "name": "Grid", "baseline": {"status": "widely"}}]}`)
		case "/features/popover":
			fmt.Fprint(w, `{"feature_id": "popover", "name": "Popover", "baseline": {"status": "newly", "low_date": "2024-04-16"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	viper.Set(config.KeySource, "webstatus")
	viper.Set(config.KeyWebstatusBaseURL, srv.URL)
	viper.Set(config.KeyWebstatusRPS, 0)

	var out bytes.Buffer
	require.NoError(t, runShow(context.Background(), featuresOptions{stdout: &out, json: true}, "popover", nil))
	assert.Equal(t, "newly", gjson.GetBytes(out.Bytes(), "status").String())

	assert.Error(t, runShow(context.Background(), featuresOptions{stdout: &out}, "missing", nil))
}

func TestStatus(t *testing.T) {
	setup(t)

	var out bytes.Buffer
	require.NoError(t, runStatus(context.Background(), featuresOptions{stdout: &out, json: true}, []string{"Grid", "transitions", "nope"}))

	res := gjson.ParseBytes(out.Bytes())
	assert.Equal(t, "widely", res.Get("0.status").String())
	assert.True(t, res.Get("0.isBaseline").Bool())
	assert.Equal(t, "limited", res.Get("1.status").String())
	assert.Equal(t, "unknown", res.Get("2.status").String())
	assert.Equal(t, `Feature "nope" not found`, res.Get("2.reason").String())
}

func TestStats(t *testing.T) {
	setup(t)

	var out bytes.Buffer
	require.NoError(t, runStats(context.Background(), featuresOptions{stdout: &out, json: true}))
	assert.Equal(t, int64(3), gjson.GetBytes(out.Bytes(), "registry.total").Int())
	assert.Equal(t, int64(1), gjson.GetBytes(out.Bytes(), "registry.byStatus.newly").Int())
}

func TestCommandTree(t *testing.T) {
	setup(t)

	cmd := NewCmdFeatures()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"show", "grid", "--json"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Equal(t, "CSS Grid", gjson.GetBytes(out.Bytes(), "name").String())
}
