package features

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// FileSource loads records from a YAML catalog or a web-features data.json
// dump, chosen by file extension.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) ([]Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", s.Path)
	}

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseWebFeatures(data)
	}
	return nil, errors.Errorf("unsupported feature file %s: expected .yaml, .yml or .json", s.Path)
}

type yamlCatalog struct {
	Features []yamlRecord `yaml:"features"`
}

type yamlRecord struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	Status         string            `yaml:"status"`
	AvailableSince string            `yaml:"available_since"`
	Category       string            `yaml:"category"`
	Alternatives   []string          `yaml:"alternatives"`
	Polyfills      []string          `yaml:"polyfills"`
	MigrationSteps []string          `yaml:"migration_steps"`
	MDNURL         string            `yaml:"mdn_url"`
	Support        map[string]string `yaml:"support"`
}

// ParseYAML decodes a catalog of the form:
//
//	features:
//	  - id: dialog
//	    name: <dialog>
//	    status: newly
//	    available_since: 2022-03-14
func ParseYAML(data []byte) ([]Record, error) {
	var catalog yamlCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, errors.Wrap(err, "failed to parse feature catalog")
	}

	records := make([]Record, 0, len(catalog.Features))
	for i, f := range catalog.Features {
		status, err := ParseStatus(f.Status)
		if err != nil {
			return nil, errors.Wrapf(err, "feature #%d (%s)", i+1, f.ID)
		}
		since, err := ParseSince(f.AvailableSince)
		if err != nil {
			return nil, errors.Wrapf(err, "feature #%d (%s)", i+1, f.ID)
		}

		category := Category(f.Category)
		if category == "" {
			category = GuessCategory(f.ID, f.Name)
		}

		records = append(records, Record{
			ID:             f.ID,
			Name:           f.Name,
			Status:         status,
			AvailableSince: since,
			Category:       category,
			Alternatives:   f.Alternatives,
			Polyfills:      f.Polyfills,
			MigrationSteps: f.MigrationSteps,
			MDNURL:         f.MDNURL,
			Support:        f.Support,
		})
	}
	return records, nil
}

// ParseWebFeatures reads the web-features package data layout. Baseline
// "high" maps to widely, "low" to newly and false to notBaseline. Features
// without a baseline field are treated as limited.
func ParseWebFeatures(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid web-features JSON")
	}

	root := gjson.ParseBytes(data)
	if f := root.Get("features"); f.IsObject() {
		root = f
	}

	var records []Record
	var parseErr error
	root.ForEach(func(key, feature gjson.Result) bool {
		id := key.String()
		if feature.Get("kind").String() == "moved" || feature.Get("kind").String() == "split" {
			return true
		}

		status := Limited
		switch baseline := feature.Get("status.baseline"); baseline.Type {
		case gjson.False:
			status = NotBaseline
		case gjson.String:
			s, err := ParseStatus(baseline.String())
			if err != nil {
				parseErr = errors.Wrapf(err, "feature %s", id)
				return false
			}
			status = s
		}

		sinceRaw := feature.Get("status.baseline_high_date").String()
		if sinceRaw == "" {
			sinceRaw = feature.Get("status.baseline_low_date").String()
		}
		since, err := ParseSince(strings.TrimPrefix(sinceRaw, "≤"))
		if err != nil {
			parseErr = errors.Wrapf(err, "feature %s", id)
			return false
		}

		name := feature.Get("name").String()
		if name == "" {
			name = id
		}

		var support map[string]string
		if s := feature.Get("status.support"); s.IsObject() {
			support = map[string]string{}
			s.ForEach(func(browser, v gjson.Result) bool {
				support[browser.String()] = v.String()
				return true
			})
		}

		records = append(records, Record{
			ID:             id,
			Name:           name,
			Status:         status,
			AvailableSince: since,
			Category:       GuessCategory(id, name),
			MDNURL:         firstMDNURL(feature),
			Support:        support,
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func firstMDNURL(feature gjson.Result) string {
	if u := feature.Get("mdn_url"); u.Exists() {
		return u.String()
	}
	return ""
}

// GuessCategory derives a category from naming conventions when a source
// does not carry one.
func GuessCategory(id, name string) Category {
	id = strings.ToLower(id)
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(id, "css-") || strings.Contains(name, "css") || strings.HasSuffix(id, "-function"):
		return CategoryCSS
	case strings.HasPrefix(id, "html-") || strings.Contains(id, "element") || strings.HasPrefix(name, "<"):
		return CategoryHTML
	case strings.Contains(id, "api") || strings.Contains(name, "api") || strings.Contains(name, "observer"):
		return CategoryWebAPI
	case strings.Contains(id, "javascript") || strings.Contains(id, "ecmascript") || strings.Contains(name, "javascript"):
		return CategoryJavaScript
	}
	return ""
}
