package webstatus

import (
	"context"

	"github.com/pkg/errors"

	"github.com/compatguard/cli/pkg/features"
)

// ErrNoClient is returned by a Source built without a client.
var ErrNoClient = errors.New("webstatus source has no client")

// Source loads a registry from webstatus.dev. Query narrows the feature set
// using the webstatus.dev search syntax; empty loads everything.
type Source struct {
	Client *Client
	Query  string
}

// NewSource returns a Source backed by client, or by a default client when
// client is nil.
func NewSource(client *Client, query string) Source {
	if client == nil {
		client = NewClient()
	}
	return Source{Client: client, Query: query}
}

func (s Source) Load(ctx context.Context) ([]features.Record, error) {
	if s.Client == nil {
		return nil, ErrNoClient
	}
	return s.Client.SearchFeatures(ctx, s.Query)
}

// Find looks up a single feature, including ones the search query left out.
func (s Source) Find(ctx context.Context, id string) (features.Record, bool, error) {
	if s.Client == nil {
		return features.Record{}, false, ErrNoClient
	}
	return s.Client.GetFeature(ctx, id)
}

// APICalls reports the requests made by the underlying client.
func (s Source) APICalls() int64 {
	if s.Client == nil {
		return 0
	}
	return s.Client.Calls()
}
