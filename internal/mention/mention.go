// Package mention resolves @mention tokens in outbound text to
// structured property references via the property-search endpoint.
package mention

import (
	"context"
	"net/url"
	"regexp"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
)

// mentionPattern matches @tokens such as @MLS-1234 or @lakeview-condo.
var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9][A-Za-z0-9_-]*)`)

// Extract returns the mention tokens in text, without the @ prefix, in
// order of appearance and deduplicated.
func Extract(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var tokens []string
	for _, m := range matches {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		tokens = append(tokens, m[1])
	}
	return tokens
}

// Getter is the slice of the transport client the resolver needs.
type Getter interface {
	Get(ctx context.Context, path string, out any) error
}

// Resolver looks up property records for mention tokens.
type Resolver struct {
	client Getter
}

// NewResolver creates a resolver backed by the given client.
func NewResolver(client Getter) *Resolver {
	return &Resolver{client: client}
}

// Search queries the property index for autocomplete candidates.
func (r *Resolver) Search(ctx context.Context, query string) ([]model.PropertyRef, error) {
	var out struct {
		Results []model.PropertyRef `json:"results"`
	}
	if err := r.client.Get(ctx, "/property-search/search?q="+url.QueryEscape(query), &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Lookup fetches one property by id.
func (r *Resolver) Lookup(ctx context.Context, id string) (*model.PropertyRef, error) {
	var out model.PropertyRef
	if err := r.client.Get(ctx, "/property-search/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Resolve maps every mention token in text to a property reference.
// Tokens that fail to resolve are skipped; mention resolution never
// blocks a send.
func (r *Resolver) Resolve(ctx context.Context, text string) []model.PropertyRef {
	var refs []model.PropertyRef
	for _, token := range Extract(text) {
		ref, err := r.Lookup(ctx, token)
		if err != nil || ref.ID == "" {
			continue
		}
		refs = append(refs, *ref)
	}
	return refs
}
