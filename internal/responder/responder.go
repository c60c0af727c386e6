// Package responder provides the canned reply generator and greeting seed
// for the MidiLand support widget.
//
// Matching is keyword-based against the lowercased input. The matcher is a
// pure text -> text function that always succeeds; the engine treats it as
// an opaque collaborator, so any classification strategy can replace it as
// long as that contract holds. The typing latency is owned by the engine's
// orchestrator, not by this package.
package responder

import (
	"context"
	"strings"
)

// Rule maps trigger keywords to a canned reply. The first rule whose any
// keyword occurs in the input wins, so rule order is significant (e.g.
// "berapa lama" must match before a bare "lama" ever would).
type Rule struct {
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

// Keyword is the reference Responder implementation.
type Keyword struct {
	rules    []Rule
	fallback string
}

// NewKeyword builds a keyword matcher. Empty rules or fallback fall back to
// the built-in table.
func NewKeyword(rules []Rule, fallback string) *Keyword {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultFallback
	}
	return &Keyword{rules: rules, fallback: fallback}
}

// Reply returns the canned reply for the given user text. It never fails.
func (k *Keyword) Reply(_ context.Context, text string) (string, error) {
	lowered := strings.ToLower(text)

	for _, r := range k.rules {
		for _, kw := range r.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lowered, strings.ToLower(kw)) {
				return r.Reply, nil
			}
		}
	}
	return k.fallback, nil
}
