// Package classifier decides whether a query needs semantic retrieval at all.
//
// Conversational filler (greetings, thanks, acknowledgements, bare yes/no)
// cannot be improved by retrieval, so answering it from a canned response
// short-circuits both the embedding-provider call and the backend search.
package classifier

import (
	"github.com/hupe1980/semcache/internal/norm"
)

// Category groups filler phrases that share a canned response.
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryGreeting
	CategoryThanks
	CategoryFarewell
	CategoryAcknowledgement
	CategoryAffirmation
	CategoryNegation
)

// defaultFillers is the fixed allow-list of conversational filler. Matching
// is exact after normalization (trim + lowercase), never substring, so a
// domain question containing a filler word is not suppressed.
var defaultFillers = map[string]Category{
	"hi":             CategoryGreeting,
	"hello":          CategoryGreeting,
	"hey":            CategoryGreeting,
	"good morning":   CategoryGreeting,
	"good afternoon": CategoryGreeting,
	"good evening":   CategoryGreeting,
	"thanks":         CategoryThanks,
	"thank you":      CategoryThanks,
	"thx":            CategoryThanks,
	"ty":             CategoryThanks,
	"bye":            CategoryFarewell,
	"goodbye":        CategoryFarewell,
	"see you":        CategoryFarewell,
	"good night":     CategoryFarewell,
	"ok":             CategoryAcknowledgement,
	"okay":           CategoryAcknowledgement,
	"got it":         CategoryAcknowledgement,
	"cool":           CategoryAcknowledgement,
	"sounds good":    CategoryAcknowledgement,
	"yes":            CategoryAffirmation,
	"yeah":           CategoryAffirmation,
	"yep":            CategoryAffirmation,
	"sure":           CategoryAffirmation,
	"no":             CategoryNegation,
	"nope":           CategoryNegation,
	"nah":            CategoryNegation,
}

var defaultResponses = map[Category]string{
	CategoryGreeting:        "Hello! How can I help you today?",
	CategoryThanks:          "You're welcome! Let me know if there's anything else.",
	CategoryFarewell:        "Goodbye! Feel free to come back anytime.",
	CategoryAcknowledgement: "Great! Is there anything else I can help you with?",
	CategoryAffirmation:     "Understood. What would you like to do next?",
	CategoryNegation:        "No problem. Is there anything else I can help you with?",
	CategoryUnknown:         "How can I help you?",
}

// Options configures a Filter.
type Options struct {
	// ExtraFillers adds phrases to the allow-list. Phrases are normalized
	// before matching.
	ExtraFillers map[string]Category
	// Responses overrides the canned response for a category.
	Responses map[Category]string
}

// Filter classifies queries as filler or retrieval-worthy. It is pure and
// deterministic over normalized text, and safe for concurrent use after
// construction.
type Filter struct {
	fillers   map[string]Category
	responses map[Category]string
}

// New creates a Filter with the built-in filler allow-list.
func New(optFns ...func(o *Options)) *Filter {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	fillers := make(map[string]Category, len(defaultFillers)+len(opts.ExtraFillers))
	for phrase, category := range defaultFillers {
		fillers[phrase] = category
	}
	for phrase, category := range opts.ExtraFillers {
		fillers[norm.Query(phrase)] = category
	}

	responses := make(map[Category]string, len(defaultResponses))
	for category, response := range defaultResponses {
		responses[category] = response
	}
	for category, response := range opts.Responses {
		if response != "" {
			responses[category] = response
		}
	}

	return &Filter{
		fillers:   fillers,
		responses: responses,
	}
}

// NeedsSearch reports whether the query requires semantic retrieval. It
// returns false only for exact (normalized) matches of the filler allow-list.
func (f *Filter) NeedsSearch(query string) bool {
	_, ok := f.fillers[norm.Query(query)]
	return !ok
}

// Classify returns the filler category for the query, or CategoryUnknown if
// the query is not filler.
func (f *Filter) Classify(query string) Category {
	if category, ok := f.fillers[norm.Query(query)]; ok {
		return category
	}
	return CategoryUnknown
}

// DefaultResponse returns the canned reply for a filler query. The returned
// string is non-empty for every query NeedsSearch rejects.
func (f *Filter) DefaultResponse(query string) string {
	return f.responses[f.Classify(query)]
}
