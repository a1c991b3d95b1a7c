// Package extract implements the rule-based candidate information extractor.
//
// Extraction is best-effort pattern matching over a single utterance: each
// recognized field has exactly one compiled rule, rules run against a
// lower-cased copy of the text, and a field already present in the known
// record is never re-extracted or overwritten.
package extract

import (
	"regexp"
	"strings"

	"talentscout/internal/types"
)

// rule binds a candidate field to its trigger pattern. The first capture
// group, trimmed of surrounding whitespace, becomes the field value.
type rule struct {
	Field   string
	Pattern *regexp.Regexp
}

// fieldRules holds one rule per standard field, applied in order. Patterns
// match against lower-cased text, so extracted values are lower-case too.
var fieldRules = []rule{
	{types.FieldName, regexp.MustCompile(`(?:my name is |i am |i'm |call me )([a-z\s]+)`)},
	{types.FieldEmail, regexp.MustCompile(`([a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,})`)},
	{types.FieldPhone, regexp.MustCompile(`(\+?\d[\d\s\-()]{8,}\d)`)},
	{types.FieldExperience, regexp.MustCompile(`(\d+)\s*(?:years?|yrs?)`)},
	{types.FieldPosition, regexp.MustCompile(`(?:position|role|job)(?:\s+is|\s+as)?\s+([a-z\s/]+?)(?:\.|,|$)`)},
	{types.FieldLocation, regexp.MustCompile(`(?:from|in|at|located in)\s+([a-z\s,]+)`)},
}

// techKeywords is the fixed technology vocabulary that marks an utterance as
// a tech-stack description.
var techKeywords = []string{
	"python", "java", "javascript", "react", "angular", "vue",
	"node", "django", "flask", "spring", "sql", "mongodb",
	"postgresql", "mysql", "aws", "azure", "docker", "kubernetes",
	"typescript", "c++", "c#", "ruby", "php", "golang", "rust",
}

// techPhrases also trigger tech-stack capture even without a keyword hit.
var techPhrases = []string{"tech stack", "technologies", "languages", "frameworks"}

// Extract scans one utterance for fields not already present in known and
// returns only the newly discovered values. It never removes or alters
// existing fields; if nothing matches it returns an empty record.
func Extract(utterance string, known types.CandidateRecord) types.CandidateRecord {
	lowered := strings.ToLower(utterance)
	extracted := types.CandidateRecord{}

	for _, rule := range fieldRules {
		if known.Has(rule.Field) {
			continue
		}
		if m := rule.Pattern.FindStringSubmatch(lowered); m != nil {
			extracted[rule.Field] = strings.TrimSpace(m[1])
		}
	}

	// Tech stack is special: any keyword or phrase hit captures the entire
	// original utterance verbatim, not a parsed list.
	if !known.Has(types.FieldTechStack) && mentionsTechnology(lowered) {
		extracted[types.FieldTechStack] = utterance
	}

	return extracted
}

func mentionsTechnology(lowered string) bool {
	for _, kw := range techKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	for _, phrase := range techPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
