package service

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/phase"
)

// phaseSuffixes are stripped from the end of a raw phase name, longest first
var phaseSuffixes = []string{"_PHASE", "PHASE"}

// insuranceSuffixes mark an insurance-supplement sub-label attached to a phase name
var insuranceSuffixes = []string{"_INSURANCE_SUPPLEMENT", "_INS_SUPP", "_INSURANCE"}

// phaseSynonyms maps legacy spellings to canonical keys
var phaseSynonyms = map[string]phase.Key{
	"LEADS":             phase.KeyLead,
	"PROSPECTS":         phase.KeyProspect,
	"APPROVE":           phase.KeyApproved,
	"APPROVAL":          phase.KeyApproved,
	"EXECUTE":           phase.KeyExecution,
	"EXECUTING":         phase.KeyExecution,
	"2ND":               phase.KeySupplement,
	"2ND_SUPP":          phase.KeySupplement,
	"2ND_SUPPLEMENT":    phase.KeySupplement,
	"SECOND_SUPP":       phase.KeySupplement,
	"SECOND_SUPPLEMENT": phase.KeySupplement,
	"SUPP":              phase.KeySupplement,
	"SUPPLEMENTS":       phase.KeySupplement,
	"COMPLETE":          phase.KeyCompletion,
	"COMPLETED":         phase.KeyCompletion,
}

var separatorRun = regexp.MustCompile(`[\s\-_]+`)

// PhaseNormalizer maps raw, possibly inconsistent phase names onto registry keys
type PhaseNormalizer struct {
	registry *phase.Registry
}

// NewPhaseNormalizer creates a normalizer for the given registry.
// A nil registry selects phase.DefaultRegistry().
func NewPhaseNormalizer(registry *phase.Registry) *PhaseNormalizer {
	if registry == nil {
		registry = phase.DefaultRegistry()
	}
	return &PhaseNormalizer{registry: registry}
}

// Normalize returns the canonical key for raw.
// It never fails: blank or unrecognized input resolves to the lifecycle start.
func (n *PhaseNormalizer) Normalize(raw *string) phase.Key {
	key, _ := n.Resolve(raw)
	return key
}

// Resolve is Normalize that also reports whether raw named a registered phase.
// Blank input is reported as recognized since it legitimately means "not started".
func (n *PhaseNormalizer) Resolve(raw *string) (phase.Key, bool) {
	start := n.registry.First().Key
	if raw == nil {
		return start, true
	}

	s := canonicalForm(*raw)
	if s == "" {
		return start, true
	}

	if n.registry.Contains(phase.Key(s)) {
		return phase.Key(s), true
	}

	s = trimAnySuffix(s, phaseSuffixes)
	s = trimAnySuffix(s, insuranceSuffixes)
	s = strings.Trim(s, "_")

	if key, ok := phaseSynonyms[s]; ok && n.registry.Contains(key) {
		return key, true
	}
	if n.registry.Contains(phase.Key(s)) {
		return phase.Key(s), true
	}
	return start, false
}

// canonicalForm applies NFKC, trims, upper-cases, and collapses separators to "_"
func canonicalForm(raw string) string {
	s := norm.NFKC.String(raw)
	s = strings.ToUpper(strings.TrimSpace(s))
	s = separatorRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func trimAnySuffix(s string, suffixes []string) string {
	for _, suffix := range suffixes {
		if len(s) > len(suffix) && strings.HasSuffix(s, suffix) {
			return strings.TrimSuffix(s, suffix)
		}
	}
	return s
}
