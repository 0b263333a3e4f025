// Package sanitize decides which raw log files may be published, under what
// name, and runs the transform that makes them public.
//
// The decision is a lookup in an ordered rule table and never touches file
// content, so every publishable kind can be tested without running a
// transform.
package sanitize

import (
	"path"
	"sort"
	"strings"
)

// Kind selects the transform applied to a publishable file.
type Kind int

const (
	// PassThrough publishes content unchanged.
	PassThrough Kind = iota
	// GameLog runs the game log censor.
	GameLog
	// RuntimeLog runs the runtime log scrubber.
	RuntimeLog
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case GameLog:
		return "game"
	case RuntimeLog:
		return "runtime"
	default:
		return "passthrough"
	}
}

// Rule maps a raw file name, or a family of names sharing a prefix, to its
// public form.
type Rule struct {
	Match  string
	Prefix bool   // Match is a name prefix rather than an exact name
	Rename string // replacement extension, e.g. ".txt"; empty keeps the name
	Kind   Kind
}

func (r Rule) matches(name string) bool {
	if r.Prefix {
		return strings.HasPrefix(name, r.Match)
	}
	return name == r.Match
}

func (r Rule) publicName(name string) string {
	if r.Rename == "" {
		return name
	}
	return strings.TrimSuffix(name, path.Ext(name)) + r.Rename
}

// Plain .log files published with a .txt extension.
var renamedLogs = []string{
	"asset", "attack", "cloning", "dynamic", "econ", "economy", "harddel",
	"harddels", "initialize", "job_debug", "manifest", "map_errors", "mecha",
	"mob_tags", "overlay", "paper", "pda", "qdel", "shuttle", "signal",
	"signals", "silicon", "silo", "speech_indicators", "telecomms", "tool",
	"tools", "uplink", "virus",
}

// Reports published under their own name.
var verbatimReports = []string{
	"atmos.html", "botany.html", "cargo.html", "circuit.html", "crafting.html",
	"deaths.html", "dynamic.json", "engine.html", "experimentor.html",
	"gravity.html", "hallucinations.html", "hypertorus.html",
	"id_card_changes.html", "init_profiler.json", "init_times.json",
	"kudzu.html", "nanites.html", "newscaster.json", "portals.html",
	"presents.html", "profiler.json", "radiation.html", "records.html",
	"research.html", "round_end_data.html", "round_end_data.json",
	"sendmaps.json", "silo.json", "singulo.html", "supermatter.html",
	"target_zone_switch.json", "telesci.html", "wires.html",
}

// Rules is the publication table, exact names first. Anything not listed is
// not publishable.
var Rules = buildRules()

func buildRules() []Rule {
	rules := []Rule{
		{Match: "game.log", Rename: ".txt", Kind: GameLog},
		{Match: "runtime.log", Rename: ".txt", Kind: RuntimeLog},
	}
	for _, name := range renamedLogs {
		rules = append(rules, Rule{Match: name + ".log", Rename: ".txt"})
	}
	for _, name := range renamedLogs {
		rules = append(rules, Rule{Match: name + ".log.json"})
	}
	for _, name := range verbatimReports {
		rules = append(rules, Rule{Match: name})
	}

	// Profiler dumps carry a run id in their name.
	rules = append(rules, Rule{Match: "perf-", Prefix: true})
	return rules
}

var exactRules = indexExact(Rules)

func indexExact(rules []Rule) map[string]Rule {
	index := make(map[string]Rule, len(rules))
	for _, rule := range rules {
		if !rule.Prefix {
			index[rule.Match] = rule
		}
	}
	return index
}

// Decision is the outcome of classifying a publishable file.
type Decision struct {
	SourceName string
	PublicName string
	Kind       Kind
	Virtual    bool // derived from SourceName rather than read from disk
}

// ContentType is the Content-Type the public file is served with. HTML
// reports are served as plain text on purpose.
func (d Decision) ContentType() string {
	if strings.HasSuffix(d.PublicName, ".json") {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// Classify looks name up in the rule table. Exact names win over prefixes;
// ok is false when the file must not be published.
func Classify(name string) (Decision, bool) {
	if rule, ok := exactRules[name]; ok {
		return decide(rule, name), true
	}
	for _, rule := range Rules {
		if rule.Prefix && rule.matches(name) {
			return decide(rule, name), true
		}
	}
	return Decision{}, false
}

func decide(rule Rule, name string) Decision {
	return Decision{
		SourceName: name,
		PublicName: rule.publicName(name),
		Kind:       rule.Kind,
	}
}

var publicAliases = buildAliases(Rules)

func buildAliases(rules []Rule) map[string]string {
	aliases := make(map[string]string)
	for _, rule := range rules {
		if rule.Prefix || rule.Rename == "" {
			continue
		}
		aliases[rule.publicName(rule.Match)] = rule.Match
	}
	return aliases
}

// ResolvePublicName maps a renamed public name back to the raw file it is
// produced from, e.g. "game.txt" to "game.log".
func ResolvePublicName(public string) (string, bool) {
	source, ok := publicAliases[public]
	return source, ok
}

// Names of the condensed views of runtime.log.
const (
	CondensedText = "runtime.condensed.txt"
	CondensedJSON = "runtime.condensed.json"
)

// CondensedSource reports whether name is a condensed view, and if so returns
// the decision for it. Its SourceName is the runtime log it is built from.
func CondensedSource(name string) (Decision, bool) {
	switch name {
	case CondensedText, CondensedJSON:
		return Decision{
			SourceName: "runtime.log",
			PublicName: name,
			Kind:       RuntimeLog,
			Virtual:    true,
		}, true
	}
	return Decision{}, false
}

// PublishableNames returns every exact name in the table, sorted.
func PublishableNames() []string {
	names := make([]string, 0, len(exactRules))
	for name := range exactRules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
