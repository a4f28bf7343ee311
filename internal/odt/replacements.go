package odt

import (
	"sort"
	"strings"
)

// Replacement maps one literal placeholder token to its rendered value.
type Replacement struct {
	Token string `json:"token"`
	Value string `json:"value"`
}

// Replacements is an ordered token -> value mapping.
type Replacements []Replacement

// Set replaces the value of an existing token or appends a new one.
func (r *Replacements) Set(token, value string) {
	for i := range *r {
		if (*r)[i].Token == token {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, Replacement{Token: token, Value: value})
}

// Get returns the value for token.
func (r Replacements) Get(token string) (string, bool) {
	for _, rep := range r {
		if rep.Token == token {
			return rep.Value, true
		}
	}
	return "", false
}

// Tokens returns the tokens in insertion order.
func (r Replacements) Tokens() []string {
	tokens := make([]string, len(r))
	for i, rep := range r {
		tokens[i] = rep.Token
	}
	return tokens
}

// Map returns the replacements as a plain map.
func (r Replacements) Map() map[string]string {
	m := make(map[string]string, len(r))
	for _, rep := range r {
		m[rep.Token] = rep.Value
	}
	return m
}

// Apply replaces every token in text in a single left-to-right pass. Inserted values
// are never rescanned. When two tokens match at the same offset the longer one wins.
func (r Replacements) Apply(text string) string {
	var pairs []string
	for _, rep := range r.longestFirst() {
		if rep.Token == "" {
			continue
		}
		pairs = append(pairs, rep.Token, rep.Value)
	}
	if len(pairs) == 0 {
		return text
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func (r Replacements) longestFirst() Replacements {
	sorted := append(Replacements(nil), r...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Token) > len(sorted[j].Token)
	})
	return sorted
}

// Lint reports values that literally contain another token. Such values are not
// expanded (there is no second pass) but usually indicate a template authoring mistake.
func Lint(r Replacements) []string {
	var problems []string
	for _, rep := range r {
		for _, other := range r {
			if other.Token != "" && strings.Contains(rep.Value, other.Token) {
				problems = append(problems, rep.Token+" value contains token "+other.Token)
			}
		}
	}
	return problems
}

// Unresolved returns the tokens that still occur in text.
func Unresolved(text string, tokens []string) []string {
	var left []string
	for _, t := range tokens {
		if t != "" && strings.Contains(text, t) {
			left = append(left, t)
		}
	}
	return left
}
