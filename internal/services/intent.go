package services

import (
	"strings"
	"unicode"
)

// The original concierge understood three Spanish search verbs. Without an
// NLP runtime the lemmas are covered by their common conjugated forms.
var searchVerbForms = map[string]struct{}{
	"busco": {}, "buscas": {}, "busca": {}, "buscamos": {}, "buscan": {},
	"buscar": {}, "buscando": {}, "buscaba": {}, "buscaría": {},
	"necesito": {}, "necesitas": {}, "necesita": {}, "necesitamos": {},
	"necesitan": {}, "necesitar": {}, "necesitaría": {}, "necesitaba": {},
	"quiero": {}, "quieres": {}, "quiere": {}, "queremos": {}, "quieren": {},
	"querer": {}, "quisiera": {}, "querría": {},
}

// Filler words dropped from the extracted product name.
var productStopwords = map[string]struct{}{
	"un": {}, "una": {}, "unos": {}, "unas": {},
	"el": {}, "la": {}, "los": {}, "las": {},
	"de": {}, "del": {}, "al": {}, "a": {}, "en": {}, "y": {}, "o": {},
	"para": {}, "por": {}, "que": {}, "con": {}, "sin": {},
	"mi": {}, "tu": {}, "su": {}, "me": {}, "te": {}, "se": {},
	"estoy": {}, "favor": {}, "hola": {}, "algún": {}, "alguna": {},
}

// IsProductSearch reports whether the utterance expresses a product search
// ("estoy buscando...", "quiero un...", "necesito...").
func IsProductSearch(input string) bool {
	for _, tok := range tokenize(input) {
		if _, ok := searchVerbForms[tok]; ok {
			return true
		}
	}
	return false
}

// ExtractProductName returns the words following the search verb with
// filler words removed, or "" when nothing useful remains.
func ExtractProductName(input string) string {
	var name []string
	searching := false
	for _, tok := range tokenize(input) {
		if _, ok := searchVerbForms[tok]; ok {
			searching = true
			continue
		}
		if !searching {
			continue
		}
		if _, ok := productStopwords[tok]; ok {
			continue
		}
		name = append(name, tok)
	}
	return strings.Join(name, " ")
}

func tokenize(input string) []string {
	return strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
