// Package dictionary implements the per-language custom dictionary used to
// undo over-capitalisation of common words in transcripts.
//
// A Dictionary is built once at startup and never mutated afterwards, so it
// is safe for concurrent use without locking.
package dictionary

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"dictator/pkg/language"
)

var englishWords = []string{
	"the", "be", "to", "of", "and", "a", "in", "that", "have", "I",
	"it", "for", "not", "on", "with", "he", "as", "you", "do", "CSAT",
}

var spanishWords = []string{
	"el", "la", "de", "que", "y", "a", "en", "un", "ser", "porfa",
	"no", "haber", "por", "con", "su", "para", "como", "estar", "ratito", "CSAT",
}

// Dictionary maps each language to its membership set.
type Dictionary struct {
	sets map[language.Language]map[string]struct{}
}

// Default returns the built-in word lists.
func Default() *Dictionary {
	d := &Dictionary{sets: make(map[language.Language]map[string]struct{}, 2)}
	d.add(language.English, englishWords)
	d.add(language.Spanish, spanishWords)
	return d
}

// New builds a Dictionary from explicit word lists. Entries are stored
// verbatim; lookups use the lowercased token, so an entry with uppercase
// letters never matches.
func New(words map[language.Language][]string) *Dictionary {
	d := &Dictionary{sets: make(map[language.Language]map[string]struct{}, len(words))}
	for lang, list := range words {
		d.add(lang, list)
	}
	return d
}

func (d *Dictionary) add(lang language.Language, words []string) {
	set, ok := d.sets[lang]
	if !ok {
		set = make(map[string]struct{}, len(words))
		d.sets[lang] = set
	}
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			set[w] = struct{}{}
		}
	}
}

// extension is the on-disk format of a dictionary extension file.
type extension struct {
	English []string `yaml:"english"`
	Spanish []string `yaml:"spanish"`
}

// LoadFile returns the built-in dictionary extended with the words listed in
// the YAML file at path. An empty path returns Default().
func LoadFile(path string) (*Dictionary, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dictionary: open %q: %w", path, err)
	}
	defer f.Close()

	d, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("dictionary: parse %q: %w", path, err)
	}
	return d, nil
}

// Load is LoadFile for an already opened reader.
func Load(r io.Reader) (*Dictionary, error) {
	var ext extension
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ext); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	d := Default()
	d.add(language.English, ext.English)
	d.add(language.Spanish, ext.Spanish)
	return d, nil
}

// Contains reports whether the lowercased token is listed for lang.
func (d *Dictionary) Contains(token string, lang language.Language) bool {
	_, ok := d.sets[lang][strings.ToLower(token)]
	return ok
}

// Correct lowercases every whitespace-separated token of text whose
// lowercase form is in lang's set and leaves all other tokens untouched.
// Tokens are rejoined with single spaces.
func (d *Dictionary) Correct(text string, lang language.Language) string {
	words := strings.Fields(text)
	for i, w := range words {
		if d.Contains(w, lang) {
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, " ")
}

// Words returns a sorted copy of lang's entries.
func (d *Dictionary) Words(lang language.Language) []string {
	set := d.sets[lang]
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
