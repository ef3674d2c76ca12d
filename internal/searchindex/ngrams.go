package searchindex

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NgramLength is the width of the window slid across every name variant
const NgramLength = 3

var (
	acronymPattern = regexp.MustCompile(`([A-Z])[a-z]+`)
	majorVersion   = regexp.MustCompile(`^v[0-9]+$`)
)

// DeriveNgrams returns the unique n-grams of every searchable view of a
// canonical name, in first-seen order.
//
// "net/http::Client" is read as the segments ":net", ":http", ":Client". Dots
// inside import paths ("github.com") separate segments too, so "." only ever
// appears in the qualified and call-style views. A member name follows "#"
// (or "::" when the next character is not uppercase), as in
// "net/http::Client#Do". Members keep the space-delimited views of their owner
// segments but not the ":" ones, so ":Cl" stays exclusive to the owner's own
// entry.
//
// Types and members also get the qualified view a Go programmer would type:
// "http.Client" for a type, "http.Get" for a package function and
// "Client.Do" for a method.
func DeriveNgrams(name string) []string {
	owner, member, sigil := splitMember(name)
	set := newNgramSet()

	var ownerTokens []string
	if owner != "" {
		ownerTokens = tokenize(":" + namespaceToSigils(owner))
	}

	if sigil == 0 {
		for _, tok := range ownerTokens {
			set.addToken(tok)
		}
		set.addQualified(qualifiedName(owner, ""))
		return set.list
	}

	for _, tok := range ownerTokens {
		if strings.HasPrefix(tok, " ") {
			set.addToken(tok)
		} else {
			set.addWindows(stripSigil(tok))
		}
	}
	for _, tok := range tokenize(string(sigil) + member) {
		set.addToken(tok)
	}

	// Leading-dot and call-style views, e.g. ".Do" and "Do(".
	lower := strings.ToLower(member)
	for _, v := range []string{"." + member, member + "(", "." + lower, lower + "("} {
		set.addWindows(v)
	}
	set.addQualified(qualifiedName(owner, member))

	return set.list
}

// qualifiedName joins the innermost owner element and the member (or, for a
// type, the package name and the type name) with ".". Packages have no
// qualified form and return "".
func qualifiedName(owner, member string) string {
	parts := strings.Split(owner, "::")
	if member != "" {
		return packageName(parts[len(parts)-1]) + "." + member
	}
	if len(parts) < 2 {
		return ""
	}
	return packageName(parts[len(parts)-2]) + "." + parts[len(parts)-1]
}

// packageName guesses the package identifier from an import path: the last
// element, skipping a major version suffix and anything after a dot
// ("gopkg.in/yaml.v3" -> "yaml", "github.com/x/lru/v2" -> "lru").
func packageName(importPath string) string {
	elems := strings.Split(importPath, "/")
	name := elems[len(elems)-1]
	if len(elems) > 1 && majorVersion.MatchString(name) {
		name = elems[len(elems)-2]
	}
	name, _, _ = strings.Cut(name, ".")
	return name
}

// splitMember separates "Owner#member" or "Owner::member" (lowercase member)
// into its parts. Names without a member return sigil 0.
func splitMember(name string) (owner, member string, sigil rune) {
	for i := 0; i < len(name); i++ {
		switch {
		case name[i] == '#':
			return name[:i], name[i+1:], '#'
		case name[i] == ':' && i+2 < len(name) && name[i+1] == ':':
			next, _ := utf8.DecodeRuneInString(name[i+2:])
			if next != ':' && !unicode.IsUpper(next) {
				return name[:i], name[i+2:], ':'
			}
			i++
		}
	}
	return name, "", 0
}

// namespaceToSigils rewrites namespace and path separators, including the
// dots of host names, to ":"
func namespaceToSigils(name string) string {
	return strings.NewReplacer("::", ":", "/", ":", ".", ":").Replace(name)
}

// tokenize expands a sigiled string into all of its views and cuts each view
// into segment tokens.
func tokenize(base string) []string {
	views := []string{base}
	views = appendMapped(views, strings.ToLower)
	views = appendMapped(views, acronym)
	views = appendMapped(views, func(s string) string {
		return strings.NewReplacer(":", " ", "#", " ").Replace(s)
	})
	views = appendMapped(views, func(s string) string {
		return strings.ReplaceAll(s, "_", "")
	})

	var tokens []string
	for _, v := range views {
		tokens = append(tokens, splitTokens(v)...)
	}
	return tokens
}

// appendMapped doubles views by appending f applied to each existing view
func appendMapped(views []string, f func(string) string) []string {
	n := len(views)
	for i := 0; i < n; i++ {
		views = append(views, f(views[i]))
	}
	return views
}

// acronym collapses each capitalized word to its initial: "ActiveRecord" -> "AR"
func acronym(s string) string {
	return acronymPattern.ReplaceAllString(s, "$1")
}

// splitTokens cuts s before every sigil character
func splitTokens(s string) []string {
	var tokens []string
	start := 0
	for i, r := range s {
		if i > start && isSigil(r) {
			tokens = append(tokens, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

func isSigil(r rune) bool {
	return r == ':' || r == '#' || r == ' '
}

func stripSigil(tok string) string {
	r, size := utf8.DecodeRuneInString(tok)
	if isSigil(r) {
		return tok[size:]
	}
	return tok
}

// ngramSet collects unique n-grams in insertion order
type ngramSet struct {
	seen map[string]struct{}
	list []string
}

func newNgramSet() *ngramSet {
	return &ngramSet{seen: make(map[string]struct{})}
}

func (s *ngramSet) add(ngram string) {
	if _, ok := s.seen[ngram]; ok {
		return
	}
	s.seen[ngram] = struct{}{}
	s.list = append(s.list, ngram)
}

// addToken adds a sigiled or bare token. Sigiled tokens also contribute their
// segment prefix (sigil, first character, space) and are padded with spaces
// when shorter than an n-gram. A lone sigil contributes nothing.
func (s *ngramSet) addToken(tok string) {
	runes := []rune(tok)
	if len(runes) == 0 || !isSigil(runes[0]) {
		s.addWindows(tok)
		return
	}
	if len(runes) == 1 {
		return
	}

	s.add(string([]rune{runes[0], runes[1], ' '}))
	for len(runes) < NgramLength {
		runes = append(runes, ' ')
	}
	s.addRunes(runes)
}

// addQualified adds the windows of a qualified name and its lowercase form
func (s *ngramSet) addQualified(name string) {
	if name == "" || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return
	}
	s.addWindows(name)
	s.addWindows(strings.ToLower(name))
}

func (s *ngramSet) addWindows(text string) {
	s.addRunes([]rune(text))
}

func (s *ngramSet) addRunes(runes []rune) {
	for i := 0; i+NgramLength <= len(runes); i++ {
		s.add(string(runes[i : i+NgramLength]))
	}
}
