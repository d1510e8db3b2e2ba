// Package resolve maps a name typed by a player to the characters it means.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// AmbiguityError indicates the name fits characters with different names.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("which %s? (%s)", e.Name, strings.Join(e.Candidates, ", "))
}

// NotFoundError indicates no character matched the name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("there is no %s here", e.Name)
}

// Characters returns the candidates a name refers to. A full name match
// (case-insensitive) wins over an ID match, which wins over a match on a
// single word of the name ("aria" finds "Aria Stormborn"). Several
// characters sharing the same name are all returned; a partial match that
// fits different names is an AmbiguityError.
func Characters(name string, candidates []*types.Character) ([]*types.Character, error) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return nil, &NotFoundError{Name: name}
	}

	var exact, byID, partial []*types.Character
	for _, c := range candidates {
		full := strings.ToLower(c.Name)
		switch {
		case full == query:
			exact = append(exact, c)
		case strings.ToLower(c.ID) == query:
			byID = append(byID, c)
		case hasWord(full, query):
			partial = append(partial, c)
		}
	}

	switch {
	case len(exact) > 0:
		return exact, nil
	case len(byID) > 0:
		return byID, nil
	case len(partial) == 0:
		return nil, &NotFoundError{Name: name}
	}

	if names := distinctNames(partial); len(names) > 1 {
		return nil, &AmbiguityError{Name: name, Candidates: names}
	}
	return partial, nil
}

func hasWord(nameLower, query string) bool {
	for _, word := range strings.Fields(nameLower) {
		if word == query {
			return true
		}
	}
	return false
}

func distinctNames(cs []*types.Character) []string {
	seen := make(map[string]bool, len(cs))
	var names []string
	for _, c := range cs {
		if !seen[c.Name] {
			seen[c.Name] = true
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)
	return names
}
