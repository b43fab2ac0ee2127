// Package domain contains entity without logic, just meta-data
package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxUserIDLen          = 128
	MaxDisplayNameLen     = 64
	FallbackNamePrefixLen = 6
)

// UserID is supplied by the authorization layer and never minted here.
type UserID string

// Placeholders some clients send before the auth layer has resolved the user.
var unauthenticatedIDs = map[UserID]struct{}{
	"undefined":       {},
	"null":            {},
	"anonymous":       {},
	"unauthenticated": {},
}

func (id UserID) Empty() bool { return strings.TrimSpace(string(id)) == "" }

// Authenticated reports whether id can take part in a room.
func (id UserID) Authenticated() bool {
	if id.Empty() || len(id) > MaxUserIDLen {
		return false
	}
	_, placeholder := unauthenticatedIDs[UserID(strings.ToLower(strings.TrimSpace(string(id))))]
	return !placeholder
}

// FallbackName is the label shown when no display name is known.
func FallbackName(id UserID) string {
	s := string(id)
	if utf8.RuneCountInString(s) > FallbackNamePrefixLen {
		s = string([]rune(s)[:FallbackNamePrefixLen])
	}
	return "User " + s
}

// NormalizeDisplayName trims and caps a client supplied name.
func NormalizeDisplayName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		name = string([]rune(name)[:MaxDisplayNameLen])
	}
	return name
}
