package app

import (
	"github.com/dkeye/callsignal/internal/domain"
	"github.com/rs/zerolog/log"
)

// Presence keeps the latest known display name per user.
// Entries are rebuilt from any later register or share-user-info event.
type Presence struct {
	names map[domain.UserID]string
}

func NewPresence() *Presence {
	return &Presence{names: make(map[domain.UserID]string)}
}

// Set is last-write-wins; empty names are ignored.
func (p *Presence) Set(user domain.UserID, name string) {
	name = domain.NormalizeDisplayName(name)
	if user.Empty() || name == "" {
		return
	}
	p.names[user] = name
	log.Debug().Str("module", "app.presence").Str("user", string(user)).Str("name", name).Msg("updated display name")
}

// Get returns the stored name or a label derived from the user id.
func (p *Presence) Get(user domain.UserID) string {
	if name, ok := p.names[user]; ok {
		return name
	}
	return domain.FallbackName(user)
}

func (p *Presence) Has(user domain.UserID) bool {
	_, ok := p.names[user]
	return ok
}

func (p *Presence) Delete(user domain.UserID) { delete(p.names, user) }

func (p *Presence) Reset() { clear(p.names) }
