// Package persona loads persona definitions and serves them from an immutable, process-wide snapshot.
package persona

import (
	"fmt"
	"sort"

	"github.com/jonathan/persona-authenticity/internal/config"
	"github.com/jonathan/persona-authenticity/internal/language"
	"github.com/jonathan/persona-authenticity/internal/textutil"
	"github.com/jonathan/persona-authenticity/internal/types"
)

// profiled reports which output languages the authenticity scorer can identify
var profiled = language.NewIdentifier(0)

// Store is a read-only snapshot of persona profiles. It is built once and is safe for
// concurrent readers without locking.
type Store struct {
	profiles map[string]*types.PersonaProfile
	ids      []string
}

// NewStore validates profiles and builds a snapshot. Intensities are clamped to [0,100].
// Any malformed profile fails the whole load with a *config.Error.
func NewStore(profiles []types.PersonaProfile) (*Store, error) {
	s := &Store{profiles: make(map[string]*types.PersonaProfile, len(profiles))}

	for i := range profiles {
		p := profiles[i]
		field := fmt.Sprintf("personas[%d]", i)

		if err := p.Validate(); err != nil {
			return nil, &config.Error{Field: field, Message: "invalid persona", Cause: err}
		}
		if _, dup := s.profiles[p.ID]; dup {
			return nil, config.Errorf(field, "duplicate persona id %q", p.ID)
		}
		base, err := language.Base(p.Language)
		if err != nil {
			return nil, &config.Error{Field: field + ".language", Message: "invalid language", Cause: err}
		}
		if !profiled.Supported(base) {
			return nil, config.Errorf(field+".language", "language %q cannot be identified in generated text", base)
		}
		if p.SourceLocale != "" {
			if _, err := language.Base(p.SourceLocale); err != nil {
				return nil, &config.Error{Field: field + ".source_locale", Message: "invalid locale", Cause: err}
			}
		}
		if overlap := overlapping(p.SignaturePhrases, p.ForbiddenPhrases); len(overlap) > 0 {
			return nil, config.Errorf(field, "signature and forbidden phrases overlap: %v", overlap)
		}

		p.Intensity = p.Intensity.Clamped()
		s.profiles[p.ID] = &p
		s.ids = append(s.ids, p.ID)
	}

	sort.Strings(s.ids)
	return s, nil
}

// Get returns the profile with the given id. The returned profile must not be modified.
func (s *Store) Get(id string) (*types.PersonaProfile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return p, nil
}

// ByLocale returns every profile for a locale, ordered by id
func (s *Store) ByLocale(locale string) []*types.PersonaProfile {
	var out []*types.PersonaProfile
	for _, id := range s.ids {
		if p := s.profiles[id]; p.Locale == locale {
			out = append(out, p)
		}
	}
	return out
}

// IDs returns all persona ids in sorted order
func (s *Store) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of loaded personas
func (s *Store) Len() int {
	return len(s.ids)
}

// overlapping returns phrases present in both lists, compared as case-folded word sequences.
func overlapping(signature, forbidden []string) []string {
	seen := make(map[string]bool, len(forbidden))
	for _, f := range forbidden {
		seen[key(f)] = true
	}
	var out []string
	for _, s := range signature {
		if seen[key(s)] {
			out = append(out, s)
		}
	}
	return out
}

func key(phrase string) string {
	return fmt.Sprint(textutil.Words(phrase))
}
