// Package ranking orders candidate roommate profiles against a requesting
// profile. It is pure: given the same inputs it always produces the same
// ordering and touches nothing outside its arguments.
package ranking

import (
	"sort"

	"github.com/google/uuid"

	"github.com/gabekutner/roommatefinder-backend/models"
)

// score holds the lexicographic sort key for one candidate. There is no
// weighted scalar: dorm dominates, then shared interests, then major, then
// the out-of-state bonus.
type score struct {
	dormMatch       int
	commonInterests int
	majorMatch      int
	statePromotion  int
}

func (a score) less(b score) bool {
	if a.dormMatch != b.dormMatch {
		return a.dormMatch < b.dormMatch
	}
	if a.commonInterests != b.commonInterests {
		return a.commonInterests < b.commonInterests
	}
	if a.majorMatch != b.majorMatch {
		return a.majorMatch < b.majorMatch
	}
	return a.statePromotion < b.statePromotion
}

// Rank filters and orders the candidate pool for the requester. Excluded:
// the requester itself, profiles without a completed account, and anyone
// the requester already has an accepted connection with (either
// direction). Ties keep pool order.
//
// statePromotion deliberately rewards a *different* state than the
// requester's: geographic diversity, not similarity.
func Rank(requester *models.Profile, pool []models.Profile, connections []models.Connection) []models.Profile {
	connected := make(map[uuid.UUID]bool)
	for i := range connections {
		c := &connections[i]
		if !c.Accepted {
			continue
		}
		if c.SenderID == requester.ID {
			connected[c.ReceiverID] = true
		} else if c.ReceiverID == requester.ID {
			connected[c.SenderID] = true
		}
	}

	interests := make(map[string]bool, len(requester.Interests))
	for _, code := range requester.Interests {
		interests[code] = true
	}

	type scored struct {
		profile models.Profile
		key     score
	}
	candidates := make([]scored, 0, len(pool))
	for i := range pool {
		p := pool[i]
		if p.ID == requester.ID || !p.HasAccount || connected[p.ID] {
			continue
		}
		var key score
		if p.DormBuilding == requester.DormBuilding {
			key.dormMatch = 1
		}
		for _, code := range p.Interests {
			if interests[code] {
				key.commonInterests++
			}
		}
		if p.Major == requester.Major {
			key.majorMatch = 1
		}
		if p.State != requester.State {
			key.statePromotion = 1
		}
		candidates = append(candidates, scored{profile: p, key: key})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[j].key.less(candidates[i].key)
	})

	out := make([]models.Profile, len(candidates))
	for i, c := range candidates {
		out[i] = c.profile
	}
	return out
}
