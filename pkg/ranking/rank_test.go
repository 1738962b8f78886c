package ranking

import (
	"testing"

	"github.com/google/uuid"

	"github.com/gabekutner/roommatefinder-backend/models"
)

func fixtureProfile(identifier, dorm string, interests []string, major, state string) models.Profile {
	return models.Profile{
		ID:           uuid.New(),
		Identifier:   identifier,
		HasAccount:   true,
		DormBuilding: dorm,
		Interests:    interests,
		Major:        major,
		State:        state,
	}
}

func requester() models.Profile {
	return fixtureProfile("example@gmail.com", "4", []string{"1", "2", "3"}, "Computer Engineering", "CA")
}

// Each test varies exactly one signal and holds the other three constant.

func TestRankingDormVar(t *testing.T) {
	r := requester()
	first := fixtureProfile("first", "4", []string{"1", "2", "3"}, "Computer Engineering", "FL")
	second := fixtureProfile("second", "6", []string{"1", "2", "3"}, "Computer Engineering", "FL")

	ranked := Rank(&r, []models.Profile{second, first}, nil)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked profiles, got %d", len(ranked))
	}
	if ranked[0].Identifier != "first" {
		t.Fatalf("expected dorm-matching profile first, got %s", ranked[0].Identifier)
	}
}

func TestRankingInterestsVar(t *testing.T) {
	r := requester()
	first := fixtureProfile("first", "4", []string{"1", "2", "3"}, "Computer Engineering", "FL")
	second := fixtureProfile("second", "4", []string{"1", "2"}, "Computer Engineering", "FL")

	ranked := Rank(&r, []models.Profile{second, first}, nil)
	if ranked[0].Identifier != "first" {
		t.Fatalf("expected profile with more shared interests first, got %s", ranked[0].Identifier)
	}
}

func TestRankingMajorVariability(t *testing.T) {
	r := requester()
	first := fixtureProfile("first", "4", []string{"1", "2", "3"}, "Computer Engineering", "FL")
	second := fixtureProfile("second", "4", []string{"1", "2", "3"}, "Business", "FL")

	ranked := Rank(&r, []models.Profile{second, first}, nil)
	if ranked[0].Identifier != "first" {
		t.Fatalf("expected matching major first, got %s", ranked[0].Identifier)
	}
}

func TestRankingStateVariability(t *testing.T) {
	// The state signal rewards geographic diversity: out-of-state sorts first.
	r := requester()
	first := fixtureProfile("first", "4", []string{"1", "2", "3"}, "Computer Engineering", "FL")
	second := fixtureProfile("second", "4", []string{"1", "2", "3"}, "Computer Engineering", "CA")

	ranked := Rank(&r, []models.Profile{second, first}, nil)
	if ranked[0].Identifier != "first" {
		t.Fatalf("expected out-of-state profile first, got %s", ranked[0].Identifier)
	}
}

func TestRankingExcludesSelfAndIncomplete(t *testing.T) {
	r := requester()
	incomplete := fixtureProfile("incomplete", "4", []string{"1"}, "Business", "FL")
	incomplete.HasAccount = false
	other := fixtureProfile("other", "6", nil, "Business", "FL")

	ranked := Rank(&r, []models.Profile{r, incomplete, other}, nil)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 profile after exclusions, got %d", len(ranked))
	}
	if ranked[0].Identifier != "other" {
		t.Fatalf("unexpected survivor %s", ranked[0].Identifier)
	}
}

func TestRankingExcludesAcceptedConnections(t *testing.T) {
	r := requester()
	friend := fixtureProfile("friend", "4", []string{"1", "2", "3"}, "Computer Engineering", "FL")
	pending := fixtureProfile("pending", "6", nil, "Business", "FL")

	conns := []models.Connection{
		{ID: uuid.New(), SenderID: friend.ID, ReceiverID: r.ID, Accepted: true},
		{ID: uuid.New(), SenderID: r.ID, ReceiverID: pending.ID, Accepted: false},
	}
	ranked := Rank(&r, []models.Profile{friend, pending}, conns)
	if len(ranked) != 1 {
		t.Fatalf("expected accepted connection excluded, got %d profiles", len(ranked))
	}
	if ranked[0].Identifier != "pending" {
		t.Fatalf("pending request should stay rankable, got %s", ranked[0].Identifier)
	}
}

func TestRankingDormDominatesOtherSignals(t *testing.T) {
	// A dorm match must beat a candidate winning every weaker signal.
	r := requester()
	dormOnly := fixtureProfile("dorm-only", "4", nil, "Business", "CA")
	everythingElse := fixtureProfile("everything-else", "6", []string{"1", "2", "3"}, "Computer Engineering", "FL")

	ranked := Rank(&r, []models.Profile{everythingElse, dormOnly}, nil)
	if ranked[0].Identifier != "dorm-only" {
		t.Fatalf("dorm match should dominate, got %s", ranked[0].Identifier)
	}
}
