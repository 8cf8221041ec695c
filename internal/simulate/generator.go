package simulate

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/arena/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Generation ranges.
const (
	maxRevenueCents  = 2_500_000 // 25k per sale
	maxReferralCount = 4
	maxOtherCount    = 3
	attributedChance = 4 // one in N referrals credit a teammate
)

var (
	testimonialKinds = []model.TestimonialKind{model.TestimonialGoogle, model.TestimonialVideo, model.TestimonialGold} //nolint:gochecknoglobals // lookup table
	cardKinds        = []model.CardKind{model.CardBlue, model.CardWhite, model.CardYellow, model.CardRed}              //nolint:gochecknoglobals // lookup table
)

// Generate builds a dataset from cfg. The same seed yields the same teams,
// values and record IDs, so a rerun against a populated server is rejected
// as duplicates instead of doubling the totals.
func Generate(cfg *Config) (Dataset, error) {
	if err := cfg.Period.Validate(); err != nil {
		return Dataset{}, fmt.Errorf("generate: %w", err)
	}
	if cfg.Teams <= 0 || cfg.Members <= 0 {
		return Dataset{}, fmt.Errorf("generate: need at least one team and member, got %d/%d", cfg.Teams, cfg.Members)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // reproducible test data
	ids := idSource(cfg.Seed)
	start, end := cfg.Period.Window()
	days := int(end.Sub(start).Hours()/24) + 1

	ds := Dataset{
		Teams:   make([]model.Team, cfg.Teams),
		Members: make(map[string][]string, cfg.Teams),
		Records: make([]model.ActivityRecord, 0, cfg.Records),
		Cards:   make([]model.CardEvent, 0, cfg.Cards),
	}
	for i := range ds.Teams {
		id := fmt.Sprintf("team-%02d", i+1)
		ds.Teams[i] = model.Team{ID: id, Name: fmt.Sprintf("Team %d", i+1)}
		members := make([]string, cfg.Members)
		for j := range members {
			members[j] = fmt.Sprintf("%s-m%02d", id, j+1)
		}
		ds.Members[id] = members
	}

	for range cfg.Records {
		team := ds.Teams[rng.IntN(len(ds.Teams))].ID
		members := ds.Members[team]
		id, err := uuid.NewRandomFromReader(ids)
		if err != nil {
			return Dataset{}, fmt.Errorf("generate record id: %w", err)
		}
		rec := model.ActivityRecord{
			ID:         id.String(),
			SubjectID:  members[rng.IntN(len(members))],
			TeamID:     team,
			Category:   model.Categories[rng.IntN(len(model.Categories))],
			OccurredOn: start.AddDate(0, 0, rng.IntN(days)),
		}
		fillRecord(rng, &rec, members)
		ds.Records = append(ds.Records, rec)
	}

	for range cfg.Cards {
		id, err := uuid.NewRandomFromReader(ids)
		if err != nil {
			return Dataset{}, fmt.Errorf("generate card id: %w", err)
		}
		ds.Cards = append(ds.Cards, model.CardEvent{
			ID:       id.String(),
			TeamID:   ds.Teams[rng.IntN(len(ds.Teams))].ID,
			Kind:     cardKinds[rng.IntN(len(cardKinds))],
			IssuedOn: start.AddDate(0, 0, rng.IntN(days)),
		})
	}
	return ds, nil
}

// idSource is a seeded byte stream kept apart from the value generator, so
// IDs do not shift the generated values.
func idSource(seed uint64) io.Reader {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	copy(key[8:], "arena-simulate-ids")
	return rand.NewChaCha8(key)
}

func fillRecord(rng *rand.Rand, rec *model.ActivityRecord, members []string) {
	switch rec.Category {
	case model.CategoryRevenue:
		amount := decimal.New(rng.Int64N(maxRevenueCents)+1, -2)
		rec.Amount = &amount
	case model.CategoryNPS:
		score := rng.IntN(11)
		rec.Score = &score
		rec.CitedMember = rng.IntN(2) == 0
	case model.CategoryTestimonial:
		rec.Kind = testimonialKinds[rng.IntN(len(testimonialKinds))]
	case model.CategoryReferral:
		rec.Referral = &model.ReferralCounts{
			Collected:      rng.IntN(maxReferralCount + 1),
			ToConsultation: rng.IntN(maxReferralCount + 1),
			ToSurgery:      rng.IntN(maxReferralCount + 1),
		}
		if rng.IntN(attributedChance) == 0 {
			rec.AttributedSubjectID = members[rng.IntN(len(members))]
		}
	case model.CategoryOther:
		rec.Other = &model.OtherCounts{
			Unilovers:         rng.IntN(maxOtherCount + 1),
			Ambassadors:       rng.IntN(maxOtherCount + 1),
			InstagramMentions: rng.IntN(maxOtherCount + 1),
		}
	}
}

// dateOf formats a day the way the API expects it.
func dateOf(t time.Time) string {
	return t.Format(time.DateOnly)
}
