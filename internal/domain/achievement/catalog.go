package achievement

// Type identifies a catalog entry.
type Type string

// Category groups achievement types for display.
type Category string

const (
	CategorySales       Category = "sales"
	CategoryReferral    Category = "referral"
	CategoryStreak      Category = "streak"
	CategoryGoal        Category = "goal"
	CategoryTestimonial Category = "testimonial"
	CategoryNPS         Category = "nps"
)

const (
	Sales10K  Type = "sales_10k"
	Sales50K  Type = "sales_50k"
	Sales100K Type = "sales_100k"

	Referral1  Type = "referral_1"
	Referral5  Type = "referral_5"
	Referral10 Type = "referral_10"

	Streak3  Type = "streak_3"
	Streak5  Type = "streak_5"
	Streak7  Type = "streak_7"
	Streak10 Type = "streak_10"

	Goal100 Type = "goal_100"
	Goal120 Type = "goal_120"

	TestimonialGold1 Type = "testimonial_gold_1"
	NPSPromoter5     Type = "nps_promoter_5"
)

// Definition is an immutable catalog entry.
type Definition struct {
	Type        Type     `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Points      int      `json:"points"`
	Category    Category `json:"category"`
}

var catalog = []Definition{ //nolint:gochecknoglobals // static catalog shipped with the engine
	{Sales10K, "First 10k", "Sold 10 000 in a single month", 10, CategorySales},
	{Sales50K, "Half Way There", "Sold 50 000 in a single month", 30, CategorySales},
	{Sales100K, "Six Figures", "Sold 100 000 in a single month", 60, CategorySales},

	{Referral1, "First Referral", "Collected a referral", 5, CategoryReferral},
	{Referral5, "Networker", "Collected 5 referrals in a month", 15, CategoryReferral},
	{Referral10, "Connector", "Collected 10 referrals in a month", 30, CategoryReferral},

	{Streak3, "On a Roll", "Hit the daily target 3 business days in a row", 10, CategoryStreak},
	{Streak5, "Full Week", "Hit the daily target 5 business days in a row", 20, CategoryStreak},
	{Streak7, "Unstoppable", "Hit the daily target 7 business days in a row", 35, CategoryStreak},
	{Streak10, "Relentless", "Hit the daily target 10 business days in a row", 50, CategoryStreak},

	{Goal100, "Goal Reached", "Reached 100% of the monthly goal", 40, CategoryGoal},
	{Goal120, "Overachiever", "Reached 120% of the monthly goal", 60, CategoryGoal},

	{TestimonialGold1, "Golden Voice", "Collected a gold testimonial", 25, CategoryTestimonial},
	{NPSPromoter5, "Crowd Favorite", "Received 5 promoter NPS scores in a month", 20, CategoryNPS},
}

var byType = func() map[Type]Definition { //nolint:gochecknoglobals // index over the static catalog
	m := make(map[Type]Definition, len(catalog))
	for _, d := range catalog {
		m[d.Type] = d
	}
	return m
}()

// Catalog returns a copy of every definition in display order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the definition for t.
func Lookup(t Type) (Definition, bool) {
	d, ok := byType[t]
	return d, ok
}
