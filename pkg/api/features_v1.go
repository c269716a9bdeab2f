// Package api holds the stable JSON/JSONL wire schema.
package api

// FeatureV1 is the stable JSON/JSONL schema for fused features.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type FeatureV1 struct {
	ID      string   `json:"id"`
	RefName string   `json:"ref_name"`
	Start   int      `json:"start"`
	End     int      `json:"end"`
	Base    string   `json:"base,omitempty"`  // one letter; zip strategy only
	Score   *float64 `json:"score,omitempty"` // absent where no score covers the base
}

// StatsV1 is the stable schema for score statistics.
type StatsV1 struct {
	ScoreMin        float64 `json:"score_min"`
	ScoreMax        float64 `json:"score_max"`
	ScoreSum        float64 `json:"score_sum"`
	ScoreSumSquares float64 `json:"score_sum_squares"`
	ScoreMean       float64 `json:"score_mean"`
	ScoreStdDev     float64 `json:"score_std_dev"`
	FeatureCount    int     `json:"feature_count"`
	BasesCovered    int     `json:"bases_covered"`
}

// RegionStatsV1 pairs a region with the statistics of its scores.
type RegionStatsV1 struct {
	Region  string `json:"region"`
	RefName string `json:"ref_name"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	StatsV1
}

// RefNamesV1 lists the reference names a score source knows.
type RefNamesV1 struct {
	RefNames []string `json:"ref_names"`
}
