package output

import (
	"io"

	"qseq/internal/feature"
	"qseq/internal/jsonutil"
	"qseq/pkg/api"
)

// ToAPIFeature converts a fused feature to the stable wire schema (v1).
// Base and score are attached only when present.
func ToAPIFeature(f feature.Feature) api.FeatureV1 {
	v := api.FeatureV1{
		ID:      f.ID,
		RefName: f.RefName,
		Start:   f.Start,
		End:     f.End,
	}
	if f.Base != 0 {
		v.Base = string(f.Base)
	}
	if f.HasScore {
		s := f.Score
		v.Score = &s
	}
	return v
}

// ToAPIStats converts statistics to the stable wire schema (v1).
func ToAPIStats(s feature.Stats) api.StatsV1 {
	return api.StatsV1{
		ScoreMin:        s.ScoreMin,
		ScoreMax:        s.ScoreMax,
		ScoreSum:        s.ScoreSum,
		ScoreSumSquares: s.ScoreSumSquares,
		ScoreMean:       s.ScoreMean,
		ScoreStdDev:     s.ScoreStdDev,
		FeatureCount:    s.FeatureCount,
		BasesCovered:    s.BasesCovered,
	}
}

// ToAPIRegionStats labels s with its region.
func ToAPIRegionStats(r feature.Region, s feature.Stats) api.RegionStatsV1 {
	return api.RegionStatsV1{
		Region:  r.String(),
		RefName: r.RefName,
		Start:   r.Start,
		End:     r.End,
		StatsV1: ToAPIStats(s),
	}
}

// WriteJSON writes a single JSON array of v1 features (pretty-indented).
func WriteJSON(w io.Writer, list []feature.Feature) error {
	out := make([]api.FeatureV1, 0, len(list))
	for _, f := range list {
		out = append(out, ToAPIFeature(f))
	}
	return jsonutil.EncodePretty(w, out)
}
