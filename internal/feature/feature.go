package feature

import "strconv"

// ScoreFeature is a scored interval from a score provider. It may extend
// past the boundaries of the region it was queried with.
type ScoreFeature struct {
	Start int
	End   int
	Score float64
}

// SequenceFeature carries base calls; Seq[i] is the base at Start+i.
type SequenceFeature struct {
	Start int
	End   int
	Seq   string
}

// BaseAt returns the base at reference position pos, or 0 when pos is not
// covered by the feature.
func (s SequenceFeature) BaseAt(pos int) byte {
	i := pos - s.Start
	if i < 0 || i >= len(s.Seq) {
		return 0
	}
	return s.Seq[i]
}

// Covers reports whether every position of [start, end) has a base call.
func (s SequenceFeature) Covers(start, end int) bool {
	return start >= s.Start && end-s.Start <= len(s.Seq)
}

// Feature is the fused record emitted downstream.
//
// Base is 0 when absent (pass-through features never carry one). HasScore
// distinguishes an absent score from a zero score.
type Feature struct {
	ID       string
	RefName  string
	Start    int
	End      int
	Base     byte
	Score    float64
	HasScore bool
}

// ID derives the feature identity from reference name and range.
func ID(refName string, start, end int) string {
	return refName + " " + strconv.Itoa(start) + "-" + strconv.Itoa(end)
}

// FromScore wraps a score feature without altering its fields.
func FromScore(refName string, sf ScoreFeature) Feature {
	return Feature{
		ID:       ID(refName, sf.Start, sf.End),
		RefName:  refName,
		Start:    sf.Start,
		End:      sf.End,
		Score:    sf.Score,
		HasScore: true,
	}
}

// Stats summarizes scores over a set of features. Means and deviations are
// weighted by covered bases.
type Stats struct {
	ScoreMin        float64
	ScoreMax        float64
	ScoreSum        float64
	ScoreSumSquares float64
	ScoreMean       float64
	ScoreStdDev     float64
	FeatureCount    int
	BasesCovered    int
}
