// Package scorestats summarizes score intervals into feature.Stats.
package scorestats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"qseq/internal/feature"
)

// Compute summarizes features. When clip is non-nil each interval is
// clipped to it first and intervals falling outside are ignored. Sums, mean
// and standard deviation are weighted by the number of bases each interval
// covers; min and max are over feature scores.
func Compute(features []feature.ScoreFeature, clip *feature.Region) feature.Stats {
	xs := make([]float64, 0, len(features))
	ws := make([]float64, 0, len(features))
	for _, f := range features {
		start, end := f.Start, f.End
		if clip != nil {
			var ok bool
			if start, end, ok = clip.Clip(start, end); !ok {
				continue
			}
		}
		if end <= start || math.IsNaN(f.Score) {
			continue
		}
		xs = append(xs, f.Score)
		ws = append(ws, float64(end-start))
	}
	if len(xs) == 0 {
		return feature.Stats{}
	}

	sq := make([]float64, len(xs))
	floats.MulTo(sq, xs, xs)

	s := feature.Stats{
		ScoreMin:        floats.Min(xs),
		ScoreMax:        floats.Max(xs),
		ScoreSum:        floats.Dot(xs, ws),
		ScoreSumSquares: floats.Dot(sq, ws),
		FeatureCount:    len(xs),
		BasesCovered:    int(floats.Sum(ws)),
	}
	if s.BasesCovered > 1 {
		s.ScoreMean, s.ScoreStdDev = stat.MeanStdDev(xs, ws)
	} else {
		s.ScoreMean = xs[0]
	}
	return s
}

// FromSums builds Stats from base-weighted sums, as accumulated by a
// database aggregate. The deviation matches Compute's unbiased weighted
// estimate.
func FromSums(minScore, maxScore, sum, sumSquares float64, count, bases int) feature.Stats {
	if count == 0 || bases == 0 {
		return feature.Stats{}
	}
	s := feature.Stats{
		ScoreMin:        minScore,
		ScoreMax:        maxScore,
		ScoreSum:        sum,
		ScoreSumSquares: sumSquares,
		ScoreMean:       sum / float64(bases),
		FeatureCount:    count,
		BasesCovered:    bases,
	}
	if bases > 1 {
		v := (sumSquares - sum*sum/float64(bases)) / float64(bases-1)
		s.ScoreStdDev = math.Sqrt(math.Max(v, 0))
	}
	return s
}
