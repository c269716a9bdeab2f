package output

import (
	"fmt"
	"strconv"

	"qseq/internal/feature"
)

// FormatScore renders a score with the shortest exact representation.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FormatFeatureRowTSV returns the TSV columns of f (no trailing newline).
func FormatFeatureRowTSV(f feature.Feature) string {
	base, score := Missing, Missing
	if f.Base != 0 {
		base = string(f.Base)
	}
	if f.HasScore {
		score = FormatScore(f.Score)
	}
	return fmt.Sprintf("%s\t%d\t%d\t%s\t%s", f.RefName, f.Start, f.End, base, score)
}

// FormatBedGraphRow returns f as a bedGraph data line. ok is false for
// features without a score.
func FormatBedGraphRow(f feature.Feature) (line string, ok bool) {
	if !f.HasScore {
		return "", false
	}
	return fmt.Sprintf("%s\t%d\t%d\t%s", f.RefName, f.Start, f.End, FormatScore(f.Score)), true
}

// FormatStatsRowTSV returns the TSV columns of s for label.
func FormatStatsRowTSV(label string, s feature.Stats) string {
	return fmt.Sprintf("%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s",
		label, s.FeatureCount, s.BasesCovered,
		FormatScore(s.ScoreMin), FormatScore(s.ScoreMax),
		FormatScore(s.ScoreMean), FormatScore(s.ScoreStdDev),
		FormatScore(s.ScoreSum),
	)
}
