// Package output converts fused features and statistics to their text and
// wire representations.
package output

// TSVHeader is the canonical header row for text/TSV outputs.
// Keep this as the single source of truth; all writers should use it.
const TSVHeader = "ref_name\tstart\tend\tbase\tscore"

// StatsTSVHeader is the header row for text statistics.
const StatsTSVHeader = "region\tfeature_count\tbases_covered\tscore_min\tscore_max\tscore_mean\tscore_std_dev\tscore_sum"

// Missing marks an absent base or score in text outputs.
const Missing = "."
