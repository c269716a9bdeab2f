package writers

import (
	"bufio"
	"fmt"
	"io"

	"qseq/internal/feature"
	"qseq/internal/jsonutil"
	"qseq/internal/output"
	"qseq/pkg/api"
)

// StatsRow is one statistics record. Region is nil for global statistics.
type StatsRow struct {
	Region *feature.Region
	Stats  feature.Stats
}

func (r StatsRow) label() string {
	if r.Region == nil {
		return "*"
	}
	return r.Region.String()
}

func init() {
	RegisterStats("text", writeStatsText)
	RegisterStats("bedgraph", writeStatsText)
	RegisterStats("json", writeStatsJSON)
	RegisterStats("jsonl", writeStatsJSONL)
}

func writeStatsText(out io.Writer, rows []StatsRow, header bool) error {
	bw := bufio.NewWriter(out)
	if header {
		if _, err := fmt.Fprintln(bw, output.StatsTSVHeader); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(bw, output.FormatStatsRowTSV(r.label(), r.Stats)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func toAPI(r StatsRow) any {
	if r.Region == nil {
		return output.ToAPIStats(r.Stats)
	}
	return output.ToAPIRegionStats(*r.Region, r.Stats)
}

// writeStatsJSON writes a lone global row as an object, anything else as an
// array.
func writeStatsJSON(out io.Writer, rows []StatsRow, _ bool) error {
	if len(rows) == 1 && rows[0].Region == nil {
		return jsonutil.EncodePretty(out, toAPI(rows[0]))
	}
	list := make([]api.RegionStatsV1, 0, len(rows))
	for _, r := range rows {
		if r.Region == nil {
			list = append(list, api.RegionStatsV1{Region: "*", StatsV1: output.ToAPIStats(r.Stats)})
			continue
		}
		list = append(list, output.ToAPIRegionStats(*r.Region, r.Stats))
	}
	return jsonutil.EncodePretty(out, list)
}

func writeStatsJSONL(out io.Writer, rows []StatsRow, _ bool) error {
	bw := bufio.NewWriter(out)
	for _, r := range rows {
		if err := jsonutil.EncodeLine(bw, toAPI(r)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
