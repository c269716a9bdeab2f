package writers

import (
	"bufio"
	"fmt"
	"io"

	"qseq/internal/jsonutil"
	"qseq/pkg/api"
)

// WriteRefNames writes reference names: one per line for text formats, a
// RefNamesV1 object for json and jsonl.
func WriteRefNames(format string, out io.Writer, refs []string) error {
	if refs == nil {
		refs = []string{}
	}
	switch format {
	case "json":
		return jsonutil.EncodePretty(out, api.RefNamesV1{RefNames: refs})
	case "jsonl":
		return jsonutil.EncodeLine(out, api.RefNamesV1{RefNames: refs})
	case "text", "bedgraph":
		bw := bufio.NewWriter(out)
		for _, r := range refs {
			if _, err := fmt.Fprintln(bw, r); err != nil {
				return err
			}
		}
		return bw.Flush()
	}
	return fmt.Errorf("unknown format %q for reference names", format)
}
