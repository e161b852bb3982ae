package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVFormatter writes only the peer table, one row per discovered peer.
type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)

	headers := []string{
		"hop", "dial_st", "dial_end", "dial_err", "query_st", "query_end",
		"query_unfinished", "peer_hash", "target", "kademlia_id",
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	for _, p := range r.Peers {
		record := []string{
			fmt.Sprintf("%d", p.Hop),
			fmt.Sprintf("%.2f", p.DialStart),
			fmt.Sprintf("%.2f", p.DialEnd),
			fmt.Sprintf("%.2f", p.DialError),
			fmt.Sprintf("%.2f", p.QueryStart),
			fmt.Sprintf("%.2f", p.QueryEnd),
			fmt.Sprintf("%.2f", p.QueryUnfinished),
			p.Label,
			fmt.Sprintf("%d", boolToInt(p.Target)),
			p.Key,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
