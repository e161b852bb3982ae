package plot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Params configures the generated gnuplot script.
type Params struct {
	DataPath   string // TSV dataset produced by the tsv formatter
	OutputPath string // image written by gnuplot
	Terminal   string
	Title      string
	NumPeers   int
}

// Height is the y extent of the plot: one row per hop plus a margin row.
func (p Params) Height() int {
	return p.NumPeers + 1
}

// Dataset indexes follow the section order of the TSV output.
const lookupTemplate = `set terminal {{ .Terminal }}
set output "{{ .OutputPath }}"
set title "{{ .Title }}"
set datafile separator "\t"
set xlabel "Time since first log line (s)"
set ylabel "Peer (in order contacted)"
set xrange [0:*]
set yrange [0:{{ .Height }}]
set key outside right
set style arrow 1 nohead lw 4 lc rgb "#BBBBBB"
set style arrow 2 nohead lw 4 lc rgb "#1F77B4"
set style arrow 3 nohead lw 4 lc rgb "#1F77B4" dt 3
set style arrow 4 head filled size screen 0.008,15 lw 1 lc rgb "#D62728"
set style arrow 5 nohead lw 2 dt 2 lc rgb "#000000"
set style arrow 6 nohead lw 2 dt 2 lc rgb "#2CA02C"

data = "{{ .DataPath }}"

plot data index 0 using 2:1:($3-$2):(0) with vectors arrowstyle 1 title "dial", \
     data index 0 using 5:1:($6>=$5 ? $6-$5 : 0):(0) with vectors arrowstyle 2 title "query", \
     data index 0 using 5:1:($7>=0 ? $7-$5 : 0):(0):ytic(8) with vectors arrowstyle 3 title "query (unfinished)", \
     data index 0 using ($4>=0 ? $4 : 1/0):1 with points pt 2 ps 1.5 lc rgb "#D62728" title "dial error", \
     data index 0 using ($9>0 ? $6 : 1/0):1 with points pt 7 ps 1 lc rgb "#2CA02C" title "target", \
     data index 1 using 1:2:($3-$1):($4-$2) with vectors arrowstyle 4 title "causality", \
     data index 2 using 1:(0):(0):2 with vectors arrowstyle 5 title "context canceled", \
     data index 3 using 1:(0):(0):2 with vectors arrowstyle 6 title "K closest determined"
`

var lookupTmpl = template.Must(template.New("lookup").Parse(lookupTemplate))

// Write renders a gnuplot script for a lookup dataset.
func Write(w io.Writer, p Params) error {
	if p.DataPath == "" {
		return fmt.Errorf("gnuplot script needs a data file path")
	}
	if p.Terminal == "" {
		p.Terminal = "svg size 1200,800"
	}
	if p.OutputPath == "" {
		p.OutputPath = strings.TrimSuffix(p.DataPath, filepath.Ext(p.DataPath)) + ".svg"
	}
	if p.Title == "" {
		p.Title = "DHT lookup"
	}
	return lookupTmpl.Execute(w, p)
}

// WriteFile renders the script to path.
func WriteFile(path string, p Params) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create gnuplot script: %w", err)
	}
	if err := Write(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
