package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// IndexLabel is the header of the first CSV column.
const IndexLabel = "Index"

// WriteCSV writes the response data followed by the fitted parameters:
//
//	Index,drag,lift
//	0,10,1
//	1,10.5,1.1
//	2,12,1.4
//	f_est,9.75,0.95
//	alpha,0.25,0.05
//	p,1.584962500721156,1.584962500721156
//
// Data rows are labelled by level index, finest first; parameter rows by
// parameter name.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)

	header := append([]string{IndexLabel}, r.Keys()...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i := range r.Sizes {
		row[0] = strconv.Itoa(i)
		for j := range r.Responses {
			row[j+1] = formatFloat(r.Responses[j].Values[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	for p, name := range r.ParamNames {
		row[0] = name
		for j := range r.Responses {
			row[j+1] = formatFloat(r.Responses[j].Params[p])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
