package report_test

import (
	"os"

	"github.com/arloliu/gridverify/discretization"
	"github.com/arloliu/gridverify/report"
	"github.com/arloliu/gridverify/series"
)

func ExampleWriteCSV() {
	s, err := series.New([]float64{1, 2}, []float64{5, 6}, series.WithResponseName("T"))
	if err != nil {
		panic(err)
	}
	a, err := discretization.NewCustom(s,
		discretization.WithModel(discretization.NewFinestValue),
		discretization.WithUncertaintyModel(discretization.NewFactorOfSafety))
	if err != nil {
		panic(err)
	}
	r, err := report.New("demo", a)
	if err != nil {
		panic(err)
	}

	if err := report.WriteCSV(os.Stdout, r); err != nil {
		panic(err)
	}
	// Output:
	// Index,T
	// 0,5
	// 1,6
	// f_est,5
	// order,0
}
