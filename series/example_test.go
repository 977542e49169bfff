package series_test

import (
	"fmt"

	"github.com/arloliu/gridverify/series"
)

func ExampleNew() {
	s, err := series.New([]float64{4, 1, 2}, []float64{12, 10, 10.5})
	if err != nil {
		panic(err)
	}

	fmt.Println(s.Sizes())
	fmt.Println(s.RefinementRatios())
	// Output:
	// [1 2 4]
	// [2 2]
}

func ExampleFromRecords() {
	s, err := series.FromRecords(map[string][]float64{
		"dx":   {0.4, 0.2, 0.1},
		"drag": {1.32, 1.27, 1.25},
		"lift": {0.51, 0.55, 0.56},
	}, "dx")
	if err != nil {
		panic(err)
	}

	fmt.Println(s.SizeKey(), s.Keys())
	drag, _ := s.Response("drag")
	fmt.Println(drag)
	// Output:
	// dx [drag lift]
	// [1.25 1.27 1.32]
}
