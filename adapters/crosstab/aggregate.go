package crosstab

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"xlmongo/domain/pivot"
	"xlmongo/domain/tabular"
)

// aggregate applies agg to the cells of one group. Numeric aggregators only
// look at Number cells. Undefined results (empty input, std of one value)
// come back as 0.
func aggregate(agg pivot.Aggregator, cells []tabular.Value) float64 {
	var result float64

	switch agg {
	case pivot.AggCount:
		n := 0
		for _, v := range cells {
			if !v.IsEmpty() {
				n++
			}
		}
		result = float64(n)
	case pivot.AggNUnique:
		seen := make(map[string]struct{})
		for _, v := range cells {
			if !v.IsEmpty() {
				seen[string(v.Kind)+"\x00"+v.Text()] = struct{}{}
			}
		}
		result = float64(len(seen))
	default:
		result = aggregateNumbers(agg, numbers(cells))
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0
	}
	return result
}

func aggregateNumbers(agg pivot.Aggregator, data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	var (
		result float64
		err    error
	)
	switch agg {
	case pivot.AggSum:
		result = floats.Sum(data)
	case pivot.AggMean:
		result, err = stats.Mean(data)
	case pivot.AggMin:
		result, err = stats.Min(data)
	case pivot.AggMax:
		result, err = stats.Max(data)
	case pivot.AggMedian:
		result, err = stats.Median(data)
	case pivot.AggStd:
		// sample standard deviation (n-1), undefined for a single value
		if len(data) < 2 {
			return 0
		}
		result = stat.StdDev(data, nil)
	case pivot.AggVar:
		if len(data) < 2 {
			return 0
		}
		result = stat.Variance(data, nil)
	case pivot.AggFirst:
		result = data[0]
	case pivot.AggLast:
		result = data[len(data)-1]
	}
	if err != nil {
		return 0
	}
	return result
}

func numbers(cells []tabular.Value) []float64 {
	data := make([]float64, 0, len(cells))
	for _, v := range cells {
		if v.IsNumeric() && !math.IsNaN(v.Num) {
			data = append(data, v.Num)
		}
	}
	return data
}
