package smooth

import "sync"

// BuildAll smooths one series per horizon. The recursion within a series
// is sequential, but the series are independent, so they run concurrently.
func BuildAll(series [][]float64, decay float64) ([][]float64, error) {
	// Validate once up front so goroutines cannot race on an error.
	if _, err := NewState(decay); err != nil {
		return nil, err
	}

	out := make([][]float64, len(series))
	var wg sync.WaitGroup
	wg.Add(len(series))

	for i := range series {
		go func(i int) {
			defer wg.Done()
			out[i], _ = Build(series[i], decay)
		}(i)
	}

	wg.Wait()
	return out, nil
}
