package temperature

import "math"

// Filter smooths readings with an exponential moving average. A
// non-finite reading poisons the output to -Inf and the next reading
// starts over.
type Filter struct {
	initialized bool
	celsius     float64
}

// NewFilter returns a filter with no readings.
func NewFilter() *Filter {
	return &Filter{celsius: math.Inf(-1)}
}

// Celsius returns the filtered temperature, -Inf before the first reading.
func (f *Filter) Celsius() float64 {
	return f.celsius
}

// Process folds one reading into the average.
func (f *Filter) Process(celsius float64) {
	if !f.initialized {
		f.celsius = celsius
		f.initialized = true
		return
	}
	if math.IsInf(celsius, 0) || math.IsNaN(celsius) {
		f.initialized = false
		celsius = math.Inf(-1)
	}
	f.celsius = f.celsius*0.75 + celsius*0.25
}
