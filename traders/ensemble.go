package traders

// Ensemble builds n traders from the same factory and excludes all of them
// from performance reports. Use it for crowds of background agents whose
// individual numbers are uninteresting.
func Ensemble[T interface{ Core() *Trader }](n int, build func(i int) T) []T {
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		tr := build(i)
		tr.Core().ExcludeFromResults()
		out = append(out, tr)
	}
	return out
}
