package quadrature

// interval is a piece of the integration range in transformed
// coordinates together with its integral and error estimates
type interval struct {
	l, r  float64
	value float64
	err   float64
}

// intervalHeap is a max-heap of intervals ordered by error estimate
type intervalHeap []interval

func (h intervalHeap) Len() int           { return len(h) }
func (h intervalHeap) Less(i, j int) bool { return h[i].err > h[j].err }
func (h intervalHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *intervalHeap) Push(x any) {
	*h = append(*h, x.(interval))
}

func (h *intervalHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
