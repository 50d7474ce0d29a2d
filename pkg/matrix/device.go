package matrix

// DeviceMatrix is what an element stamps into.
type DeviceMatrix interface {
	AddElement(i, j int, value float64) // 1-based indexing
	AddRHS(i int, value float64)
}
