package vollgas

// SetSteps sets the step counter of c.
func SetSteps(c *Circuit, n int64) { c.setSteps(n) }

// SetHostLittleEndian overrides host byte order detection and returns a
// function that restores it.
func SetHostLittleEndian(v bool) func() {
	old := hostLittleEndian
	hostLittleEndian = v
	return func() { hostLittleEndian = old }
}
