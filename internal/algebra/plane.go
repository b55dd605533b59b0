package algebra

// Plane holds 9 lanes (one y-row's worth), used to track the column parity
// plane and the theta-effect plane while building a parity-bare state
// (spec.md §4.4).
type Plane struct {
	Lanes [Columns]Lane
}

// AddTritValue adds value (mod 3) to the trit at (x, z).
func (p *Plane) AddTritValue(value, x, z int) {
	value = mod(value, 3)
	var toAdd Lane
	switch value {
	case 1:
		toAdd.Lane1 = uint32(1) << uint(z)
	case 2:
		toAdd.Lane2 = uint32(1) << uint(z)
	}
	p.Lanes[x] = AddLane(p.Lanes[x], toAdd)
}

// Set0, Set1, Set2 set the trit at (x, z) directly.
func (p *Plane) Set0(x, z int) { p.Lanes[x].Set0(z) }
func (p *Plane) Set1(x, z int) { p.Lanes[x].Set1(z) }
func (p *Plane) Set2(x, z int) { p.Lanes[x].Set2(z) }

// IsTritActive reports whether the trit at (x, z) is nonzero.
func (p *Plane) IsTritActive(x, z int) bool {
	bit := uint32(1) << uint(z)
	return (p.Lanes[x].Lane1&bit)|(p.Lanes[x].Lane2&bit) != 0
}

// GetTrit returns the value (0, 1 or 2) of the trit at (x, z).
func (p *Plane) GetTrit(x, z int) int {
	bit := uint32(1) << uint(z)
	if p.Lanes[x].Lane1&bit != 0 {
		return 1
	}
	if p.Lanes[x].Lane2&bit != 0 {
		return 2
	}
	return 0
}
