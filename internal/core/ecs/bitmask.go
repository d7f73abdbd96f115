package ecs

// bitmask256 holds one bit per ComponentID.
type bitmask256 [4]uint64

func (m *bitmask256) set(id ComponentID) {
	m[id>>6] |= uint64(1) << (id & 63)
}

func (m *bitmask256) unset(id ComponentID) {
	m[id>>6] &^= uint64(1) << (id & 63)
}

func (m bitmask256) has(id ComponentID) bool {
	return m[id>>6]&(uint64(1)<<(id&63)) != 0
}

// contains reports whether every bit of sub is also set in m.
func (m bitmask256) contains(sub bitmask256) bool {
	return (m[0]&sub[0]) == sub[0] &&
		(m[1]&sub[1]) == sub[1] &&
		(m[2]&sub[2]) == sub[2] &&
		(m[3]&sub[3]) == sub[3]
}
