package cpu

// executeCB decodes and runs one CB-prefixed opcode: a regular 8-across
// pattern of bit/rotate/shift operations on B, C, D, E, H, L, (HL), A
// (spec.md §4.3).
func (c *CPU) executeCB(opcode byte) int {
	reg := opcode & 0x7
	group := opcode >> 6
	n := (opcode >> 3) & 0x7

	if group == 0 {
		value := c.r8(reg)
		var result byte
		switch n {
		case 0:
			result = c.rlc(value)
		case 1:
			result = c.rrc(value)
		case 2:
			result = c.rl(value)
		case 3:
			result = c.rr(value)
		case 4:
			result = c.sla(value)
		case 5:
			result = c.sra(value)
		case 6:
			result = c.swap(value)
		default:
			result = c.srl(value)
		}
		c.setR8(reg, result)
		return cbWriteCycles(reg)
	}

	if group == 1 { // BIT n, r
		c.bitTest(n, c.r8(reg))
		if reg == 6 {
			return 12
		}
		return 8
	}

	if group == 2 { // RES n, r
		c.setR8(reg, resBitOp(n, c.r8(reg)))
		return cbWriteCycles(reg)
	}

	// group == 3: SET n, r
	c.setR8(reg, setBitOp(n, c.r8(reg)))
	return cbWriteCycles(reg)
}

// cbWriteCycles is the cost of a CB-page operation that reads and writes
// back its operand: 8 for a plain register, 16 for (HL).
func cbWriteCycles(reg byte) int {
	if reg&0x7 == 6 {
		return 16
	}
	return 8
}
