package cpu

import "github.com/tsolberg/dmgo/internal/addr"

// interruptDispatchCycles is charged whenever an interrupt is serviced
// (spec.md §4.3).
const interruptDispatchCycles = 20

// Step decodes and executes exactly one instruction (or, while halted,
// stands in for one), returning the machine cycles consumed. Interrupt
// dispatch is checked first, at the instruction boundary (spec.md §4.3, §5).
func (c *CPU) Step() int {
	if dispatched := c.serviceInterrupts(); dispatched {
		return interruptDispatchCycles
	}

	if c.halt {
		return 4
	}

	opcode := c.readImmediate()
	return c.execute(opcode)
}

// pendingInterrupts is the set of enabled-and-requested interrupt bits.
func (c *CPU) pendingInterrupts() byte {
	return c.mem.Read(addr.IE) & c.mem.Read(addr.IF) & 0x1F
}

// serviceInterrupts clears HALT as soon as an enabled interrupt is pending,
// regardless of IME, and additionally dispatches it when IME is set
// (spec.md §4.3).
func (c *CPU) serviceInterrupts() bool {
	pending := c.pendingInterrupts()
	if pending != 0 {
		c.halt = false
	}
	if !c.ime || pending == 0 {
		return false
	}

	var bitPos uint8
	for bitPos = 0; bitPos < 5; bitPos++ {
		if pending&(1<<bitPos) != 0 {
			break
		}
	}
	i := addr.Interrupt(bitPos)

	c.ime = false
	c.mem.Write(addr.IF, c.mem.Read(addr.IF)&^i.Bit())
	c.push(c.pc)
	c.pc = i.Vector()

	return true
}
