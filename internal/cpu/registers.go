// Package cpu implements the Sharp LR35902 instruction decoder: registers,
// flags, the two opcode pages (unprefixed and CB-prefixed), and interrupt
// dispatch (spec.md §4.3).
package cpu

import "github.com/tsolberg/dmgo/internal/bit"

// Flag bit positions within F (spec.md §3).
const (
	flagZ = 7
	flagN = 6
	flagH = 5
	flagC = 4
)

// Bus is the subset of the MMU the CPU needs.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// CPU holds the eight 8-bit registers (exposed as four 16-bit pairs), the
// stack pointer, program counter, and the interrupt/halt flags.
type CPU struct {
	a, f byte
	b, c byte
	d, e byte
	h, l byte

	sp uint16
	pc uint16

	ime  bool
	halt bool

	mem Bus
}

// New creates a CPU bound to mem, with registers at their documented
// post-boot-ROM values so ROMs that skip the boot sequence still run.
func New(mem Bus) *CPU {
	c := &CPU{mem: mem}
	c.Reset()
	return c
}

// Reset restores the classic DMG post-boot register values.
func (c *CPU) Reset() {
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.ime = false
	c.halt = false
}

// PC reports the program counter, mainly for disassembly/debugging.
func (c *CPU) PC() uint16 { return c.pc }

// AF reads back as (A<<8)|(F&0xF0): the low nibble of F is always zero
// (spec.md §3).
func (c *CPU) getAF() uint16 { return bit.Combine(c.a, c.f&0xF0) }
func (c *CPU) setAF(v uint16) {
	c.a = bit.High(v)
	c.f = bit.Low(v) & 0xF0
}

func (c *CPU) getBC() uint16  { return bit.Combine(c.b, c.c) }
func (c *CPU) setBC(v uint16) { c.b, c.c = bit.High(v), bit.Low(v) }

func (c *CPU) getDE() uint16  { return bit.Combine(c.d, c.e) }
func (c *CPU) setDE(v uint16) { c.d, c.e = bit.High(v), bit.Low(v) }

func (c *CPU) getHL() uint16  { return bit.Combine(c.h, c.l) }
func (c *CPU) setHL(v uint16) { c.h, c.l = bit.High(v), bit.Low(v) }

func (c *CPU) flag(pos uint8) bool    { return bit.IsSet(pos, c.f) }
func (c *CPU) setFlag(pos uint8, v bool) {
	if v {
		c.f = bit.Set(pos, c.f)
	} else {
		c.f = bit.Reset(pos, c.f)
	}
}

func (c *CPU) setFlags(z, n, h, cy bool) {
	c.setFlag(flagZ, z)
	c.setFlag(flagN, n)
	c.setFlag(flagH, h)
	c.setFlag(flagC, cy)
}

// r8 indexes the regular 8-across register operand encoding used throughout
// both opcode pages: B, C, D, E, H, L, (HL), A.
func (c *CPU) r8(index uint8) byte {
	switch index & 0x7 {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.mem.Read(c.getHL())
	default:
		return c.a
	}
}

func (c *CPU) setR8(index uint8, v byte) {
	switch index & 0x7 {
	case 0:
		c.b = v
	case 1:
		c.c = v
	case 2:
		c.d = v
	case 3:
		c.e = v
	case 4:
		c.h = v
	case 5:
		c.l = v
	case 6:
		c.mem.Write(c.getHL(), v)
	default:
		c.a = v
	}
}

// r8Cycles is the extra cost of an operand touching (HL) instead of a plain
// register; callers add this to their base cost.
func r8Cycles(index uint8) int {
	if index&0x7 == 6 {
		return 4
	}
	return 0
}

// r16 indexes the four 16-bit pairs as they appear in the regular "rp"
// operand position (bits 5:4 of most opcodes): BC, DE, HL, SP.
func (c *CPU) r16(index uint8) uint16 {
	switch index & 0x3 {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		return c.getHL()
	default:
		return c.sp
	}
}

func (c *CPU) setR16(index uint8, v uint16) {
	switch index & 0x3 {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.sp = v
	}
}

// r16Stk is the "rp2" operand position used by PUSH/POP: BC, DE, HL, AF.
func (c *CPU) r16Stk(index uint8) uint16 {
	if index&0x3 == 3 {
		return c.getAF()
	}
	return c.r16(index)
}

func (c *CPU) setR16Stk(index uint8, v uint16) {
	if index&0x3 == 3 {
		c.setAF(v)
		return
	}
	c.setR16(index, v)
}

func (c *CPU) readImmediate() byte {
	v := c.mem.Read(c.pc)
	c.pc++
	return v
}

func (c *CPU) readImmediateWord() uint16 {
	lo := c.readImmediate()
	hi := c.readImmediate()
	return bit.Combine(hi, lo)
}

func (c *CPU) push(v uint16) {
	c.sp--
	c.mem.Write(c.sp, bit.High(v))
	c.sp--
	c.mem.Write(c.sp, bit.Low(v))
}

func (c *CPU) pop() uint16 {
	lo := c.mem.Read(c.sp)
	c.sp++
	hi := c.mem.Read(c.sp)
	c.sp++
	return bit.Combine(hi, lo)
}
