package video

// rgba is a pre-packed RGBA8888 color, stored byte order matching the frame
// buffer layout (R,G,B,A).
type rgba = [4]byte

// dmgColors is the fixed four-shade DMG palette the background palette
// register indexes into: a pale-green family, lightest first.
var dmgColors = [4]rgba{
	{0xe0, 0xf8, 0xd0, 0xff},
	{0x88, 0xc0, 0x70, 0xff},
	{0x34, 0x68, 0x56, 0xff},
	{0x08, 0x18, 0x20, 0xff},
}

// shade maps a 2-bit background color index through BGP to a final shade
// index 0-3.
func shade(bgp byte, colorIndex uint8) uint8 {
	return (bgp >> (colorIndex * 2)) & 0x3
}
