package renderer

// Slot names one of the two physical feedback textures.
type Slot int

// PingPong tracks which physical texture currently plays the read role.
// Swapping changes the roles only; no texture data moves.
type PingPong struct {
	readIndex Slot // holds the most recently completed pass
	passes    int
}

// NewPingPong starts with slot 0 as the read texture.
func NewPingPong() *PingPong {
	return &PingPong{}
}

// Read returns the slot to sample from.
func (p *PingPong) Read() Slot { return p.readIndex }

// Write returns the slot to render into.
func (p *PingPong) Write() Slot { return 1 - p.readIndex }

// Swap exchanges the roles after a pass has been written.
func (p *PingPong) Swap() {
	p.readIndex = 1 - p.readIndex
	p.passes++
}

// Passes returns the number of completed feedback passes.
func (p *PingPong) Passes() int { return p.passes }
