// Package golangasm is the production asm.Emitter. It turns every emit call
// the machine package makes into a real *obj.Prog appended to a golang-asm
// Builder, so Assemble yields genuine x86-64 machine code. This mirrors
// wazero's own historical amd64 backend (internal/asm/golang_asm), which
// wrapped the same library before wazero grew its own encoder; here it is
// the sole encoder, since this module's scope never needed to drop the
// dependency.
package golangasm

import (
	"fmt"

	goasm "github.com/twitchyliquid64/golang-asm"
	"github.com/twitchyliquid64/golang-asm/obj"
	"github.com/twitchyliquid64/golang-asm/obj/x86"

	"wazerotools/x64machine/internal/asm"
)

// Emitter encodes real amd64 instructions via golang-asm.
type Emitter struct {
	b *goasm.Builder
}

var _ asm.Emitter = (*Emitter)(nil)

// New creates an Emitter with a fresh instruction buffer. initialCapacity is
// a size hint for the underlying builder, not a hard limit.
func New(initialCapacity int) (*Emitter, error) {
	b, err := goasm.NewBuilder("amd64", initialCapacity)
	if err != nil {
		return nil, fmt.Errorf("creating golang-asm builder: %w", err)
	}
	return &Emitter{b: b}, nil
}

// Assemble finalizes the instruction stream into a machine code byte slice.
func (e *Emitter) Assemble() ([]byte, error) {
	return e.b.Assemble(), nil
}

var gprReg = [...]int16{
	asm.RAX: x86.REG_AX, asm.RCX: x86.REG_CX, asm.RDX: x86.REG_DX, asm.RBX: x86.REG_BX,
	asm.RSP: x86.REG_SP, asm.RBP: x86.REG_BP, asm.RSI: x86.REG_SI, asm.RDI: x86.REG_DI,
	asm.R8: x86.REG_R8, asm.R9: x86.REG_R9, asm.R10: x86.REG_R10, asm.R11: x86.REG_R11,
	asm.R12: x86.REG_R12, asm.R13: x86.REG_R13, asm.R14: x86.REG_R14, asm.R15: x86.REG_R15,
}

var xmmReg = [...]int16{
	asm.XMM0: x86.REG_X0, asm.XMM1: x86.REG_X1, asm.XMM2: x86.REG_X2, asm.XMM3: x86.REG_X3,
	asm.XMM4: x86.REG_X4, asm.XMM5: x86.REG_X5, asm.XMM6: x86.REG_X6, asm.XMM7: x86.REG_X7,
	asm.XMM8: x86.REG_X8, asm.XMM9: x86.REG_X9, asm.XMM10: x86.REG_X10, asm.XMM11: x86.REG_X11,
	asm.XMM12: x86.REG_X12, asm.XMM13: x86.REG_X13, asm.XMM14: x86.REG_X14, asm.XMM15: x86.REG_X15,
}

// toAddr converts a Location into the obj.Addr golang-asm expects.
func toAddr(l asm.Location) obj.Addr {
	switch {
	case l.IsGPR():
		return obj.Addr{Type: obj.TYPE_REG, Reg: gprReg[l.GPR()]}
	case l.IsXMM():
		return obj.Addr{Type: obj.TYPE_REG, Reg: xmmReg[l.XMM()]}
	case l.IsMemory():
		base, disp := l.Memory()
		return obj.Addr{Type: obj.TYPE_MEM, Reg: gprReg[base], Offset: int64(disp)}
	default:
		// immediate
		return obj.Addr{Type: obj.TYPE_CONST, Offset: int64(l.Imm())}
	}
}

func (e *Emitter) add(as obj.As, from, to asm.Location) {
	p := e.b.NewProg()
	p.As = as
	p.From = toAddr(from)
	p.To = toAddr(to)
	e.b.AddInstruction(p)
}

func (e *Emitter) EmitSub(_ asm.Size, src, dst asm.Location) { e.add(x86.ASUBQ, src, dst) }
func (e *Emitter) EmitAdd(_ asm.Size, src, dst asm.Location) { e.add(x86.AADDQ, src, dst) }
func (e *Emitter) EmitXor(_ asm.Size, src, dst asm.Location) { e.add(x86.AXORQ, src, dst) }
func (e *Emitter) EmitMov(_ asm.Size, src, dst asm.Location) { e.add(x86.AMOVQ, src, dst) }
func (e *Emitter) EmitLea(_ asm.Size, mem, gpr asm.Location) { e.add(x86.ALEAQ, mem, gpr) }

func (e *Emitter) EmitPop(_ asm.Size, dst asm.Location) {
	p := e.b.NewProg()
	p.As = x86.APOPQ
	p.To = toAddr(dst)
	e.b.AddInstruction(p)
}

// EmitRepStosq emits the REP prefix pseudo-instruction followed by STOSQ,
// matching how Go's own assembly (e.g. runtime memclr) spells "rep stosq":
// two adjacent Prog nodes rather than a single fused opcode.
func (e *Emitter) EmitRepStosq() {
	rep := e.b.NewProg()
	rep.As = x86.AREP
	e.b.AddInstruction(rep)

	stos := e.b.NewProg()
	stos.As = x86.ASTOSQ
	e.b.AddInstruction(stos)
}
