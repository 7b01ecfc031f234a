// Package asmtest provides a recording asm.Emitter for unit tests. It is the
// "test implementation" spec'd alongside the production one (see
// internal/asm/golangasm): rather than encoding real bytes, it appends a
// textual log entry per call so tests can assert on the exact sequence and
// shape of instructions the machine package emitted.
package asmtest

import (
	"fmt"

	"wazerotools/x64machine/internal/asm"
)

// Entry is one recorded instruction.
type Entry struct {
	Op       string
	Size     asm.Size
	Src, Dst asm.Location // zero value when not applicable
}

func (e Entry) String() string {
	switch e.Op {
	case "rep_stosq":
		return "rep stosq"
	case "pop":
		return fmt.Sprintf("pop %s", e.Dst)
	case "lea":
		return fmt.Sprintf("lea %s, %s", e.Dst, e.Src)
	default:
		return fmt.Sprintf("%s %s, %s", e.Op, e.Dst, e.Src)
	}
}

// Recorder is an asm.Emitter that appends every call to Log instead of
// encoding real instructions.
type Recorder struct {
	Log []Entry
}

var _ asm.Emitter = (*Recorder)(nil)

func (r *Recorder) EmitSub(size asm.Size, src, dst asm.Location) {
	r.Log = append(r.Log, Entry{Op: "sub", Size: size, Src: src, Dst: dst})
}

func (r *Recorder) EmitAdd(size asm.Size, src, dst asm.Location) {
	r.Log = append(r.Log, Entry{Op: "add", Size: size, Src: src, Dst: dst})
}

func (r *Recorder) EmitXor(size asm.Size, src, dst asm.Location) {
	r.Log = append(r.Log, Entry{Op: "xor", Size: size, Src: src, Dst: dst})
}

func (r *Recorder) EmitMov(size asm.Size, src, dst asm.Location) {
	r.Log = append(r.Log, Entry{Op: "mov", Size: size, Src: src, Dst: dst})
}

func (r *Recorder) EmitLea(size asm.Size, mem, gpr asm.Location) {
	r.Log = append(r.Log, Entry{Op: "lea", Size: size, Src: mem, Dst: gpr})
}

func (r *Recorder) EmitPop(size asm.Size, dst asm.Location) {
	r.Log = append(r.Log, Entry{Op: "pop", Size: size, Dst: dst})
}

func (r *Recorder) EmitRepStosq() {
	r.Log = append(r.Log, Entry{Op: "rep_stosq"})
}

// Strings renders the log the way tests commonly want to assert on it.
func (r *Recorder) Strings() []string {
	out := make([]string, len(r.Log))
	for i, e := range r.Log {
		out[i] = e.String()
	}
	return out
}

// Reset clears the log so a single Recorder can be reused across phases of
// a test (e.g. prologue then body then epilogue).
func (r *Recorder) Reset() {
	r.Log = r.Log[:0]
}
