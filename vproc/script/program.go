package script

import (
	"errors"
	"fmt"
	"os"

	"github.com/dop251/goja"
	"github.com/sirupsen/logrus"

	"github.com/cosim-bridge/vproc/vproc"
)

// ProgramMainFunc is the function a worker program script must define.
const ProgramMainFunc = "main"

// ErrNoMain is returned when a worker program does not define main.
var ErrNoMain = errors.New("script does not define " + ProgramMainFunc)

// Program is a compiled JavaScript worker program. The script sees a global
// proc object:
//
//	proc.node                  node id
//	proc.write(addr, data)     single-word write
//	proc.read(addr)            single-word read
//	proc.writeByte(addr, b)    byte write
//	proc.readByte(addr)        byte read
//	proc.burstWrite(addr, ws)  burst write of an array of words
//	proc.burstRead(addr, n)    burst read of n words, returns an array
//	proc.tick(n)               idle n cycles
//	proc.interrupt()           last sampled interrupt line
//	proc.pollIRQ()             oldest queued vector or null
//	proc.pendingIRQs()         number of queued vectors
//	proc.FOREVER, proc.DELTA   advance sentinels
type Program struct {
	name string
	prg  *goja.Program
}

// CompileProgram compiles a worker program and checks that it defines main.
func CompileProgram(name, src string) (*Program, error) {
	prg, err := goja.Compile(name, src, true)
	if err != nil {
		return nil, fmt.Errorf("compiling program %s: %w", name, err)
	}
	vm := goja.New()
	if _, err := vm.RunProgram(prg); err != nil {
		return nil, fmt.Errorf("loading program %s: %w", name, describe(err))
	}
	if _, ok := goja.AssertFunction(vm.Get(ProgramMainFunc)); !ok {
		return nil, fmt.Errorf("program %s: %w", name, ErrNoMain)
	}
	return &Program{name: name, prg: prg}, nil
}

// LoadProgram reads and compiles a worker program file.
func LoadProgram(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	return CompileProgram(path, string(data))
}

// Name returns the program name used in logs and errors.
func (pr *Program) Name() string { return pr.name }

// Entry returns a vproc.Entry that runs the program in a fresh runtime on
// the calling worker goroutine.
func (pr *Program) Entry() vproc.Entry {
	return func(p *vproc.Proc) {
		log := logrus.WithFields(logrus.Fields{"script": pr.name, "node": p.Node()})
		vm := goja.New()
		if err := pr.bind(vm, p); err != nil {
			log.Errorf("binding proc: %v", err)
			return
		}
		if _, err := vm.RunProgram(pr.prg); err != nil {
			log.Errorf("loading: %v", describe(err))
			return
		}
		main, ok := goja.AssertFunction(vm.Get(ProgramMainFunc))
		if !ok {
			log.Error(ErrNoMain)
			return
		}
		if _, err := main(goja.Undefined()); err != nil {
			log.Errorf("main: %v", describe(err))
		}
	}
}

func (pr *Program) bind(vm *goja.Runtime, p *vproc.Proc) error {
	if err := bindCommon(vm, pr.name); err != nil {
		return err
	}
	obj := vm.NewObject()
	props := map[string]any{
		"node":    p.Node(),
		"FOREVER": vproc.Forever,
		"DELTA":   vproc.DeltaCycle,
		"write":   func(addr, data uint32) { p.Write(addr, data) },
		"read":    func(addr uint32) uint32 { return p.Read(addr) },
		"writeByte": func(addr uint32, b uint8) {
			p.WriteByte(addr, b)
		},
		"readByte": func(addr uint32) uint8 { return p.ReadByte(addr) },
		"burstWrite": func(addr uint32, words []uint32) {
			p.BurstWrite(addr, words)
		},
		"burstRead": func(addr uint32, n int) []uint32 {
			buf := make([]uint32, n)
			p.BurstRead(addr, buf)
			return buf
		},
		"tick":      func(n int32) { p.Tick(n) },
		"interrupt": func() uint32 { return p.Interrupt() },
		"pollIRQ": func() goja.Value {
			if v, ok := p.PollIRQ(); ok {
				return vm.ToValue(v)
			}
			return goja.Null()
		},
		"pendingIRQs": func() int { return p.PendingIRQs() },
	}
	for k, v := range props {
		if err := obj.Set(k, v); err != nil {
			return fmt.Errorf("binding proc.%s: %w", k, err)
		}
	}
	return vm.Set("proc", obj)
}
