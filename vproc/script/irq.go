package script

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"github.com/sirupsen/logrus"

	"github.com/cosim-bridge/vproc/vproc"
)

// IRQHandlerFunc is the name of the function an IRQ script must define.
const IRQHandlerFunc = "onIRQ"

// ErrNoHandler is returned when an IRQ script does not define onIRQ.
var ErrNoHandler = errors.New("script does not define " + IRQHandlerFunc)

// PushFunc queues a vector for a node; normally Scheduler.PushIRQ.
type PushFunc func(node int, vector uint32)

// IRQHandler runs a JavaScript vectored interrupt handler.
type IRQHandler struct {
	mu   sync.Mutex
	name string
	vm   *goja.Runtime
	fn   goja.Callable
}

// NewIRQHandler compiles src and binds pushIRQ to push. An empty src gives a
// handler that queues every vector unchanged.
func NewIRQHandler(name, src string, push PushFunc) (*IRQHandler, error) {
	if push == nil {
		return nil, fmt.Errorf("NewIRQHandler(%s): push must not be nil", name)
	}
	if src == "" {
		src = "function onIRQ(vector, node) { pushIRQ(node, vector); }"
	}
	prg, err := goja.Compile(name, src, true)
	if err != nil {
		return nil, fmt.Errorf("compiling IRQ script %s: %w", name, err)
	}

	vm := goja.New()
	if err := bindCommon(vm, name); err != nil {
		return nil, err
	}
	if err := vm.Set("pushIRQ", func(node int, vector uint32) {
		push(node, vector)
	}); err != nil {
		return nil, fmt.Errorf("binding pushIRQ: %w", err)
	}
	if _, err := vm.RunProgram(prg); err != nil {
		return nil, fmt.Errorf("running IRQ script %s: %w", name, describe(err))
	}
	fn, ok := goja.AssertFunction(vm.Get(IRQHandlerFunc))
	if !ok {
		return nil, fmt.Errorf("IRQ script %s: %w", name, ErrNoHandler)
	}
	return &IRQHandler{name: name, vm: vm, fn: fn}, nil
}

// Handle runs onIRQ(vector, node).
func (h *IRQHandler) Handle(vector uint32, node int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.fn(goja.Undefined(), h.vm.ToValue(vector), h.vm.ToValue(node)); err != nil {
		return fmt.Errorf("IRQ script %s: %w", h.name, describe(err))
	}
	return nil
}

// Callback adapts the handler to a vproc.EmbeddedIRQ. Script errors are
// logged; interrupt delivery is fire-and-forget.
func (h *IRQHandler) Callback() vproc.EmbeddedIRQ {
	return func(vector uint32, node int) {
		if err := h.Handle(vector, node); err != nil {
			logrus.WithField("node", node).Errorf("vectored IRQ %#x: %v", vector, err)
		}
	}
}

// bindCommon installs host functions shared by all scripts.
func bindCommon(vm *goja.Runtime, name string) error {
	log := logrus.WithField("script", name)
	if err := vm.Set("log", func(msg string) { log.Info(msg) }); err != nil {
		return fmt.Errorf("binding log: %w", err)
	}
	return nil
}

// describe unwraps goja exceptions into their JavaScript message.
func describe(err error) error {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return fmt.Errorf("%s", exc.String())
	}
	return err
}
