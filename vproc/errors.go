package vproc

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrIRQCallbackConflict is returned when registering a vectored IRQ callback
// of one kind while a callback of the other kind is already registered.
var ErrIRQCallbackConflict = errors.New("native and embedded IRQ callbacks are mutually exclusive")

// ErrUnknownNode is returned by non-fatal lookups of an uninitialised node.
var ErrUnknownNode = errors.New("unknown node")

// fatalf logs a configuration or protocol error and terminates the process
// with code through the standard logger's ExitFunc. If ExitFunc returns
// (tests replace it) fatalf panics so the caller never continues with
// invalid state.
func fatalf(node int, code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logrus.WithFields(logrus.Fields{"node": node, "exit_code": code}).Error(msg)
	logrus.StandardLogger().Exit(code)
	panic(msg)
}
