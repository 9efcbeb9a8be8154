//go:build unix

package environment

import (
	"os"
	"syscall"
)

var watchedSignals = []os.Signal{syscall.SIGCONT, syscall.SIGUSR1}

func (w *SignalWatcher) handle(sig os.Signal) {
	switch sig {
	case syscall.SIGCONT:
		w.session.Visible()
	case syscall.SIGUSR1:
		w.logger.Info("reconnect requested by signal")
		w.session.Reconnect()
	}
}
