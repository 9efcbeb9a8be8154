//go:build !unix

package environment

import "os"

var watchedSignals []os.Signal

func (w *SignalWatcher) handle(os.Signal) {}
