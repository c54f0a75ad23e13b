package tools

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
)

var (
	isEnabled      = true
	printTimestamp = true

	outputMu sync.Mutex
	output   io.Writer = os.Stdout
)

func EnableLogger() {
	isEnabled = true
}

func DisableLogger() {
	isEnabled = false
}

func EnableLoggerTimestamp() {
	printTimestamp = true
}

func DisableLoggerTimestamp() {
	printTimestamp = false
}

// SetLogOutput redirects the progress messages, os.Stdout by default
func SetLogOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	output = w
}

// LogOutput prints a progress message unless the logger is disabled. Messages always reach glog at V(1).
func LogOutput(val ...interface{}) {
	glog.V(1).Infoln(val...)
	if !isEnabled {
		return
	}

	outputMu.Lock()
	defer outputMu.Unlock()
	if printTimestamp {
		fmt.Fprint(output, "["+time.Now().Format("2006-01-02 15.04:05.000")+"] ")
	}
	fmt.Fprintln(output, val...)
}
