package cliutil

import (
	"flag"

	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

// DebugLevel is the klog verbosity at which library debug messages are shown.
const DebugLevel = 2

// KlogLogger adapts klog to the provision.Logger interface.
type KlogLogger struct{}

// Debug logs at DebugLevel verbosity.
func (KlogLogger) Debug(msg string, keysAndValues ...interface{}) {
	klog.V(DebugLevel).InfoS(msg, keysAndValues...)
}

func (KlogLogger) Info(msg string, keysAndValues ...interface{}) {
	klog.InfoS(msg, keysAndValues...)
}

func (KlogLogger) Error(msg string, keysAndValues ...interface{}) {
	klog.ErrorS(nil, msg, keysAndValues...)
}

// AddKlogFlags registers the klog flags (-v, --logtostderr, ...) on fs.
func AddKlogFlags(fs *pflag.FlagSet) {
	gofs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(gofs)
	fs.AddGoFlagSet(gofs)
}

// Exit logs err and exits the process with status 1 after flushing logs.
func Exit(err error, msg string) {
	klog.ErrorS(err, msg)
	klog.FlushAndExit(klog.ExitFlushTimeout, 1)
}
