package main

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runE = func(*cobra.Command, []string) error

// instrument wraps every runnable command under root with recovery and
// a completion log line. log is resolved per call since the logger only
// exists once the config is loaded.
func instrument(root *cobra.Command, log func() *zap.Logger) {
	for _, c := range root.Commands() {
		instrument(c, log)
	}
	if root.RunE != nil {
		root.RunE = logging(log, recovering(log, root.RunE))
	}
}

// logging records the command path, duration and outcome; never flag values.
func logging(log func() *zap.Logger, next runE) runE {
	return func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		err := next(cmd, args)
		fields := []zap.Field{
			zap.String("cmd", cmd.CommandPath()),
			zap.Duration("dur", time.Since(start)),
			zap.Int("code", exitCode(err)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		log().Debug("command", fields...)
		return err
	}
}

// recovering turns a panic into an error after logging its stack.
func recovering(log func() *zap.Logger, next runE) runE {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log().Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("cmd", cmd.CommandPath()),
				)
				err = fmt.Errorf("internal error in %s", cmd.Name())
			}
		}()
		return next(cmd, args)
	}
}

// logger returns the app logger, or a no-op one before config is loaded.
func (a *app) logger() *zap.Logger {
	if a.log == nil {
		return zap.NewNop()
	}
	return a.log
}
