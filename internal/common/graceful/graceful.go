package graceful

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"

	"golang.org/x/exp/slices"
)

const logPrefix = "[GRACEFUL]"

type ProcessStarter func() error

type ProcessStopper func(ctx context.Context) error

type ProcessStartStopper interface {
	Start() ProcessStarter
	Stop() ProcessStopper
}

func StartProcessAtBackground(ps ...ProcessStarter) {
	for _, p := range ps {
		if p != nil {
			go func(_p func() error) {
				if err := _p(); err != nil {
					xlog.Warn(context.Background(), logPrefix, xlog.String("status", "process exited"), xlog.Err(err))
				}
			}(p)
		}
	}
}

func StopProcessAtBackground(duration time.Duration, ps ...ProcessStopper) {
	sigusr1 := make(chan os.Signal, 1)
	signal.Notify(sigusr1, syscall.SIGUSR1)

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigterm:
		xlog.Info(context.Background(), logPrefix, xlog.String("signal", sig.String()))
	case sig := <-sigusr1:
		xlog.Info(context.Background(), logPrefix, xlog.String("signal", sig.String()))
	}

	_ = StopProcess(duration, ps...)
}

// StopProcess runs stoppers last registered first, each with its own timeout.
func StopProcess(duration time.Duration, ps ...ProcessStopper) error {
	stoppers := slices.Clone(ps)
	slices.Reverse(stoppers)

	var errs []error
	for _, p := range stoppers {
		if p == nil {
			continue
		}
		func() {
			ctx, stop := context.WithTimeout(context.Background(), duration)
			defer stop()
			if err := p(ctx); err != nil {
				xlog.Warn(ctx, logPrefix, xlog.String("status", "stopper failed"), xlog.Err(err))
				errs = append(errs, err)
			}
		}()
	}

	return errors.Join(errs...)
}
