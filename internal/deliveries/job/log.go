package job

import (
	"context"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/services"
)

func logJob(ctx context.Context, jobName string, started time.Time, result services.CycleResult, err error) {
	field := []xlog.Field{
		xlog.String("job-name", jobName),
		xlog.Int("processed", result.Processed),
		xlog.Int("failed", result.Failed),
		xlog.Duration("elapsed", time.Since(started)),
	}
	if err != nil {
		field = append(field, xlog.String("status", "fail"), xlog.Err(err))
		xlog.Warn(ctx, "[JOB]", field...)
		return
	}
	if result.Processed == 0 {
		xlog.Debug(ctx, "[JOB]", append(field, xlog.String("status", "idle"))...)
		return
	}
	xlog.Info(ctx, "[JOB]", append(field, xlog.String("status", "success"))...)
}
