package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
)

// StopWithin drains srv gracefully until ctx ends, then cancels whatever is
// still in flight. It reports whether the stop had to be forced.
func StopWithin(ctx context.Context, srv *grpc.Server) bool {
	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return false
	case <-ctx.Done():
		slog.Warn("gRPC graceful stop timed out, forcing", "error", ctx.Err())
		srv.Stop()
		<-stopped
		return true
	}
}
