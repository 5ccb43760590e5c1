package web

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// transferTimeout bounds a single background ownership transfer.
const transferTimeout = 30 * time.Second

// startOwnershipTransfer runs the transfer as an explicit asynchronous
// task with its own success/failure channel, decoupled from the
// authentication result. The channel is buffered so the worker never
// blocks when the caller discards it; failures are logged and retried only
// by user-triggered re-invocation, never automatically.
func (s *Server) startOwnershipTransfer(fromAnonymousID, toUserID string) <-chan error {
	done := make(chan error, 1)

	go func() {
		defer close(done)

		ctx, cancel := context.WithTimeout(context.Background(), transferTimeout)
		defer cancel()

		count, err := s.store.TransferOwnership(ctx, fromAnonymousID, toUserID)
		if err != nil {
			s.log.Warn("ownership transfer failed",
				zap.String("from", fromAnonymousID),
				zap.String("to", toUserID),
				zap.Error(err))
			done <- err
			return
		}

		if count > 0 {
			s.log.Info("ownership transferred",
				zap.String("from", fromAnonymousID),
				zap.String("to", toUserID),
				zap.Int("records", count))
		}
		done <- nil
	}()

	return done
}
