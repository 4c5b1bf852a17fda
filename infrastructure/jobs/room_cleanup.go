package jobs

import (
	"context"
	"time"

	"github.com/billychen0894/spareTalk-chat-app/application/usecases/chat"
	"github.com/billychen0894/spareTalk-chat-app/domain/model"
	"github.com/billychen0894/spareTalk-chat-app/infrastructure/logger"
	"go.uber.org/zap"
)

// InactiveRoomNotifier lets the sweep report reclaimed rooms back to the
// realtime layer, which tells any connected participants.
type InactiveRoomNotifier interface {
	NotifyInactiveChatRoom(chatRoom *model.ChatRoom)
}

// RoomCleanupJob periodically reclaims chat rooms that have been inactive
// beyond the configured threshold. Maintenance only: failures are retried a
// few times, then logged, never surfaced to clients.
type RoomCleanupJob struct {
	chatUseCase chat.ChatUseCase
	notifier    InactiveRoomNotifier
	logger      *logger.Logger
	interval    time.Duration
	maxRetries  int
	stopChan    chan struct{}
}

func NewRoomCleanupJob(
	chatUseCase chat.ChatUseCase,
	notifier InactiveRoomNotifier,
	logger *logger.Logger,
	interval time.Duration,
	maxRetries int,
) *RoomCleanupJob {
	return &RoomCleanupJob{
		chatUseCase: chatUseCase,
		notifier:    notifier,
		logger:      logger,
		interval:    interval,
		maxRetries:  maxRetries,
		stopChan:    make(chan struct{}),
	}
}

func (j *RoomCleanupJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("Room cleanup job started",
		zap.Duration("interval", j.interval),
	)

	for {
		select {
		case <-ticker.C:
			j.runSweep(ctx)
		case <-j.stopChan:
			j.logger.Info("Room cleanup job stopped")
			return
		case <-ctx.Done():
			j.logger.Info("Room cleanup job context cancelled")
			return
		}
	}
}

func (j *RoomCleanupJob) Stop() {
	close(j.stopChan)
}

func (j *RoomCleanupJob) runSweep(ctx context.Context) {
	startTime := time.Now()

	for attempt := 1; attempt <= j.maxRetries; attempt++ {
		inactiveChatRooms, err := j.chatUseCase.CheckInactiveChatRooms(ctx)
		if err != nil {
			j.logger.Error("Room cleanup sweep failed",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			if attempt == j.maxRetries {
				j.logger.Error("Giving up on room cleanup sweep",
					zap.Duration("duration", time.Since(startTime)),
				)
			}
			continue
		}

		for _, chatRoom := range inactiveChatRooms {
			j.notifier.NotifyInactiveChatRoom(chatRoom)
		}

		j.logger.Info("Room cleanup sweep completed",
			zap.Int("reclaimed", len(inactiveChatRooms)),
			zap.Duration("duration", time.Since(startTime)),
		)
		return
	}
}
