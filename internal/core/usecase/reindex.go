package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/job-search-assistant/internal/core/ports"
)

type ReindexUseCase struct {
	queue ports.MessageQueue
}

func NewReindexUseCase(queue ports.MessageQueue) *ReindexUseCase {
	return &ReindexUseCase{queue: queue}
}

func (uc *ReindexUseCase) RequestReindex(ctx context.Context, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual"
	}
	if err := uc.queue.PublishReindex(ctx, reason); err != nil {
		return fmt.Errorf("publish reindex event: %w", err)
	}
	return nil
}
