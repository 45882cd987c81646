package badges

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Setter pushes the unread count to a platform badge facility.
type Setter interface {
	SetBadgeCount(ctx context.Context, count int) error
}

type Registry map[string]Setter

func NewRegistry(lc fx.Lifecycle, log *zap.Logger) Registry {
	return map[string]Setter{
		"log": &logSetter{log},
	}
}

// logSetter records badge updates in the log. A device build would register a
// platform-backed setter alongside it.
type logSetter struct {
	log *zap.Logger
}

func (s *logSetter) SetBadgeCount(ctx context.Context, count int) error {
	s.log.Sugar().Infof("Badge count set to %d", count)
	return nil
}
