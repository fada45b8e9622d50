package usecase

import (
	"context"
	"fmt"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
	"github.com/mycent-kz/edo-orchestrator/internal/core/ports"
)

// SettingsResolver fetches per-class editor configuration, memoized
// for the lifetime of the session. The cache is dropped on back
// navigation; failures propagate untouched (the gateway does not
// retry, and neither do we).
type SettingsResolver struct {
	gateway ports.DocumentGateway
}

func NewSettingsResolver(gateway ports.DocumentGateway) *SettingsResolver {
	return &SettingsResolver{gateway: gateway}
}

func (r *SettingsResolver) Resolve(ctx context.Context, sess *Session, classID int64) (*domain.Settings, error) {
	if cached := sess.CachedSettings(classID); cached != nil {
		return cached, nil
	}
	settings, err := r.gateway.GetSettings(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("resolve settings for class %d: %w", classID, err)
	}
	sess.CacheSettings(classID, settings)
	return settings, nil
}
