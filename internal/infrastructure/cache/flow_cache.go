package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/approval"
)

const (
	flowKeyPrefix  = "approval:flow:"
	flowDefaultTTL = 5 * time.Minute
)

// CachedFlowRepository decorates an approval.FlowRepository with a Redis
// read-through cache on module lookups. Flow configuration is read on every
// approval action but changes rarely; writes invalidate the cached entry so
// a reconfigured flow takes effect within one lookup.
//
// Cache failures are logged and fall through to the database. A stale entry
// can survive at most the TTL.
type CachedFlowRepository struct {
	inner  approval.FlowRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedFlowRepository creates a new CachedFlowRepository
func NewCachedFlowRepository(inner approval.FlowRepository, client *redis.Client, logger *zap.Logger) *CachedFlowRepository {
	return &CachedFlowRepository{
		inner:  inner,
		client: client,
		ttl:    flowDefaultTTL,
		logger: logger,
	}
}

// FindByID delegates to the underlying repository
func (r *CachedFlowRepository) FindByID(ctx context.Context, id uuid.UUID) (*approval.Flow, error) {
	return r.inner.FindByID(ctx, id)
}

// FindByModule returns the flow governing a module, serving repeated lookups
// from Redis
func (r *CachedFlowRepository) FindByModule(ctx context.Context, module approval.Module, department string) (*approval.Flow, error) {
	key := flowKey(module, department)

	if cached, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var flow approval.Flow
		if err := json.Unmarshal(cached, &flow); err == nil {
			return &flow, nil
		}
		r.logger.Warn("dropping undecodable flow cache entry", zap.String("key", key))
		r.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("flow cache read failed", zap.String("key", key), zap.Error(err))
	}

	flow, err := r.inner.FindByModule(ctx, module, department)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(flow); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.Warn("flow cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return flow, nil
}

// FindAll delegates to the underlying repository
func (r *CachedFlowRepository) FindAll(ctx context.Context) ([]approval.Flow, error) {
	return r.inner.FindAll(ctx)
}

// Save persists the flow and invalidates its cached module lookup
func (r *CachedFlowRepository) Save(ctx context.Context, flow *approval.Flow) error {
	if err := r.inner.Save(ctx, flow); err != nil {
		return err
	}
	r.invalidate(ctx, flow)
	return nil
}

// Delete removes the flow and invalidates its cached module lookup
func (r *CachedFlowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	flow, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, flow)
	return nil
}

func (r *CachedFlowRepository) invalidate(ctx context.Context, flow *approval.Flow) {
	// The module-wide entry answers lookups for any department, so both
	// keys have to go.
	keys := []string{
		flowKey(flow.Module, flow.Department),
		flowKey(flow.Module, ""),
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("flow cache invalidation failed",
			zap.String("module", flow.Module.String()),
			zap.Error(err),
		)
	}
}

func flowKey(module approval.Module, department string) string {
	return flowKeyPrefix + module.String() + ":" + department
}

var _ approval.FlowRepository = (*CachedFlowRepository)(nil)
