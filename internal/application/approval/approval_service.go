package approval

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/approval"
	"github.com/ucrm/backend/internal/domain/shared"
)

// ApprovalService drives entities through their approval flows: it
// initializes state, records approve/reject decisions, and resets flows.
// Every mutation runs in one database transaction; domain events are
// published only after that transaction commits.
type ApprovalService struct {
	flowRepo       approval.FlowRepository
	stateRepo      approval.StateRepository
	recordRepo     approval.RecordRepository
	authorizer     approval.Authorizer
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	flowRepo approval.FlowRepository,
	stateRepo approval.StateRepository,
	recordRepo approval.RecordRepository,
	authorizer approval.Authorizer,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *ApprovalService {
	return &ApprovalService{
		flowRepo:   flowRepo,
		stateRepo:  stateRepo,
		recordRepo: recordRepo,
		authorizer: authorizer,
		txManager:  txManager,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ApprovalService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Initialize creates the approval state for an entity entering a module's
// flow. When no flow is configured for the module the entity is
// pre-approved immediately; the completion cascade still fires.
func (s *ApprovalService) Initialize(ctx context.Context, module string, entityID uuid.UUID, department string) (*StateResponse, error) {
	m := approval.Module(module)
	if !m.IsValid() {
		return nil, approval.ErrInvalidModelType
	}

	var state *approval.State
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if existing, err := s.stateRepo.FindByEntity(ctx, m, entityID); err == nil {
			return shared.NewDomainError("ALREADY_INITIALIZED", fmt.Sprintf("Entity %s already has approval state %s", entityID, existing.ID))
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		flow, err := s.flowRepo.FindByModule(ctx, m, department)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			state, err = approval.NewPreApprovedState(m, entityID)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			state, err = approval.NewState(m, entityID, flow)
			if err != nil {
				return err
			}
		}

		return s.stateRepo.Save(ctx, state)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, state)

	s.logger.Info("approval state initialized",
		zap.String("module", module),
		zap.String("entity_id", entityID.String()),
		zap.Bool("pre_approved", state.TotalSteps == 0),
	)

	resp := ToStateResponse(state)
	return &resp, nil
}

// Approve records an approval by the actor at the entity's current step.
// The actor must match the step's designated role or user.
func (s *ApprovalService) Approve(ctx context.Context, module string, entityID uuid.UUID, actor approval.Actor, remarks string) (*StateResponse, error) {
	return s.decide(ctx, module, entityID, actor, approval.DecisionApproved, remarks)
}

// Reject records a rejection by the actor at the entity's current step,
// halting the flow there.
func (s *ApprovalService) Reject(ctx context.Context, module string, entityID uuid.UUID, actor approval.Actor, remarks string) (*StateResponse, error) {
	return s.decide(ctx, module, entityID, actor, approval.DecisionRejected, remarks)
}

func (s *ApprovalService) decide(ctx context.Context, module string, entityID uuid.UUID, actor approval.Actor, decision approval.Decision, remarks string) (*StateResponse, error) {
	m := approval.Module(module)
	if !m.IsValid() {
		return nil, approval.ErrInvalidModelType
	}

	var state *approval.State
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		state, err = s.stateRepo.FindByEntity(ctx, m, entityID)
		if errors.Is(err, shared.ErrNotFound) {
			return approval.ErrNoActiveApprovalFlow
		}
		if err != nil {
			return err
		}

		// Guard before loading the flow: a pre-approved bypass state has
		// no flow row to find.
		if state.Status.IsTerminal() {
			action := "approve"
			if decision == approval.DecisionRejected {
				action = "reject"
			}
			return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot %s: flow already %s", action, state.Status))
		}

		flow, err := s.flowRepo.FindByID(ctx, state.FlowID)
		if err != nil {
			return err
		}
		step, err := flow.StepAt(state.CurrentOrder)
		if err != nil {
			return err
		}

		allowed, err := s.authorizer.CanApproveStep(ctx, actor, *step)
		if err != nil {
			return err
		}
		if !allowed {
			return shared.ErrForbidden
		}

		// Record before advancing so the entry carries the step the
		// decision was made at.
		record, err := approval.NewRecord(state, actor.ID, actor.Name, decision, remarks)
		if err != nil {
			return err
		}

		if decision == approval.DecisionApproved {
			if _, err := state.Advance(); err != nil {
				return err
			}
		} else {
			if err := state.Reject(); err != nil {
				return err
			}
		}

		if err := s.stateRepo.SaveWithLock(ctx, state); err != nil {
			return err
		}
		return s.recordRepo.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, state)

	s.logger.Info("approval decision recorded",
		zap.String("module", module),
		zap.String("entity_id", entityID.String()),
		zap.String("decision", string(decision)),
		zap.String("actor_id", actor.ID.String()),
		zap.String("status", state.Status.String()),
	)

	resp := ToStateResponse(state)
	return &resp, nil
}

// Reset returns an entity's approval to step one, pending. Audit records
// are kept. Requires the elevated reset permission.
func (s *ApprovalService) Reset(ctx context.Context, module string, entityID uuid.UUID, actor approval.Actor) (*StateResponse, error) {
	m := approval.Module(module)
	if !m.IsValid() {
		return nil, approval.ErrInvalidModelType
	}

	allowed, err := s.authorizer.CanReset(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, shared.ErrForbidden
	}

	var state *approval.State
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		state, err = s.stateRepo.FindByEntity(ctx, m, entityID)
		if errors.Is(err, shared.ErrNotFound) {
			return approval.ErrNoActiveApprovalFlow
		}
		if err != nil {
			return err
		}

		state.Reset()
		return s.stateRepo.SaveWithLock(ctx, state)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, state)

	s.logger.Info("approval state reset",
		zap.String("module", module),
		zap.String("entity_id", entityID.String()),
		zap.String("actor_id", actor.ID.String()),
	)

	resp := ToStateResponse(state)
	return &resp, nil
}

// GetState returns an entity's current approval progress
func (s *ApprovalService) GetState(ctx context.Context, module string, entityID uuid.UUID) (*StateResponse, error) {
	m := approval.Module(module)
	if !m.IsValid() {
		return nil, approval.ErrInvalidModelType
	}

	state, err := s.stateRepo.FindByEntity(ctx, m, entityID)
	if err != nil {
		return nil, err
	}

	resp := ToStateResponse(state)
	return &resp, nil
}

// Progress returns completion as a rounded percentage
func (s *ApprovalService) Progress(ctx context.Context, module string, entityID uuid.UUID) (int, error) {
	resp, err := s.GetState(ctx, module, entityID)
	if err != nil {
		return 0, err
	}
	return resp.Progress, nil
}

// History returns the full audit trail for an entity, oldest first
func (s *ApprovalService) History(ctx context.Context, module string, entityID uuid.UUID) ([]RecordResponse, error) {
	m := approval.Module(module)
	if !m.IsValid() {
		return nil, approval.ErrInvalidModelType
	}

	records, err := s.recordRepo.FindByEntity(ctx, m, entityID)
	if err != nil {
		return nil, err
	}

	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ToRecordResponse(r))
	}
	return out, nil
}

// publishEvents forwards the aggregate's events to the bus after the
// owning transaction has committed
func (s *ApprovalService) publishEvents(ctx context.Context, state *approval.State) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range state.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish approval event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	state.ClearDomainEvents()
}
