package approval

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/approval"
)

// FlowService administers approval flow configuration
type FlowService struct {
	flowRepo approval.FlowRepository
	logger   *zap.Logger
}

// NewFlowService creates a new FlowService
func NewFlowService(flowRepo approval.FlowRepository, logger *zap.Logger) *FlowService {
	return &FlowService{
		flowRepo: flowRepo,
		logger:   logger,
	}
}

// Create configures a new approval flow for a module
func (s *FlowService) Create(ctx context.Context, req CreateFlowRequest) (*FlowResponse, error) {
	flow, err := approval.NewFlow(req.Name, approval.Module(req.Module), req.Department, toStepInputs(req.Steps))
	if err != nil {
		return nil, err
	}

	if err := s.flowRepo.Save(ctx, flow); err != nil {
		return nil, err
	}

	s.logger.Info("approval flow created",
		zap.String("flow_id", flow.ID.String()),
		zap.String("module", req.Module),
		zap.Int("steps", flow.TotalSteps()),
	)

	resp := ToFlowResponse(flow)
	return &resp, nil
}

// ReplaceSteps swaps a flow's steps wholesale. In-flight approval states
// keep the step count they were initialized with.
func (s *FlowService) ReplaceSteps(ctx context.Context, flowID uuid.UUID, req ReplaceStepsRequest) (*FlowResponse, error) {
	flow, err := s.flowRepo.FindByID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	if err := flow.ReplaceSteps(toStepInputs(req.Steps)); err != nil {
		return nil, err
	}

	if err := s.flowRepo.Save(ctx, flow); err != nil {
		return nil, err
	}

	s.logger.Info("approval flow steps replaced",
		zap.String("flow_id", flow.ID.String()),
		zap.Int("steps", flow.TotalSteps()),
	)

	resp := ToFlowResponse(flow)
	return &resp, nil
}

// GetByID returns one flow with its steps
func (s *FlowService) GetByID(ctx context.Context, flowID uuid.UUID) (*FlowResponse, error) {
	flow, err := s.flowRepo.FindByID(ctx, flowID)
	if err != nil {
		return nil, err
	}
	resp := ToFlowResponse(flow)
	return &resp, nil
}

// List returns all configured flows
func (s *FlowService) List(ctx context.Context) ([]FlowResponse, error) {
	flows, err := s.flowRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]FlowResponse, 0, len(flows))
	for i := range flows {
		out = append(out, ToFlowResponse(&flows[i]))
	}
	return out, nil
}

// Delete removes a flow. Entities already in the flow keep their state;
// new initializations for the module fall back to pre-approval.
func (s *FlowService) Delete(ctx context.Context, flowID uuid.UUID) error {
	if err := s.flowRepo.Delete(ctx, flowID); err != nil {
		return err
	}

	s.logger.Info("approval flow deleted", zap.String("flow_id", flowID.String()))
	return nil
}

func toStepInputs(steps []StepRequest) []approval.StepInput {
	inputs := make([]approval.StepInput, 0, len(steps))
	for _, s := range steps {
		inputs = append(inputs, approval.StepInput{
			RoleID: s.RoleID,
			UserID: s.UserID,
			Label:  s.Label,
		})
	}
	return inputs
}
