package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/tool-shop/internal/domain/models"
	"github.com/linemk/tool-shop/internal/storage"
)

// ToolService - каталог инструментов
type ToolService interface {
	ListTools(ctx context.Context) ([]*models.Tool, error)
	GetTool(ctx context.Context, id int64) (*models.Tool, error)
	CreateTool(ctx context.Context, tool *models.Tool) (int64, error)
	// UpdateQuantity заменяет остаток значением клиента, прежнее значение не учитывается
	UpdateQuantity(ctx context.Context, id int64, quantity int) (*storage.UpdateResult, error)
	DeleteTool(ctx context.Context, id int64) (int64, error)
}

type toolService struct {
	log      *slog.Logger
	toolRepo storage.ToolStorage
}

func NewToolService(log *slog.Logger, toolRepo storage.ToolStorage) ToolService {
	return &toolService{
		log:      log,
		toolRepo: toolRepo,
	}
}

func (s *toolService) ListTools(ctx context.Context) ([]*models.Tool, error) {
	const op = "service.ToolService.ListTools"

	tools, err := s.toolRepo.ListTools(ctx)
	if err != nil {
		s.log.Error("failed to list tools", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tools, nil
}

func (s *toolService) GetTool(ctx context.Context, id int64) (*models.Tool, error) {
	const op = "service.ToolService.GetTool"

	tool, err := s.toolRepo.GetToolByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tool, nil
}

func (s *toolService) CreateTool(ctx context.Context, tool *models.Tool) (int64, error) {
	const op = "service.ToolService.CreateTool"
	logger := s.log.With(slog.String("op", op), slog.String("name", tool.Name))

	id, err := s.toolRepo.CreateTool(ctx, tool)
	if err != nil {
		logger.Error("failed to create tool", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("tool created", slog.Int64("id", id))
	return id, nil
}

func (s *toolService) UpdateQuantity(ctx context.Context, id int64, quantity int) (*storage.UpdateResult, error) {
	const op = "service.ToolService.UpdateQuantity"

	res, err := s.toolRepo.UpdateToolQuantity(ctx, id, quantity)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("tool quantity updated",
		slog.String("op", op),
		slog.Int64("id", id),
		slog.Int("quantity", quantity),
	)
	return res, nil
}

func (s *toolService) DeleteTool(ctx context.Context, id int64) (int64, error) {
	const op = "service.ToolService.DeleteTool"

	deleted, err := s.toolRepo.DeleteTool(ctx, id)
	if err != nil {
		s.log.Error("failed to delete tool", slog.String("op", op), slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return deleted, nil
}
