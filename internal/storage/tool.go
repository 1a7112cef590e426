package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/tool-shop/internal/domain/models"
)

// ToolStorage описывает методы для работы с таблицей инструментов.
type ToolStorage interface {
	ListTools(ctx context.Context) ([]*models.Tool, error)
	GetToolByID(ctx context.Context, id int64) (*models.Tool, error)
	CreateTool(ctx context.Context, tool *models.Tool) (int64, error)
	// UpdateToolQuantity заменяет available_quantity без каких-либо проверок значения.
	UpdateToolQuantity(ctx context.Context, id int64, quantity int) (*UpdateResult, error)
	DeleteTool(ctx context.Context, id int64) (int64, error)
}

type toolRepository struct {
	db *sql.DB
}

// NewToolRepository создаёт новый репозиторий инструментов.
func NewToolRepository(db *sql.DB) ToolStorage {
	return &toolRepository{db: db}
}

const toolColumns = "id, name, description, image, price, available_quantity"

func scanTool(row interface{ Scan(dest ...any) error }) (*models.Tool, error) {
	tool := &models.Tool{}
	if err := row.Scan(&tool.ID, &tool.Name, &tool.Description, &tool.Image, &tool.Price, &tool.AvailableQuantity); err != nil {
		return nil, err
	}
	return tool, nil
}

func (r *toolRepository) ListTools(ctx context.Context) ([]*models.Tool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+toolColumns+" FROM tools ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query tools: %w", err)
	}
	defer rows.Close()

	tools := make([]*models.Tool, 0)
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tool: %w", err)
		}
		tools = append(tools, tool)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tools, nil
}

func (r *toolRepository) GetToolByID(ctx context.Context, id int64) (*models.Tool, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+toolColumns+" FROM tools WHERE id = $1", id)
	tool, err := scanTool(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrToolNotFound
		}
		return nil, err
	}
	return tool, nil
}

func (r *toolRepository) CreateTool(ctx context.Context, tool *models.Tool) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tools (name, description, image, price, available_quantity)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		tool.Name, tool.Description, tool.Image, tool.Price, tool.AvailableQuantity,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create tool: %w", err)
	}
	tool.ID = id
	return id, nil
}

func (r *toolRepository) UpdateToolQuantity(ctx context.Context, id int64, quantity int) (*UpdateResult, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE tools SET available_quantity = $1 WHERE id = $2", quantity, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update tool quantity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrToolNotFound
	}
	return &UpdateResult{MatchedCount: affected, ModifiedCount: affected}, nil
}

func (r *toolRepository) DeleteTool(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tools WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tool: %w", err)
	}
	return res.RowsAffected()
}
