package inventorylog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/supplysync/supplysync-backend/pkg/db/models"
	"github.com/supplysync/supplysync-backend/pkg/enums"
	pkgerrors "github.com/supplysync/supplysync-backend/pkg/errors"
	"github.com/supplysync/supplysync-backend/pkg/pagination"
)

// Entry describes one stock movement to record.
type Entry struct {
	ProductID      string
	UserID         uuid.UUID
	QuantityChange int
	Action         enums.InventoryAction
	Notes          string
}

// Service exposes the audit trail.
type Service interface {
	Record(ctx context.Context, entries []Entry) error
	List(ctx context.Context, params pagination.Params, filters Filters) (*LogList, error)
}

type service struct {
	logs Repository
}

// NewService constructs an inventory log service.
func NewService(logs Repository) (Service, error) {
	if logs == nil {
		return nil, fmt.Errorf("log repository is required")
	}
	return &service{logs: logs}, nil
}

func (s *service) Record(ctx context.Context, entries []Entry) error {
	rows := make([]models.InventoryLog, 0, len(entries))
	for _, entry := range entries {
		if !entry.Action.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory action")
		}
		if entry.ProductID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		rows = append(rows, models.InventoryLog{
			ProductID:      entry.ProductID,
			UserID:         entry.UserID,
			QuantityChange: entry.QuantityChange,
			Action:         entry.Action,
			Notes:          entry.Notes,
		})
	}
	if err := s.logs.Create(ctx, rows); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record inventory logs")
	}
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*LogList, error) {
	rows, nextCursor, err := s.logs.List(ctx, params, filters)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory logs")
	}
	return &LogList{Logs: fromModels(rows), NextCursor: nextCursor}, nil
}
