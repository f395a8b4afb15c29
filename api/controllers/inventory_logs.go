package controllers

import (
	"net/http"

	"github.com/supplysync/supplysync-backend/api/responses"
	"github.com/supplysync/supplysync-backend/api/validators"
	"github.com/supplysync/supplysync-backend/internal/inventorylog"
	pkgerrors "github.com/supplysync/supplysync-backend/pkg/errors"
	"github.com/supplysync/supplysync-backend/pkg/enums"
	"github.com/supplysync/supplysync-backend/pkg/logger"
	"github.com/supplysync/supplysync-backend/pkg/pagination"
)

const (
	defaultLogPageSize = 50
	maxLogPageSize     = 200
)

func ListInventoryLogs(svc inventorylog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", defaultLogPageSize, 1, maxLogPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := inventorylog.Filters{
			ProductID: validators.ParseQueryEnum(r, "product_id"),
		}
		if raw := validators.ParseQueryEnum(r, "action"); raw != "" {
			action, err := enums.ParseInventoryAction(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "unknown inventory action"))
				return
			}
			filters.Action = &action
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
