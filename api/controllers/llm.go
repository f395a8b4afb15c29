package controllers

import (
	"net/http"

	"github.com/supplysync/supplysync-backend/api/responses"
	"github.com/supplysync/supplysync-backend/api/validators"
	"github.com/supplysync/supplysync-backend/internal/llmquery"
	"github.com/supplysync/supplysync-backend/pkg/logger"
)

type llmQueryRequest struct {
	Question string `json:"question" validate:"required,min=3"`
}

func LLMQuery(svc llmquery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload llmQueryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ProcessQuery(r.Context(), payload.Question)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
