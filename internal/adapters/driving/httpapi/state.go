package httpapi

import (
	"net/http"

	"github.com/custodia-labs/habitsync/internal/core/domain"
)

type stateResponse struct {
	State domain.AppState `json:"state"`
}

func (a *API) getState(w http.ResponseWriter, r *http.Request) {
	req := userRequest{UserID: r.URL.Query().Get("userId")}
	if err := a.validator.Struct(req); err != nil {
		writeFailure(w, err)
		return
	}

	state, err := a.ports.State.Get(r.Context(), req.UserID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: state})
}

type setStateRequest struct {
	UserID string          `json:"userId" validate:"notblank"`
	State  domain.AppState `json:"state" validate:"required"`
}

func (a *API) setState(w http.ResponseWriter, r *http.Request) {
	var req setStateRequest
	if err := a.decode(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}

	if err := a.ports.State.Set(r.Context(), req.UserID, req.State); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
