package handlers

import (
	"market-dash-service/internal/api/dto"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/services"
	"net/http"
)

type ProfileHandler struct {
	Svc *services.ProfileService
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}

	profiles, err := h.Svc.List(r.Context(), a, domain.Role(r.URL.Query().Get("role")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListProfilesResponse{Profiles: make([]dto.ProfileResponse, 0, len(profiles))}
	for _, p := range profiles {
		res.Profiles = append(res.Profiles, profileResponse(p))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.Svc.Get(r.Context(), a, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profileResponse(p))
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dto.CreateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := &domain.Profile{FullName: req.FullName, Email: req.Email, Phone: req.Phone, Role: domain.Role(req.Role)}
	if err := h.Svc.Create(r.Context(), a, p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, profileResponse(p))
}

func (h *ProfileHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.Svc.UpdateRole(r.Context(), a, id, domain.Role(req.Role))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profileResponse(p))
}
