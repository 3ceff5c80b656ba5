package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/unitnode/unitnode/internal/ctxkeys"
	"github.com/unitnode/unitnode/internal/model"
	"github.com/unitnode/unitnode/internal/service"
)

type propertyHandler struct {
	propertyService *service.PropertyService
}

func NewPropertyHandler(propertyService *service.PropertyService) *propertyHandler {
	return &propertyHandler{propertyService: propertyService}
}

func (h *propertyHandler) List(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.SessionFrom(r.Context())

	properties, err := h.propertyService.List(session.UserID)
	if err != nil {
		slog.Error("failed to list properties", "error", err, "user_id", session.UserID)
		respondError(w, http.StatusInternalServerError, "Failed to fetch properties")
		return
	}

	respondSuccess(w, "", envelope{"properties": properties})
}

func (h *propertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.SessionFrom(r.Context())

	var req struct {
		Address         string  `json:"address"`
		MainTenant      string  `json:"mainTenant"`
		MainTenantPhone *string `json:"mainTenantPhone"`
		Rent            float64 `json:"rent"`
		Occupied        bool    `json:"occupied"`
		OwnerName       *string `json:"ownerName"`
		OwnerEmail      *string `json:"ownerEmail"`
		OwnerPhone      *string `json:"ownerPhone"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	property := &model.Property{
		Address:         req.Address,
		MainTenant:      req.MainTenant,
		MainTenantPhone: req.MainTenantPhone,
		Rent:            req.Rent,
		Occupied:        req.Occupied,
		OwnerName:       req.OwnerName,
		OwnerEmail:      req.OwnerEmail,
		OwnerPhone:      req.OwnerPhone,
	}

	created, err := h.propertyService.Create(session.UserID, property)
	if err != nil {
		if errors.Is(err, service.ErrAddressRequired) {
			respondError(w, http.StatusBadRequest, "Address is required")
			return
		}
		slog.Error("failed to create property", "error", err, "user_id", session.UserID)
		respondError(w, http.StatusInternalServerError, "Failed to create property")
		return
	}

	respondSuccess(w, "", envelope{"property": created})
}

func (h *propertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.SessionFrom(r.Context())
	id := r.PathValue("id")

	property, err := h.propertyService.ByID(session.UserID, id)
	if err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			respondError(w, http.StatusNotFound, "Property not found")
			return
		}
		slog.Error("failed to get property", "error", err, "property_id", id)
		respondError(w, http.StatusInternalServerError, "Failed to fetch property")
		return
	}

	respondSuccess(w, "", envelope{"property": property})
}

func (h *propertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.SessionFrom(r.Context())
	id := r.PathValue("id")

	var req struct {
		MainTenant      *string  `json:"mainTenant"`
		MainTenantPhone *string  `json:"mainTenantPhone"`
		Rent            *float64 `json:"rent"`
		Occupied        *bool    `json:"occupied"`
		OwnerName       *string  `json:"ownerName"`
		OwnerEmail      *string  `json:"ownerEmail"`
		OwnerPhone      *string  `json:"ownerPhone"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	property, err := h.propertyService.Update(session.UserID, id, service.PropertyUpdate{
		MainTenant:      req.MainTenant,
		MainTenantPhone: req.MainTenantPhone,
		Rent:            req.Rent,
		Occupied:        req.Occupied,
		OwnerName:       req.OwnerName,
		OwnerEmail:      req.OwnerEmail,
		OwnerPhone:      req.OwnerPhone,
	})
	if err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			respondError(w, http.StatusNotFound, "Property not found")
			return
		}
		slog.Error("failed to update property", "error", err, "property_id", id)
		respondError(w, http.StatusInternalServerError, "Failed to update property")
		return
	}

	respondSuccess(w, "", envelope{"property": property})
}

func (h *propertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.SessionFrom(r.Context())
	id := r.PathValue("id")

	err := h.propertyService.Delete(session.UserID, id)
	if err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			respondError(w, http.StatusNotFound, "Property not found")
			return
		}
		slog.Error("failed to delete property", "error", err, "property_id", id)
		respondError(w, http.StatusInternalServerError, "Failed to delete property")
		return
	}

	respondSuccess(w, "Property deleted", nil)
}
