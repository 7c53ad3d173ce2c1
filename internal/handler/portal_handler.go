package handler

import (
	"errors"
	"net/http"

	"github.com/dorkyWolfie/qr-generator/internal/models"
	"github.com/dorkyWolfie/qr-generator/internal/response"
	"github.com/dorkyWolfie/qr-generator/internal/service"

	"github.com/gin-gonic/gin"
)

type PortalHandler struct {
	service *service.PortalService
}

func NewPortalHandler(service *service.PortalService) *PortalHandler {
	return &PortalHandler{
		service: service,
	}
}

func (h *PortalHandler) portalResponse(portal *models.WiFiPortal, includePassword bool) response.PortalResponse {
	resp := response.PortalResponse{
		PortalID:     portal.PortalID,
		Slug:         portal.Slug,
		Title:        portal.Title,
		SSID:         portal.SSID,
		Security:     portal.Security,
		Instructions: portal.Instructions,
		QRCodeData:   portal.QRCodeData,
		PortalURL:    h.service.PortalURL(portal.Slug),
		Visits:       portal.Visits,
		IsActive:     portal.IsActive,
		CreatedAt:    portal.CreatedAt,
		UpdatedAt:    portal.UpdatedAt,
	}
	if includePassword {
		resp.Password = portal.Password
	}
	return resp
}

func portalErrorStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidTitle),
		errors.Is(err, service.ErrInvalidSlug),
		errors.Is(err, service.ErrInvalidSSID),
		errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooLong),
		errors.Is(err, service.ErrInvalidSecurity),
		errors.Is(err, service.ErrInstructionsTooLong):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrSlugTaken):
		c.JSON(http.StatusConflict, response.ErrorResponse{Error: "This slug is already taken"})
	case errors.Is(err, service.ErrPortalNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "Portal not found"})
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "Server error"})
	}
}

type CreatePortalRequest struct {
	Title        string `json:"title" binding:"required"`
	Slug         string `json:"slug" binding:"required"`
	SSID         string `json:"ssid" binding:"required"`
	Password     string `json:"password"`
	Security     string `json:"security"`
	Instructions string `json:"instructions"`
}

// Create godoc
//
//	@Summary		Create a WiFi portal
//	@Description	Allocate the slug and persist the portal with a rendered QR of its public URL
//	@Tags			portals
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			portal	body		CreatePortalRequest	true	"Portal parameters"
//	@Success		201	{object}	response.PortalResponse	"Created portal"
//	@Failure		400	{object}	response.ErrorResponse	"Validation error"
//	@Failure		409	{object}	response.ErrorResponse	"Slug already taken"
//	@Failure		500	{object}	response.ErrorResponse	"Server error"
//	@Router			/api/portals [post]
func (h *PortalHandler) Create(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var req CreatePortalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Validation error"})
		return
	}

	portal, err := h.service.CreatePortal(id, service.CreatePortalInput{
		Title:        req.Title,
		Slug:         req.Slug,
		SSID:         req.SSID,
		Password:     req.Password,
		Security:     req.Security,
		Instructions: req.Instructions,
	})
	if err != nil {
		portalErrorStatus(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.portalResponse(portal, true))
}

// MyPortals godoc
//
//	@Summary		List own portals
//	@Description	Passwords are omitted from the list view
//	@Tags			portals
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.PortalListResponse	"Portals, newest first"
//	@Failure		401	{object}	response.ErrorResponse		"Unauthorized"
//	@Router			/api/portals [get]
func (h *PortalHandler) MyPortals(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	portals, err := h.service.GetPortalsUser(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "Server error"})
		return
	}

	resp := response.PortalListResponse{Portals: make([]response.PortalResponse, 0, len(portals))}
	for _, portal := range portals {
		resp.Portals = append(resp.Portals, h.portalResponse(portal, false))
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
//
//	@Summary		Get an own portal
//	@Description	Owner view, includes the network password
//	@Tags			portals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			portalId	path		string	true	"Portal ID"
//	@Success		200	{object}	response.PortalResponse	"Portal"
//	@Failure		404	{object}	response.ErrorResponse	"Portal not found"
//	@Router			/api/portals/{portalId} [get]
func (h *PortalHandler) Get(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	portal, err := h.service.GetPortal(c.Param("portalId"), id)
	if err != nil {
		portalErrorStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, h.portalResponse(portal, true))
}

type UpdatePortalRequest struct {
	Title        *string `json:"title"`
	SSID         *string `json:"ssid"`
	Password     *string `json:"password"`
	Security     *string `json:"security"`
	Instructions *string `json:"instructions"`
	IsActive     *bool   `json:"is_active"`
}

// Update godoc
//
//	@Summary		Update a portal
//	@Tags			portals
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			portalId	path		string				true	"Portal ID"
//	@Param			portal		body		UpdatePortalRequest	true	"Fields to update"
//	@Success		200	{object}	response.PortalResponse	"Updated portal"
//	@Failure		400	{object}	response.ErrorResponse	"Validation error"
//	@Failure		404	{object}	response.ErrorResponse	"Portal not found"
//	@Failure		500	{object}	response.ErrorResponse	"Server error"
//	@Router			/api/portals/{portalId} [put]
func (h *PortalHandler) Update(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var req UpdatePortalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Validation error"})
		return
	}

	portal, err := h.service.UpdatePortal(c.Param("portalId"), id, service.UpdatePortalInput{
		Title:        req.Title,
		SSID:         req.SSID,
		Password:     req.Password,
		Security:     req.Security,
		Instructions: req.Instructions,
		IsActive:     req.IsActive,
	})
	if err != nil {
		portalErrorStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, h.portalResponse(portal, true))
}

// Delete godoc
//
//	@Summary		Delete a portal
//	@Tags			portals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			portalId	path		string	true	"Portal ID"
//	@Success		200	{object}	map[string]string		"Deleted"
//	@Failure		404	{object}	response.ErrorResponse	"Portal not found"
//	@Router			/api/portals/{portalId} [delete]
func (h *PortalHandler) Delete(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePortal(c.Param("portalId"), id); err != nil {
		portalErrorStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Portal deleted"})
}

// CheckSlug godoc
//
//	@Summary		Check slug availability
//	@Description	Advisory only: a positive answer does not guarantee a later create succeeds
//	@Tags			portals
//	@Produce		json
//	@Param			slug	path		string	true	"Candidate slug"
//	@Success		200	{object}	response.AvailabilityResponse	"Availability"
//	@Failure		400	{object}	response.AvailabilityResponse	"Invalid format"
//	@Router			/api/portals/check/{slug} [get]
func (h *PortalHandler) CheckSlug(c *gin.Context) {
	available, err := h.service.CheckSlugAvailability(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidSlug) {
			c.JSON(http.StatusBadRequest, response.AvailabilityResponse{Available: false, Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "Server error"})
		return
	}

	msg := "This slug is available"
	if !available {
		msg = "This slug is already taken"
	}
	c.JSON(http.StatusOK, response.AvailabilityResponse{Available: available, Message: msg})
}

// PublicView godoc
//
//	@Summary		Public portal page data
//	@Description	Visitor view with join credentials; records the visit
//	@Tags			public
//	@Produce		json
//	@Param			slug	path		string	true	"Portal slug"
//	@Success		200	{object}	response.PublicPortalResponse	"Portal"
//	@Failure		404	{object}	response.ErrorResponse			"Unknown or inactive portal"
//	@Router			/wifi/{slug} [get]
func (h *PortalHandler) PublicView(c *gin.Context) {
	portal, err := h.service.ResolvePublic(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPortalNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "Portal not found or inactive"})
			return
		}
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "Server error"})
		return
	}

	c.JSON(http.StatusOK, response.PublicPortalResponse{
		Title:        portal.Title,
		SSID:         portal.SSID,
		Password:     portal.Password,
		Security:     portal.Security,
		Instructions: portal.Instructions,
		Slug:         portal.Slug,
	})
}
