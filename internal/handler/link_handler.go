package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/dorkyWolfie/qr-generator/internal/logostore"
	"github.com/dorkyWolfie/qr-generator/internal/models"
	"github.com/dorkyWolfie/qr-generator/internal/response"
	"github.com/dorkyWolfie/qr-generator/internal/security"
	"github.com/dorkyWolfie/qr-generator/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LinkHandler struct {
	service *service.LinkService
}

func NewLinkHandler(service *service.LinkService) *LinkHandler {
	return &LinkHandler{
		service: service,
	}
}

func isBlockedRedirect(err error) bool {
	return errors.Is(err, security.ErrBadScheme) ||
		errors.Is(err, security.ErrBlockedDomain) ||
		errors.Is(err, security.ErrBlockedTLD) ||
		errors.Is(err, security.ErrPrivateNetwork)
}

func (h *LinkHandler) linkResponse(link *models.ShortLink) response.ShortLinkResponse {
	return response.ShortLinkResponse{
		ID:          link.ID.String(),
		ShortCode:   link.ShortCode,
		Title:       link.Title,
		TargetURL:   link.TargetURL,
		QRCodeData:  link.QRCodeData,
		RedirectURL: h.service.RedirectURL(link.ShortCode),
		Clicks:      link.Clicks,
		IsActive:    link.IsActive,
		HasLogo:     link.LogoPath != "",
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	}
}

// Create godoc
//
//	@Summary		Create a short link
//	@Description	Allocate a code, render the QR image (with optional logo) and persist the link
//	@Tags			links
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			title		formData	string	true	"Link title"
//	@Param			target_url	formData	string	true	"Redirect target"
//	@Param			custom_code	formData	string	false	"Caller-supplied short code"
//	@Param			logo		formData	file	false	"Logo image (png/jpeg/gif/webp, max 2MB)"
//	@Success		201	{object}	response.ShortLinkResponse	"Created link"
//	@Failure		400	{object}	response.ErrorResponse		"Validation error"
//	@Failure		409	{object}	response.ErrorResponse		"Code already taken"
//	@Failure		422	{object}	response.ErrorResponse		"Redirect target refused"
//	@Failure		500	{object}	response.ErrorResponse		"Server error"
//	@Router			/api/links [post]
func (h *LinkHandler) Create(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	in := service.CreateLinkInput{
		Title:         c.PostForm("title"),
		TargetURL:     c.PostForm("target_url"),
		CandidateCode: c.PostForm("custom_code"),
	}

	if file, err := c.FormFile("logo"); err == nil {
		if file.Size > logostore.MaxLogoSize {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Logo file too large (max 2MB)"})
			return
		}
		ext := filepath.Ext(file.Filename)
		if !logostore.AllowedExtension(ext) {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Only PNG, JPEG, GIF and WebP logos are allowed"})
			return
		}
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Failed to read logo upload"})
			return
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, logostore.MaxLogoSize+1))
		if err != nil || int64(len(data)) > logostore.MaxLogoSize {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Failed to read logo upload"})
			return
		}
		in.Logo = data
		in.LogoExt = ext
	}

	link, err := h.service.CreateShortLink(id, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTitle), errors.Is(err, service.ErrInvalidCode):
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		case isBlockedRedirect(err):
			c.JSON(http.StatusUnprocessableEntity, response.ErrorResponse{Error: "Redirect target refused: " + err.Error()})
		case errors.Is(err, service.ErrCodeTaken):
			c.JSON(http.StatusConflict, response.ErrorResponse{Error: "This short code is already taken"})
		default:
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "Server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, h.linkResponse(link))
}

// MyLinks godoc
//
//	@Summary		List own short links
//	@Tags			links
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.ShortLinkListResponse	"Links, newest first"
//	@Failure		401	{object}	response.ErrorResponse			"Unauthorized"
//	@Router			/api/links [get]
func (h *LinkHandler) MyLinks(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	links, err := h.service.GetLinksUser(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "Server error"})
		return
	}

	resp := response.ShortLinkListResponse{ShortLinks: make([]response.ShortLinkResponse, 0, len(links))}
	for _, link := range links {
		resp.ShortLinks = append(resp.ShortLinks, h.linkResponse(link))
	}
	c.JSON(http.StatusOK, resp)
}

type UpdateLinkRequest struct {
	Title     *string `json:"title"`
	TargetURL *string `json:"target_url"`
	IsActive  *bool   `json:"is_active"`
}

// Update godoc
//
//	@Summary		Update a short link
//	@Description	Change title, target URL or active flag; a target change re-renders the QR image
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Link ID"
//	@Param			link	body		UpdateLinkRequest	true	"Fields to update"
//	@Success		200	{object}	response.ShortLinkResponse	"Updated link"
//	@Failure		400	{object}	response.ErrorResponse		"Validation error"
//	@Failure		404	{object}	response.ErrorResponse		"Link not found"
//	@Failure		422	{object}	response.ErrorResponse		"Redirect target refused"
//	@Failure		500	{object}	response.ErrorResponse		"Server error"
//	@Router			/api/links/{id} [put]
func (h *LinkHandler) Update(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	linkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid link ID"})
		return
	}

	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Validation error"})
		return
	}

	link, err := h.service.UpdateShortLink(linkID, id, service.UpdateLinkInput{
		Title:     req.Title,
		TargetURL: req.TargetURL,
		IsActive:  req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLinkNotFound):
			c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "Link not found"})
		case errors.Is(err, service.ErrInvalidTitle):
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		case isBlockedRedirect(err):
			c.JSON(http.StatusUnprocessableEntity, response.ErrorResponse{Error: "Redirect target refused: " + err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, h.linkResponse(link))
}

// Delete godoc
//
//	@Summary		Delete a short link
//	@Description	Hard-delete the link and its owned logo asset
//	@Tags			links
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Link ID"
//	@Success		200	{object}	map[string]string		"Deleted"
//	@Failure		404	{object}	response.ErrorResponse	"Link not found"
//	@Failure		500	{object}	response.ErrorResponse	"Server error"
//	@Router			/api/links/{id} [delete]
func (h *LinkHandler) Delete(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	linkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid link ID"})
		return
	}

	if err := h.service.DeleteShortLink(linkID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrLinkNotFound):
			c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "Link not found"})
		default:
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link deleted"})
}

// CheckCode godoc
//
//	@Summary		Check short code availability
//	@Description	Advisory only: a positive answer does not guarantee a later create succeeds
//	@Tags			links
//	@Produce		json
//	@Security		BearerAuth
//	@Param			code	path		string	true	"Candidate short code"
//	@Success		200	{object}	response.AvailabilityResponse	"Availability"
//	@Failure		400	{object}	response.AvailabilityResponse	"Invalid format"
//	@Router			/api/links/check/{code} [get]
func (h *LinkHandler) CheckCode(c *gin.Context) {
	available, err := h.service.CheckAvailability(c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			c.JSON(http.StatusBadRequest, response.AvailabilityResponse{Available: false, Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "Server error"})
		return
	}

	msg := "This short code is available"
	if !available {
		msg = "This short code is already taken"
	}
	c.JSON(http.StatusOK, response.AvailabilityResponse{Available: available, Message: msg})
}

// Redirect godoc
//
//	@Summary		Resolve a short code
//	@Description	Redirect to the stored target and record the click
//	@Tags			public
//	@Param			code	path	string	true	"Short code"
//	@Success		302	"Redirect to target"
//	@Failure		403	{object}	response.ErrorResponse	"Redirect refused"
//	@Failure		404	{object}	response.ErrorResponse	"Unknown or inactive code"
//	@Router			/r/{code} [get]
func (h *LinkHandler) Redirect(c *gin.Context) {
	target, err := h.service.Resolve(c.Param("code"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLinkNotFound):
			c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "Short link not found or inactive"})
		case isBlockedRedirect(err):
			// Explicit refusal, never a silent redirect.
			c.JSON(http.StatusForbidden, response.ErrorResponse{Error: "Redirect refused"})
		default:
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "Server error"})
		}
		return
	}

	c.Redirect(http.StatusFound, target)
}
