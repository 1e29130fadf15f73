package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/taskboard-platform/internal/model"
	"github.com/Leganyst/taskboard-platform/internal/service"
)

type registerRequest struct {
	Handle       string `json:"handle" binding:"required,min=3,max=64"`
	DisplayName  string `json:"displayName"`
	ContactPhone string `json:"contactPhone"`
}

type updateContactsRequest struct {
	DisplayName  string `json:"displayName"`
	ContactPhone string `json:"contactPhone"`
	Note         string `json:"note"`
}

type userResponse struct {
	ID           string `json:"id"`
	Handle       string `json:"handle"`
	DisplayName  string `json:"displayName"`
	ContactPhone string `json:"contactPhone,omitempty"`
	Status       string `json:"status"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:           u.ID.String(),
		Handle:       u.Handle,
		DisplayName:  u.DisplayName,
		ContactPhone: u.ContactPhone,
		Status:       string(u.Status),
	}
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.Users.RegisterUser(c.Request.Context(), req.Handle, req.DisplayName, req.ContactPhone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(u))
}

// LookupUserByPhone — поиск профиля по контактному телефону (?phone=...).
func (h *Handler) LookupUserByPhone(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter: phone"})
		return
	}

	u, err := h.Users.FindByPhone(c.Request.Context(), phone)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *Handler) GetProfile(c *gin.Context) {
	u, err := h.Users.GetProfile(c.Request.Context(), c.Param("handle"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *Handler) UpdateContacts(c *gin.Context) {
	var req updateContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.Users.UpdateContacts(c.Request.Context(), c.Param("handle"), req.DisplayName, req.ContactPhone, req.Note)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}
