package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/taskboard-platform/internal/calendar"
	"github.com/Leganyst/taskboard-platform/internal/model"
	"github.com/Leganyst/taskboard-platform/internal/service"
)

type claimRequest struct {
	ClaimantID string     `json:"claimantId" binding:"required,uuid"`
	SlotStart  *time.Time `json:"slotStart"`
	SlotEnd    *time.Time `json:"slotEnd"`
	Comment    string     `json:"comment"`
}

type claimResponse struct {
	ID         string     `json:"id"`
	PostID     string     `json:"postId"`
	ClaimantID string     `json:"claimantId"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	SlotStart  *time.Time `json:"slotStart,omitempty"`
	SlotEnd    *time.Time `json:"slotEnd,omitempty"`
	Comment    string     `json:"comment,omitempty"`
}

func toClaimResponse(cl *model.Claim) claimResponse {
	return claimResponse{
		ID:         cl.ID.String(),
		PostID:     cl.PostID.String(),
		ClaimantID: cl.ClaimantID.String(),
		Kind:       string(cl.Kind),
		Status:     string(cl.Status),
		SlotStart:  cl.SlotStart,
		SlotEnd:    cl.SlotEnd,
		Comment:    cl.Comment,
	}
}

func (r *claimRequest) slot() *service.SlotSelection {
	if r.SlotStart == nil || r.SlotEnd == nil {
		return nil
	}
	return &service.SlotSelection{Start: r.SlotStart.UTC(), End: r.SlotEnd.UTC()}
}

// halfSpecifiedSlot — пришла только одна из границ слота.
func (r *claimRequest) halfSpecifiedSlot() bool {
	return (r.SlotStart == nil) != (r.SlotEnd == nil)
}

type claimFn func(c *gin.Context, postID string, req claimRequest) (*model.Claim, error)

func (h *Handler) handleClaim(c *gin.Context, fn claimFn) {
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.halfSpecifiedSlot() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slotStart and slotEnd must be provided together"})
		return
	}

	claim, err := fn(c, c.Param("id"), req)
	if err != nil {
		h.writeClaimError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toClaimResponse(claim))
}

// writeClaimError переводит доменные ошибки в HTTP-статусы.
// «Нечего планировать» сюда не попадает: это валидные пустые состояния.
func (h *Handler) writeClaimError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound), errors.Is(err, service.ErrClaimNotFound),
		errors.Is(err, service.ErrClaimantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrWrongPostType), errors.Is(err, service.ErrSlotNotAllowed),
		errors.Is(err, service.ErrSlotRequired), errors.Is(err, service.ErrSlotNotOffered):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSlotUnavailable), errors.Is(err, service.ErrAlreadyClaimed),
		errors.Is(err, service.ErrNoSlotsLeft), errors.Is(err, service.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrClaimantInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) ClaimSwap(c *gin.Context) {
	h.handleClaim(c, func(c *gin.Context, postID string, req claimRequest) (*model.Claim, error) {
		return h.Claims.ClaimSwap(c.Request.Context(), postID, req.ClaimantID, req.slot(), req.Comment)
	})
}

func (h *Handler) ClaimFreecycle(c *gin.Context) {
	h.handleClaim(c, func(c *gin.Context, postID string, req claimRequest) (*model.Claim, error) {
		return h.Claims.ClaimFreecycleItem(c.Request.Context(), postID, req.ClaimantID, req.slot(), req.Comment)
	})
}

func (h *Handler) PledgeSlot(c *gin.Context) {
	h.handleClaim(c, func(c *gin.Context, postID string, req claimRequest) (*model.Claim, error) {
		return h.Claims.PledgeVolunteerSlot(c.Request.Context(), postID, req.ClaimantID, req.slot(), req.Comment)
	})
}

func (h *Handler) ListClaims(c *gin.Context) {
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "pageSize", 20)

	claims, total, err := h.Claims.ListClaims(c.Request.Context(), c.Param("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		h.writeClaimError(c, err)
		return
	}

	items := make([]claimResponse, 0, len(claims))
	for i := range claims {
		items = append(items, toClaimResponse(&claims[i]))
	}

	c.JSON(http.StatusOK, pageEnvelope(calendar.PageFrom(items, page, pageSize, int(total))))
}

// ListUserClaims — отклики пользователя по его хэндлу.
func (h *Handler) ListUserClaims(c *gin.Context) {
	u, err := h.Users.GetProfile(c.Request.Context(), c.Param("handle"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "pageSize", 20)

	claims, total, err := h.Claims.ListClaimantClaims(c.Request.Context(), u.ID.String(), pageSize, (page-1)*pageSize)
	if err != nil {
		h.writeClaimError(c, err)
		return
	}

	items := make([]claimResponse, 0, len(claims))
	for i := range claims {
		items = append(items, toClaimResponse(&claims[i]))
	}

	c.JSON(http.StatusOK, pageEnvelope(calendar.PageFrom(items, page, pageSize, int(total))))
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) TransitionClaim(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.Claims.Transition(c.Request.Context(), c.Param("id"), model.ClaimStatus(req.Status))
	if err != nil {
		h.writeClaimError(c, err)
		return
	}

	c.JSON(http.StatusOK, toClaimResponse(claim))
}

func (h *Handler) CancelClaim(c *gin.Context) {
	claim, err := h.Claims.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeClaimError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClaimResponse(claim))
}

// SelectableDates — даты для выбора: будущие, по возрастанию, постранично.
// Пустой список — валидный ответ «договоритесь в переписке», не ошибка.
func (h *Handler) SelectableDates(c *gin.Context) {
	dates, err := h.Claims.SelectableDates(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeClaimError(c, err)
		return
	}

	page := calendar.Paginate(dates, intQuery(c, "page", 1), intQuery(c, "pageSize", 20))

	items := make([]string, 0, len(page.Items))
	for _, d := range page.Items {
		items = append(items, d.Format(dateLayout))
	}

	env := pageEnvelope(page)
	env["items"] = items
	env["schedulable"] = page.Total > 0
	c.JSON(http.StatusOK, env)
}

// SlotsForDate — материализованные слоты поста на дату ?date=YYYY-MM-DD.
// Дата вне календаря даёт пустой список, не ошибку.
func (h *Handler) SlotsForDate(c *gin.Context) {
	date, err := parseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slots, err := h.Claims.SlotsForDate(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		h.writeClaimError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": slots})
}
