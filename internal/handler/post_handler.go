package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/taskboard-platform/internal/calendar"
	"github.com/Leganyst/taskboard-platform/internal/model"
	"github.com/Leganyst/taskboard-platform/internal/service"
)

// calendarDTO — календарь в API-формате (окна в минутах от полуночи).
type calendarDTO struct {
	AvailableDates  []string              `json:"availableDates"`
	TimeWindows     []calendar.TimeWindow `json:"timeWindows"`
	DurationMinutes int                   `json:"durationMinutes"`
	IntervalMinutes int                   `json:"intervalMinutes"`
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q, want YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

func (d *calendarDTO) toCalendar() (calendar.Calendar, error) {
	cal := calendar.New()
	if d == nil {
		return cal, nil
	}
	for _, s := range d.AvailableDates {
		t, err := parseDate(s)
		if err != nil {
			return calendar.Calendar{}, err
		}
		cal.AvailableDates = append(cal.AvailableDates, t)
	}
	cal.TimeWindows = append(cal.TimeWindows, d.TimeWindows...)
	if d.DurationMinutes > 0 {
		cal.DurationMinutes = d.DurationMinutes
	}
	if d.IntervalMinutes > 0 {
		cal.IntervalMinutes = d.IntervalMinutes
	}
	return cal.Normalize(), nil
}

func calendarToDTO(cal calendar.Calendar) calendarDTO {
	dto := calendarDTO{
		AvailableDates:  make([]string, 0, len(cal.AvailableDates)),
		TimeWindows:     append([]calendar.TimeWindow{}, cal.TimeWindows...),
		DurationMinutes: cal.DurationMinutes,
		IntervalMinutes: cal.IntervalMinutes,
	}
	for _, d := range cal.AvailableDates {
		dto.AvailableDates = append(dto.AvailableDates, d.Format(dateLayout))
	}
	return dto
}

type postRequest struct {
	AuthorID    string       `json:"authorId" binding:"required,uuid"`
	Type        string       `json:"type" binding:"required,posttype"`
	Title       string       `json:"title" binding:"required"`
	Description string       `json:"description"`
	Calendar    *calendarDTO `json:"availabilityCalendar"`
	SlotCount   *int         `json:"slotCount"`
	TaskID      *string      `json:"taskId"`
	Address     string       `json:"address"`
	Lat         *float64     `json:"lat"`
	Lng         *float64     `json:"lng"`
}

type postResponse struct {
	ID          string       `json:"id"`
	AuthorID    string       `json:"authorId"`
	Type        string       `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Calendar    *calendarDTO `json:"availabilityCalendar,omitempty"`
	SlotCount   *int         `json:"slotCount,omitempty"`
	TaskID      *string      `json:"taskId,omitempty"`
	Address     string       `json:"address,omitempty"`
	Lat         *float64     `json:"lat,omitempty"`
	Lng         *float64     `json:"lng,omitempty"`
}

func toPostResponse(p *model.Post) postResponse {
	resp := postResponse{
		ID:          p.ID.String(),
		AuthorID:    p.AuthorID.String(),
		Type:        string(p.Type),
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		Lat:         p.Lat,
		Lng:         p.Lng,
	}
	// Календарь наружу отдаём только у типов, которые его несут.
	if p.Type.CarriesCalendar() {
		if cal, err := service.CalendarOf(p); err == nil {
			dto := calendarToDTO(cal)
			resp.Calendar = &dto
		}
	}
	if p.Type.CarriesSlotCount() {
		resp.SlotCount = p.SlotCount
	}
	if p.Type.CarriesTaskLink() && p.TaskID != nil {
		id := p.TaskID.String()
		resp.TaskID = &id
	}
	return resp
}

func (r *postRequest) toInput() (service.PostInput, error) {
	authorID, err := uuid.Parse(r.AuthorID)
	if err != nil {
		return service.PostInput{}, err
	}

	in := service.PostInput{
		AuthorID:    authorID,
		Type:        model.PostType(r.Type),
		Title:       r.Title,
		Description: r.Description,
		SlotCount:   r.SlotCount,
		Address:     r.Address,
		Lat:         r.Lat,
		Lng:         r.Lng,
		Calendar:    calendar.New(),
	}

	if r.Calendar != nil {
		cal, err := r.Calendar.toCalendar()
		if err != nil {
			return service.PostInput{}, err
		}
		in.Calendar = cal
	}

	if r.TaskID != nil {
		taskID, err := uuid.Parse(*r.TaskID)
		if err != nil {
			return service.PostInput{}, err
		}
		in.TaskID = &taskID
	}

	return in, nil
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.Posts.CreatePost(c.Request.Context(), in)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrUnknownPostType) ||
			errors.Is(err, service.ErrSlotCountMissing) ||
			errors.Is(err, service.ErrTaskLinkMissing) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toPostResponse(post))
}

func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.Posts.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toPostResponse(post))
}

func (h *Handler) UpdatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.Posts.UpdatePost(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		case errors.Is(err, service.ErrUnknownPostType),
			errors.Is(err, service.ErrSlotCountMissing),
			errors.Is(err, service.ErrTaskLinkMissing):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, toPostResponse(post))
}

func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.Posts.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListPosts(c *gin.Context) {
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "pageSize", 20)

	posts, total, err := h.Posts.ListPosts(c.Request.Context(), c.Query("type"), pageSize, (page-1)*pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]postResponse, 0, len(posts))
	for i := range posts {
		items = append(items, toPostResponse(&posts[i]))
	}

	c.JSON(http.StatusOK, pageEnvelope(calendar.PageFrom(items, page, pageSize, int(total))))
}

// ListUserPosts — посты автора по его хэндлу.
func (h *Handler) ListUserPosts(c *gin.Context) {
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

	posts, total, err := h.Posts.ListPostsByAuthor(c.Request.Context(), u.ID.String(), pageSize, (page-1)*pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]postResponse, 0, len(posts))
	for i := range posts {
		items = append(items, toPostResponse(&posts[i]))
	}

	c.JSON(http.StatusOK, pageEnvelope(calendar.PageFrom(items, page, pageSize, int(total))))
}

type eventResponse struct {
	ID        string    `json:"id"`
	EventType string    `json:"eventType"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    *string   `json:"userId,omitempty"`
	ClaimID   *string   `json:"claimId,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// ListPostEvents — аудит-лента поста (создание, отклики, смены статусов).
func (h *Handler) ListPostEvents(c *gin.Context) {
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "pageSize", 20)

	events, total, err := h.Posts.PostEvents(c.Request.Context(), c.Param("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		resp := eventResponse{
			ID:        ev.ID.String(),
			EventType: string(ev.EventType),
			CreatedAt: ev.CreatedAt,
			Details:   ev.Details,
		}
		if ev.UserID != nil {
			id := ev.UserID.String()
			resp.UserID = &id
		}
		if ev.ClaimID != nil {
			id := ev.ClaimID.String()
			resp.ClaimID = &id
		}
		items = append(items, resp)
	}

	c.JSON(http.StatusOK, pageEnvelope(calendar.PageFrom(items, page, pageSize, int(total))))
}

func intQuery(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return def
	}
	return i
}
