package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Leganyst/taskboard-platform/internal/calendar"
	"github.com/Leganyst/taskboard-platform/internal/geo"
	"github.com/Leganyst/taskboard-platform/internal/model"
	"github.com/Leganyst/taskboard-platform/internal/service"
)

func init() {
	// Кастомная валидация типа поста на уровне binding-тегов.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("posttype", func(fl validator.FieldLevel) bool {
			return model.PostType(fl.Field().String()).Known()
		})
	}
}

// Handler агрегирует сервисы для HTTP-слоя.
type Handler struct {
	Posts    *service.PostService
	Claims   *service.ClaimService
	Users    *service.UserService
	Geocoder *geo.Geocoder
	Log      zerolog.Logger
}

// NewRouter собирает маршруты доски объявлений.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/v1")
	{
		api.POST("/users", h.RegisterUser)
		api.GET("/users", h.LookupUserByPhone)
		api.GET("/users/:handle", h.GetProfile)
		api.PUT("/users/:handle", h.UpdateContacts)
		api.GET("/users/:handle/posts", h.ListUserPosts)
		api.GET("/users/:handle/claims", h.ListUserClaims)

		api.POST("/posts", h.CreatePost)
		api.GET("/posts", h.ListPosts)
		api.GET("/posts/:id", h.GetPost)
		api.PUT("/posts/:id", h.UpdatePost)
		api.DELETE("/posts/:id", h.DeletePost)

		// Доступность: даты для выбора и слоты выбранной даты.
		api.GET("/posts/:id/dates", h.SelectableDates)
		api.GET("/posts/:id/slots", h.SlotsForDate)

		// Аудит-лента поста.
		api.GET("/posts/:id/events", h.ListPostEvents)

		// Отклики: три варианта + машина статусов.
		api.POST("/posts/:id/claims/swap", h.ClaimSwap)
		api.POST("/posts/:id/claims/freecycle", h.ClaimFreecycle)
		api.POST("/posts/:id/claims/pledge", h.PledgeSlot)
		api.GET("/posts/:id/claims", h.ListClaims)
		api.PATCH("/claims/:id/status", h.TransitionClaim)
		api.DELETE("/claims/:id", h.CancelClaim)

		api.GET("/geocode", h.GeocodeAddress)
	}

	return r
}

// pageEnvelope — единый JSON-конверт страницы для всех списочных ручек.
func pageEnvelope[T any](p calendar.Page[T]) gin.H {
	return gin.H{
		"items":    p.Items,
		"page":     p.Page,
		"pageSize": p.PageSize,
		"total":    p.Total,
		"hasNext":  p.HasNext,
		"hasPrev":  p.HasPrev,
	}
}
