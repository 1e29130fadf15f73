package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/Leganyst/taskboard-platform/internal/calendar"
	"github.com/Leganyst/taskboard-platform/internal/geo"
	"github.com/Leganyst/taskboard-platform/internal/model"
	"github.com/Leganyst/taskboard-platform/internal/repository"
)

var (
	ErrUnknownPostType  = errors.New("unknown post type")
	ErrSlotCountMissing = errors.New("volunteer slot pack requires a positive slot count")
	ErrTaskLinkMissing  = errors.New("task promo requires a linked task id")
)

// PostInput — данные формы создания/редактирования поста.
// Calendar всегда приходит целиком (редактор отдаёт полное значение);
// для типов без календаря поле молча игнорируется.
type PostInput struct {
	AuthorID    uuid.UUID
	Type        model.PostType
	Title       string
	Description string
	Calendar    calendar.Calendar
	SlotCount   *int
	TaskID      *uuid.UUID
	Address     string
	Lat         *float64
	Lng         *float64
}

// PostService — создание и редактирование постов доски.
type PostService struct {
	postRepo  repository.PostRepository
	eventRepo repository.EventRepository
	locations *geo.AddressResolver // nil — без фонового геокодирования
	log       zerolog.Logger
}

func NewPostService(
	postRepo repository.PostRepository,
	eventRepo repository.EventRepository,
	locations *geo.AddressResolver,
	log zerolog.Logger,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		eventRepo: eventRepo,
		locations: locations,
		log:       log,
	}
}

// applyInput валидирует вход по типу поста и раскладывает его в модель.
// Ветвление по типу — только через методы закрытого перечисления.
func applyInput(post *model.Post, in PostInput) error {
	if err := model.ValidatePostType(in.Type); err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownPostType, err)
	}

	post.Type = in.Type
	post.Title = in.Title
	post.Description = in.Description
	post.Address = in.Address
	post.Lat = in.Lat
	post.Lng = in.Lng

	// Календарь хранится только у типов, которые его несут.
	// Пустой календарь — валидное «без расписания», тоже сохраняем.
	if in.Type.CarriesCalendar() {
		raw, err := in.Calendar.Normalize().ToJSON()
		if err != nil {
			return fmt.Errorf("encode calendar: %w", err)
		}
		post.Calendar = datatypes.JSON(raw)
	} else {
		post.Calendar = nil
	}

	if in.Type.CarriesSlotCount() {
		if in.SlotCount == nil || *in.SlotCount <= 0 {
			return ErrSlotCountMissing
		}
		post.SlotCount = in.SlotCount
	} else {
		post.SlotCount = nil
	}

	if in.Type.CarriesTaskLink() {
		if in.TaskID == nil {
			return ErrTaskLinkMissing
		}
		post.TaskID = in.TaskID
	} else {
		post.TaskID = nil
	}

	return nil
}

// CreatePost создаёт пост и пишет событие аудита.
func (s *PostService) CreatePost(ctx context.Context, in PostInput) (*model.Post, error) {
	post := &model.Post{AuthorID: in.AuthorID}
	if err := applyInput(post, in); err != nil {
		return nil, err
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.audit(ctx, model.EventTypePostCreated, post, "post created")
	s.resolveLocation(post)
	return post, nil
}

// UpdatePost перезаписывает пост целиком по контракту редактирования:
// редактор сидирует из сохранённого значения и возвращает полную замену.
func (s *PostService) UpdatePost(ctx context.Context, id string, in PostInput) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}

	if err := applyInput(post, in); err != nil {
		return nil, err
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	s.audit(ctx, model.EventTypePostUpdated, post, "post updated")
	s.resolveLocation(post)
	return post, nil
}

// resolveLocation догеокодирует адрес поста в фоне. Ключ дебаунса — ID поста:
// быстрые последовательные правки адреса дают один запрос к геокодеру,
// результат дописывается в пост, когда придёт.
func (s *PostService) resolveLocation(post *model.Post) {
	if s.locations == nil || post.Address == "" {
		return
	}
	if post.Lat != nil && post.Lng != nil {
		return
	}

	postID := post.ID.String()
	s.locations.Resolve(postID, post.Address, func(coords *geo.Coordinates, err error) {
		if err != nil {
			s.log.Warn().Err(err).Str("post_id", postID).Msg("resolve post location failed")
			return
		}
		if err := s.postRepo.UpdateCoordinates(context.Background(), postID, coords.Lat, coords.Lng); err != nil {
			s.log.Warn().Err(err).Str("post_id", postID).Msg("store post location failed")
		}
	})
}

// GetPost отдаёт пост по ID.
func (s *PostService) GetPost(ctx context.Context, id string) (*model.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// DeletePost удаляет пост.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	return s.postRepo.Delete(ctx, id)
}

// ListPosts — лента с фильтром по типу.
func (s *PostService) ListPosts(ctx context.Context, postType string, limit, offset int) ([]model.Post, int64, error) {
	return s.postRepo.List(ctx, postType, limit, offset)
}

// ListPostsByAuthor — посты автора.
func (s *PostService) ListPostsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]model.Post, int64, error) {
	return s.postRepo.ListByAuthor(ctx, authorID, limit, offset)
}

// PostEvents — аудит-лента поста (новые сверху).
func (s *PostService) PostEvents(ctx context.Context, postID string, limit, offset int) ([]model.Event, int64, error) {
	return s.eventRepo.ListByPost(ctx, postID, limit, offset)
}

// CalendarOf декодирует календарь поста. Для типов без календаря всегда
// возвращается пустой календарь, даже если в хранилище что-то лежит:
// notice никогда не показывает и не запрашивает расписание.
func CalendarOf(post *model.Post) (calendar.Calendar, error) {
	if post == nil || !post.Type.CarriesCalendar() {
		return calendar.New(), nil
	}
	return calendar.FromJSON([]byte(post.Calendar))
}

func (s *PostService) audit(ctx context.Context, et model.EventType, post *model.Post, details string) {
	ev := &model.Event{
		EventType: et,
		UserID:    &post.AuthorID,
		PostID:    &post.ID,
		Details:   details,
	}
	if err := s.eventRepo.Create(ctx, ev); err != nil {
		// Аудит не должен ронять основную операцию.
		s.log.Warn().Err(err).Str("post_id", post.ID.String()).Msg("audit event failed")
	}
}
