package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Leganyst/taskboard-platform/internal/calendar"
	"github.com/Leganyst/taskboard-platform/internal/model"
	"github.com/Leganyst/taskboard-platform/internal/repository"
)

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrClaimNotFound     = errors.New("claim not found")
	ErrClaimantNotFound  = errors.New("claimant not found")
	ErrClaimantInactive  = errors.New("claimant is inactive")
	ErrWrongPostType     = errors.New("claim kind does not match post type")
	ErrSlotNotAllowed    = errors.New("post has no calendar, slot must be omitted")
	ErrSlotRequired      = errors.New("post has a calendar, a slot must be selected")
	ErrSlotNotOffered    = errors.New("slot does not match any offered slot")
	ErrSlotUnavailable   = errors.New("slot is not available")
	ErrAlreadyClaimed    = errors.New("claimant already has an active claim on this post")
	ErrNoSlotsLeft       = errors.New("volunteer slot pack is full")
	ErrIllegalTransition = errors.New("illegal claim status transition")
)

// SlotSelection — выбранный пользователем материализованный слот.
type SlotSelection struct {
	Start time.Time
	End   time.Time
}

// ClaimService — отклики на посты: claim swap / claim item / pledge slot,
// машина статусов взаимодействия и запросы доступности.
type ClaimService struct {
	claimRepo repository.ClaimRepository
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	eventRepo repository.EventRepository
	now       func() time.Time
	log       zerolog.Logger
}

func NewClaimService(
	claimRepo repository.ClaimRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	eventRepo repository.EventRepository,
	log zerolog.Logger,
) *ClaimService {
	return &ClaimService{
		claimRepo: claimRepo,
		postRepo:  postRepo,
		userRepo:  userRepo,
		eventRepo: eventRepo,
		now:       time.Now,
		log:       log,
	}
}

// kindForPostType — закрытое соответствие «тип поста → вид отклика».
func kindForPostType(t model.PostType) (model.ClaimKind, bool) {
	switch t {
	case model.PostTypeSwap:
		return model.ClaimKindSwap, true
	case model.PostTypeFreecycle:
		return model.ClaimKindFreecycle, true
	case model.PostTypeVolunteerSlotPack:
		return model.ClaimKindVolunteerPledge, true
	case model.PostTypeTaskPromo, model.PostTypeNotice:
		return "", false
	}
	return "", false
}

// ClaimSwap — отклик на пост обмена.
func (s *ClaimService) ClaimSwap(ctx context.Context, postID, claimantID string, slot *SlotSelection, comment string) (*model.Claim, error) {
	return s.createClaim(ctx, model.PostTypeSwap, postID, claimantID, slot, comment)
}

// ClaimFreecycleItem — отклик на фрисайкл.
func (s *ClaimService) ClaimFreecycleItem(ctx context.Context, postID, claimantID string, slot *SlotSelection, comment string) (*model.Claim, error) {
	return s.createClaim(ctx, model.PostTypeFreecycle, postID, claimantID, slot, comment)
}

// PledgeVolunteerSlot — волонтёрский отклик на слот-пак.
func (s *ClaimService) PledgeVolunteerSlot(ctx context.Context, postID, claimantID string, slot *SlotSelection, comment string) (*model.Claim, error) {
	return s.createClaim(ctx, model.PostTypeVolunteerSlotPack, postID, claimantID, slot, comment)
}

func (s *ClaimService) createClaim(
	ctx context.Context,
	wantType model.PostType,
	postID, claimantID string,
	slot *SlotSelection,
	comment string,
) (*model.Claim, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("load post: %w", err)
	}
	if post.Type != wantType {
		return nil, ErrWrongPostType
	}
	kind, ok := kindForPostType(post.Type)
	if !ok {
		return nil, ErrWrongPostType
	}

	claimant, err := s.validateClaimant(ctx, claimantID)
	if err != nil {
		return nil, err
	}

	// Один активный отклик на пост от пользователя.
	if _, err := s.claimRepo.FindActiveByPostAndClaimant(ctx, postID, claimantID); err == nil {
		return nil, ErrAlreadyClaimed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing claim: %w", err)
	}

	cal, err := CalendarOf(post)
	if err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}

	claim := &model.Claim{
		PostID:     post.ID,
		ClaimantID: claimant.ID,
		Kind:       kind,
		Status:     model.ClaimStatusPending,
		Comment:    comment,
	}

	if cal.Unscheduled() {
		// Без расписания договариваются в переписке: слот не передаётся.
		if slot != nil {
			return nil, ErrSlotNotAllowed
		}
	} else {
		if slot == nil {
			return nil, ErrSlotRequired
		}
		chosen, err := s.validateSlot(ctx, post, cal, *slot)
		if err != nil {
			return nil, err
		}
		claim.SlotStart = &chosen.Start
		claim.SlotEnd = &chosen.End
	}

	// Лимит волонтёрских мест.
	if post.Type.CarriesSlotCount() && post.SlotCount != nil {
		active, err := s.claimRepo.CountActiveByPost(ctx, postID)
		if err != nil {
			return nil, fmt.Errorf("count pledges: %w", err)
		}
		if active >= int64(*post.SlotCount) {
			return nil, ErrNoSlotsLeft
		}
	}

	if err := s.claimRepo.Create(ctx, claim); err != nil {
		return nil, fmt.Errorf("create claim: %w", err)
	}

	s.audit(ctx, model.EventTypeClaimCreated, claim, "claim created")
	return claim, nil
}

// validateSlot сверяет выбор с материализованными слотами поста на дату выбора.
// Занятость берётся из активных откликов — настоящего источника броней.
func (s *ClaimService) validateSlot(ctx context.Context, post *model.Post, cal calendar.Calendar, sel SlotSelection) (calendar.Slot, error) {
	booked := s.bookedLookup(ctx, post)
	slots := calendar.Resolve(cal, sel.Start, s.now(), booked)
	for _, m := range slots {
		if m.Start.Equal(sel.Start) && m.End.Equal(sel.End) {
			if !m.IsAvailable {
				return calendar.Slot{}, ErrSlotUnavailable
			}
			return m, nil
		}
	}
	return calendar.Slot{}, ErrSlotNotOffered
}

// bookedLookup строит BookedFunc по активным откликам поста.
// Для волонтёрского слот-пака один и тот же слот могут занять несколько
// человек — конфликт регулируется общим лимитом мест, а не стартом слота.
func (s *ClaimService) bookedLookup(ctx context.Context, post *model.Post) calendar.BookedFunc {
	if post.Type == model.PostTypeVolunteerSlotPack {
		return calendar.NeverBooked
	}
	postID := post.ID.String()
	return func(start time.Time) bool {
		taken, err := s.claimRepo.HasActiveClaimAt(ctx, postID, start)
		if err != nil {
			s.log.Warn().Err(err).Str("post_id", postID).Msg("booked lookup failed")
			return false
		}
		return taken
	}
}

// validateClaimant — заявитель существует и активен.
func (s *ClaimService) validateClaimant(ctx context.Context, claimantID string) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, claimantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimantNotFound
		}
		return nil, fmt.Errorf("load claimant: %w", err)
	}
	if u.Status == model.UserStatusInactive || u.Status == model.UserStatusBlocked {
		return nil, ErrClaimantInactive
	}
	return u, nil
}

// Transition переводит отклик в новый статус по машине состояний.
func (s *ClaimService) Transition(ctx context.Context, claimID string, to model.ClaimStatus) (*model.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("load claim: %w", err)
	}

	if !claim.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, claim.Status, to)
	}

	var cancelledAt *time.Time
	if to == model.ClaimStatusCancelled {
		t := s.now().UTC()
		cancelledAt = &t
	}

	if err := s.claimRepo.UpdateStatus(ctx, claimID, to, cancelledAt); err != nil {
		return nil, fmt.Errorf("update claim status: %w", err)
	}

	prev := claim.Status
	claim.Status = to
	claim.CancelledAt = cancelledAt

	et := model.EventTypeClaimStatusChange
	if to == model.ClaimStatusCancelled {
		et = model.EventTypeClaimCancelled
	}
	s.audit(ctx, et, claim, fmt.Sprintf("%s -> %s", prev, to))

	return claim, nil
}

// Cancel — отзыв отклика самим заявителем.
func (s *ClaimService) Cancel(ctx context.Context, claimID string) (*model.Claim, error) {
	return s.Transition(ctx, claimID, model.ClaimStatusCancelled)
}

// ListClaims — отклики по посту.
func (s *ClaimService) ListClaims(ctx context.Context, postID string, limit, offset int) ([]model.Claim, int64, error) {
	return s.claimRepo.ListByPost(ctx, postID, limit, offset)
}

// ListClaimantClaims — отклики пользователя по всем постам.
func (s *ClaimService) ListClaimantClaims(ctx context.Context, claimantID string, limit, offset int) ([]model.Claim, int64, error) {
	return s.claimRepo.ListByClaimant(ctx, claimantID, limit, offset)
}

// SelectableDates — даты поста, доступные для выбора на данный момент.
func (s *ClaimService) SelectableDates(ctx context.Context, postID string) ([]time.Time, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("load post: %w", err)
	}
	cal, err := CalendarOf(post)
	if err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}
	return calendar.SelectableDates(cal, s.now()), nil
}

// SlotsForDate — материализованные слоты поста на дату, с флагами
// past/booked/available по состоянию на сейчас.
func (s *ClaimService) SlotsForDate(ctx context.Context, postID string, date time.Time) ([]calendar.Slot, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("load post: %w", err)
	}
	cal, err := CalendarOf(post)
	if err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}
	return calendar.Resolve(cal, date, s.now(), s.bookedLookup(ctx, post)), nil
}

func (s *ClaimService) audit(ctx context.Context, et model.EventType, claim *model.Claim, details string) {
	ev := &model.Event{
		EventType: et,
		UserID:    &claim.ClaimantID,
		PostID:    &claim.PostID,
		ClaimID:   &claim.ID,
		Details:   details,
	}
	if err := s.eventRepo.Create(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("claim_id", claim.ID.String()).Msg("audit event failed")
	}
}
