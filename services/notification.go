package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"projectdesk/apperror"
	"projectdesk/model"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 50
)

// ForUser selects the notifications addressed to userID under every spelling
// the notifiable_type column has held. All reads and bulk updates go through it.
func ForUser(userID uint) func(*gorm.DB) *gorm.DB {
	return MorphTo("notifiable", model.KindUser, userID)
}

type NotificationPage struct {
	Data        []model.Notification `json:"data"`
	CurrentPage int                  `json:"current_page"`
	LastPage    int                  `json:"last_page"`
	PerPage     int                  `json:"per_page"`
	Total       int64                `json:"total"`
	HasMore     bool                 `json:"has_more"`
}

// EmptyPage is what the list endpoint returns when it cannot read the table.
func EmptyPage(page, perPage int) NotificationPage {
	page, perPage = ClampPage(page, perPage)
	if page > 2 {
		page = 2
	}
	return NotificationPage{Data: []model.Notification{}, CurrentPage: page, LastPage: 1, PerPage: perPage}
}

func ClampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

type NotificationService struct {
	db      *gorm.DB
	pushers []Pusher
}

func NewNotificationService(db *gorm.DB, pushers ...Pusher) *NotificationService {
	return &NotificationService{db: db, pushers: pushers}
}

// Create writes a notification for the entity kind/id using the canonical type
// tag. tx may be a transaction; pushes are left to Dispatch after commit.
func (s *NotificationService) Create(ctx context.Context, tx *gorm.DB, kind model.Kind, id uint, message, typ string, data map[string]interface{}) (*model.Notification, error) {
	if tx == nil {
		tx = s.db
	}
	ok, err := MorphExists(ctx, tx, kind.Tag(), id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("notification target %s#%d does not exist", kind, id)
	}
	n := &model.Notification{
		Message:        message,
		Type:           typ,
		NotifiableType: kind.Tag(),
		NotifiableID:   id,
		Data:           data,
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

// Notify is Create for a user recipient.
func (s *NotificationService) Notify(ctx context.Context, tx *gorm.DB, userID uint, message, typ string, data map[string]interface{}) (*model.Notification, error) {
	return s.Create(ctx, tx, model.KindUser, userID, message, typ, data)
}

// Dispatch fans the notifications out to every pusher in the background.
// Failures are logged only.
func (s *NotificationService) Dispatch(ctx context.Context, ns ...*model.Notification) {
	if len(s.pushers) == 0 || len(ns) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		g, ctx := errgroup.WithContext(ctx)
		for _, p := range s.pushers {
			for _, n := range ns {
				p, n := p, n
				g.Go(func() error {
					if err := p.Push(ctx, n); err != nil {
						log.Printf("push %s notification %d: %v", p.Name(), n.ID, err)
					}
					return nil
				})
			}
		}
		_ = g.Wait()
	}()
}

// Paginate returns one page of userID's notifications, newest first. A page
// past the end is capped at lastPage+1 and comes back empty.
func (s *NotificationService) Paginate(ctx context.Context, userID uint, page, perPage int) (NotificationPage, error) {
	page, perPage = ClampPage(page, perPage)
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&model.Notification{}).Scopes(ForUser(userID)).Count(&total).Error; err != nil {
		return NotificationPage{}, err
	}
	lastPage := lastPageFor(total, perPage)
	if page > lastPage+1 {
		page = lastPage + 1
	}

	items := []model.Notification{}
	err := db.Scopes(ForUser(userID)).
		Order("created_at DESC").Order("id DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&items).Error
	if err != nil {
		return NotificationPage{}, err
	}

	return NotificationPage{
		Data:        items,
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
		HasMore:     page < lastPage,
	}, nil
}

func lastPageFor(total int64, perPage int) int {
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	return last
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Scopes(ForUser(userID)).
		Where("read_at IS NULL").
		Count(&n).Error
	return n, err
}

// MarkAsRead stamps read_at once. Calling it on an already read notification
// changes nothing and still succeeds.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uint) (*model.Notification, error) {
	db := s.db.WithContext(ctx)
	var n model.Notification
	if err := db.Scopes(ForUser(userID)).Where("id = ?", id).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Missing("Notification")
		}
		return nil, err
	}
	if n.ReadAt != nil {
		return &n, nil
	}

	now := time.Now()
	res := db.Model(&model.Notification{}).
		Where("id = ? AND read_at IS NULL", n.ID).
		Update("read_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if err := db.First(&n, n.ID).Error; err != nil {
		return nil, err
	}
	if res.RowsAffected > 0 {
		s.markRead(ctx, userID, []uint{n.ID}, *n.ReadAt)
	}
	return &n, nil
}

// MarkAllAsRead stamps every unread notification of userID and returns how
// many changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	var ids []uint
	var affected int64
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Notification{}).
			Scopes(ForUser(userID)).
			Where("read_at IS NULL").
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		res := tx.Model(&model.Notification{}).
			Where("id IN ? AND read_at IS NULL", ids).
			Update("read_at", now)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.markRead(ctx, userID, ids, now)
	}
	return affected, nil
}

func (s *NotificationService) markRead(ctx context.Context, userID uint, ids []uint, at time.Time) {
	for _, p := range s.pushers {
		if m, ok := p.(ReadMarker); ok {
			if err := m.MarkRead(ctx, userID, ids, at); err != nil {
				log.Printf("mirror read state for user %d: %v", userID, err)
			}
		}
	}
}
