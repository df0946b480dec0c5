package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kyc_arena/internal/domain"
	"kyc_arena/internal/ledger"
	"kyc_arena/internal/metrics"
	"kyc_arena/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Pagination bounds for the admin submission list.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// NewSubmission is the user input for a submission.
type NewSubmission struct {
	Email    string
	Password string
	Exchange string
}

// SubmissionPatch holds the editable fields; nil or empty means unchanged.
type SubmissionPatch struct {
	Email    *string
	Password *string
	Exchange *string
}

// ListQuery filters the admin submission list.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// Page is one page of the admin submission list.
type Page struct {
	Data       []domain.SubmissionWithUser
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// StatusMessage is the notification text sent when a verdict changes.
func StatusMessage(sub *domain.Submission) string {
	label := strings.ToUpper(strings.Replace(string(sub.Status), "_", " ", 1))
	return fmt.Sprintf("Your submission for %s (%s) was marked as %s", sub.Exchange, sub.Email, label)
}

func canModify(actor *domain.User, sub *domain.Submission) bool {
	return actor.IsAdmin() || sub.UserID == actor.ID
}

func (s *Service) findExchange(ctx context.Context, name string) (*domain.Exchange, error) {
	var ex domain.Exchange
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&ex).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up exchange: %w", err)
	}
	return &ex, nil
}

// exchangePrice is the current price of an exchange, zero when it is gone.
func exchangePrice(tx *gorm.DB, name string) (decimal.Decimal, error) {
	var ex domain.Exchange
	err := tx.Where("name = ?", name).First(&ex).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to price exchange %q: %w", name, err)
	}
	return ex.PriceUsdt, nil
}

// CreateSubmission records a pending submission for an approved owner and
// credits it in the owner's stats.
func (s *Service) CreateSubmission(ctx context.Context, owner *domain.User, in NewSubmission) (*domain.Submission, error) {
	if !owner.IsApproved {
		return nil, forbidden("Your account has not been approved yet. Please wait for admin approval before adding accounts.")
	}
	if !owner.IsAdmin() {
		open, err := s.Portal.IsOpen(ctx)
		if err != nil {
			return nil, err
		}
		if !open {
			return nil, forbidden("The submission portal is currently closed")
		}
	}

	email := strings.TrimSpace(in.Email)
	exchange := strings.TrimSpace(in.Exchange)
	if email == "" || in.Password == "" || exchange == "" {
		return nil, validation("Email, password and exchange are required")
	}
	ex, err := s.findExchange(ctx, exchange)
	if err != nil {
		return nil, err
	}
	if ex == nil || !ex.IsActive {
		return nil, validation("Unknown or inactive exchange")
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	sub := domain.Submission{
		UserID:       owner.ID,
		Email:        email,
		PasswordHash: hash,
		Exchange:     ex.Name,
		Status:       domain.StatusPending,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		st, err := lockStats(tx, owner.ID)
		if err != nil {
			return err
		}
		ledger.RecordNewSubmission(st)
		return tx.Save(st).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	s.forgetStats(ctx, owner.ID)
	metrics.RecordSubmissionCreated()
	return &sub, nil
}

// GetSubmission loads a submission by id.
func (s *Service) GetSubmission(ctx context.Context, id uint) (*domain.Submission, error) {
	var sub domain.Submission
	err := s.db.WithContext(ctx).First(&sub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Submission not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &sub, nil
}

// UpdateSubmissionStatus applies a verdict. The status write, the stats
// adjustment and the owner notification commit together.
func (s *Service) UpdateSubmissionStatus(ctx context.Context, id uint, raw string) (*domain.Submission, error) {
	status, ok := domain.ParseStatus(raw)
	if !ok {
		return nil, validation("Invalid status")
	}

	var sub domain.Submission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sub, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Submission not found")
		}
		if err != nil {
			return err
		}

		previous := sub.Status
		sub.Status = status
		sub.UpdatedAt = time.Now()
		if err := tx.Model(&sub).Select("status", "updated_at").Updates(&sub).Error; err != nil {
			return err
		}

		if previous != status {
			price, err := exchangePrice(tx, sub.Exchange)
			if err != nil {
				return err
			}
			st, err := lockStats(tx, sub.UserID)
			if err != nil {
				return err
			}
			ledger.ApplyTransition(st, previous, status, price)
			if err := tx.Save(st).Error; err != nil {
				return err
			}
		}

		return tx.Create(&domain.Notification{UserID: sub.UserID, Message: StatusMessage(&sub)}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update submission status: %w", err)
	}
	s.forgetStats(ctx, sub.UserID)
	metrics.RecordVerdict(string(status))
	return &sub, nil
}

// UpdateSubmissionFields edits the credential fields of a submission.
func (s *Service) UpdateSubmissionFields(ctx context.Context, actor *domain.User, id uint, patch SubmissionPatch) (*domain.Submission, error) {
	present := func(p *string) bool { return p != nil && strings.TrimSpace(*p) != "" }
	if !present(patch.Email) && !present(patch.Password) && !present(patch.Exchange) {
		return nil, validation("At least one field (email, passwordHash, exchange) is required")
	}

	sub, err := s.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, sub) {
		return nil, forbidden("Not authorized to edit this submission")
	}

	updates := map[string]any{}
	if present(patch.Email) {
		sub.Email = strings.TrimSpace(*patch.Email)
		updates["email"] = sub.Email
	}
	if present(patch.Exchange) {
		ex, err := s.findExchange(ctx, strings.TrimSpace(*patch.Exchange))
		if err != nil {
			return nil, err
		}
		if ex == nil || !ex.IsActive {
			return nil, validation("Unknown or inactive exchange")
		}
		sub.Exchange = ex.Name
		updates["exchange"] = sub.Exchange
	}
	if present(patch.Password) {
		hash, err := utils.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		sub.PasswordHash = hash
		updates["password_hash"] = hash
	}
	sub.UpdatedAt = time.Now()
	updates["updated_at"] = sub.UpdatedAt

	if err := s.db.WithContext(ctx).Model(&domain.Submission{}).Where("id = ?", sub.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}
	return sub, nil
}

// DeleteSubmission removes one submission. Stats are left untouched so
// earnings already credited survive.
func (s *Service) DeleteSubmission(ctx context.Context, actor *domain.User, id uint) error {
	sub, err := s.GetSubmission(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(actor, sub) {
		return forbidden("Not authorized to delete this submission")
	}
	if err := s.db.WithContext(ctx).Delete(&domain.Submission{}, sub.ID).Error; err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	metrics.RecordSubmissionsDeleted(1)
	return nil
}

// DeleteNonPending removes reviewed submissions: the actor's own, or every
// user's when the actor is an admin. Pending submissions are kept.
func (s *Service) DeleteNonPending(ctx context.Context, actor *domain.User) (int64, error) {
	q := s.db.WithContext(ctx).Where("status IN ?", domain.TerminalStatuses)
	if !actor.IsAdmin() {
		q = q.Where("user_id = ?", actor.ID)
	}
	res := q.Delete(&domain.Submission{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete reviewed submissions: %w", res.Error)
	}
	metrics.RecordSubmissionsDeleted(res.RowsAffected)
	return res.RowsAffected, nil
}

// ListSubmissionsForOwner returns all of a user's submissions, newest first.
func (s *Service) ListSubmissionsForOwner(ctx context.Context, ownerID uint) ([]domain.Submission, error) {
	var subs []domain.Submission
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at desc, id desc").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

// withUsers selects submissions joined with their owner's username.
func (s *Service) withUsers(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("submissions").
		Joins("LEFT JOIN users ON users.id = submissions.user_id")
}

const withUsersColumns = "submissions.*, COALESCE(users.username, 'Unknown') AS username"

// ListSubmissions is the admin view: searchable, filterable and paginated.
func (s *Service) ListSubmissions(ctx context.Context, q ListQuery) (*Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	var status domain.Status
	if q.Status != "" && q.Status != "all" {
		st, ok := domain.ParseStatus(q.Status)
		if !ok {
			return nil, validation("Invalid status filter")
		}
		status = st
	}

	filtered := func() *gorm.DB {
		tx := s.withUsers(ctx)
		if q.Search != "" {
			like := "%" + q.Search + "%"
			tx = tx.Where("(submissions.email LIKE ? OR users.username LIKE ? OR submissions.exchange LIKE ?)", like, like, like)
		}
		if status != "" {
			tx = tx.Where("submissions.status = ?", status)
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	page := &Page{
		Data:       []domain.SubmissionWithUser{},
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages,
	}
	// Past the last page; also keeps the offset from overflowing
	if q.Page > totalPages {
		return page, nil
	}

	rows := []domain.SubmissionWithUser{}
	err := filtered().
		Select(withUsersColumns).
		Order("submissions.created_at desc, submissions.id desc").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	page.Data = rows
	return page, nil
}

// ExportSubmissions returns every submission with its owner's username.
func (s *Service) ExportSubmissions(ctx context.Context) ([]domain.SubmissionWithUser, error) {
	rows := []domain.SubmissionWithUser{}
	err := s.withUsers(ctx).
		Select(withUsersColumns).
		Order("submissions.created_at desc, submissions.id desc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to export submissions: %w", err)
	}
	return rows, nil
}
