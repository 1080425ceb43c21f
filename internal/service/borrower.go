package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lendledger/internal/clients"
	"lendledger/internal/domain"
)

const delinquencyTTL = 5 * time.Minute

func delinquencyKey(borrowerID int64, asOf time.Time) string {
	return fmt.Sprintf("delinquency:%d:%s", borrowerID, domain.DateOnly(asOf).Format("2006-01-02"))
}

// invalidateDelinquency drops the cached classification for today. Yesterday's
// keys are already dead: the date is part of the key.
func invalidateDelinquency(ctx context.Context, cache *clients.RedisClient, log *zap.Logger, borrowerID int64, asOf time.Time) {
	if cache == nil {
		return
	}
	if err := cache.Del(ctx, delinquencyKey(borrowerID, asOf)); err != nil {
		log.Warn("failed to invalidate delinquency cache",
			zap.Int64("borrower_id", borrowerID), zap.Error(err))
	}
}

type BorrowerStore interface {
	Create(ctx context.Context, b *domain.Borrower) error
	GetByID(ctx context.Context, id int64) (*domain.Borrower, error)
	List(ctx context.Context) ([]domain.Borrower, error)
	Update(ctx context.Context, b *domain.Borrower) error
	Delete(ctx context.Context, id int64) error
}

type BorrowerPaymentStore interface {
	ListByBorrower(ctx context.Context, borrowerID int64) ([]domain.Payment, error)
}

type BorrowerService struct {
	borrowers BorrowerStore
	payments  BorrowerPaymentStore
	cache     *clients.RedisClient
	log       *zap.Logger
	now       func() time.Time
}

func NewBorrowerService(borrowers BorrowerStore, payments BorrowerPaymentStore, cache *clients.RedisClient, log *zap.Logger) *BorrowerService {
	return &BorrowerService{
		borrowers: borrowers,
		payments:  payments,
		cache:     cache,
		log:       log,
		now:       time.Now,
	}
}

func (s *BorrowerService) Create(ctx context.Context, b *domain.Borrower) error {
	if b.Name == "" {
		return &domain.ValidationError{Field: "name", Message: "name is required"}
	}
	if err := s.borrowers.Create(ctx, b); err != nil {
		return err
	}
	s.log.Info("borrower created", zap.Int64("borrower_id", b.ID), zap.String("name", b.Name))
	return nil
}

func (s *BorrowerService) Get(ctx context.Context, id int64) (*domain.Borrower, error) {
	return s.borrowers.GetByID(ctx, id)
}

func (s *BorrowerService) List(ctx context.Context) ([]domain.Borrower, error) {
	return s.borrowers.List(ctx)
}

// BorrowerUpdate carries the mutable profile fields; nil means "leave as is".
type BorrowerUpdate struct {
	Name             *string
	Phone            *string
	Address          *string
	DocumentType     *string
	DocumentNumber   *string
	GuarantorName    *string
	GuarantorPhone   *string
	GuarantorAddress *string
	Notes            *string
	PhotoRef         *string
}

func (s *BorrowerService) Update(ctx context.Context, id int64, upd BorrowerUpdate) (*domain.Borrower, error) {
	b, err := s.borrowers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The document number can be set once and is immutable afterwards.
	if upd.DocumentNumber != nil && b.DocumentNumber != "" && *upd.DocumentNumber != b.DocumentNumber {
		return nil, &domain.ValidationError{Field: "document_number", Message: "document number cannot be changed once set"}
	}

	if upd.Name != nil {
		if *upd.Name == "" {
			return nil, &domain.ValidationError{Field: "name", Message: "name cannot be empty"}
		}
		b.Name = *upd.Name
	}
	if upd.Phone != nil {
		b.Phone = *upd.Phone
	}
	if upd.Address != nil {
		b.Address = *upd.Address
	}
	if upd.DocumentType != nil {
		b.DocumentType = *upd.DocumentType
	}
	if upd.DocumentNumber != nil {
		b.DocumentNumber = *upd.DocumentNumber
	}
	if upd.GuarantorName != nil {
		b.GuarantorName = *upd.GuarantorName
	}
	if upd.GuarantorPhone != nil {
		b.GuarantorPhone = *upd.GuarantorPhone
	}
	if upd.GuarantorAddress != nil {
		b.GuarantorAddress = *upd.GuarantorAddress
	}
	if upd.Notes != nil {
		b.Notes = *upd.Notes
	}
	if upd.PhotoRef != nil {
		b.PhotoRef = *upd.PhotoRef
	}

	if err := s.borrowers.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes the borrower and cascades to all their loans and payments.
func (s *BorrowerService) Delete(ctx context.Context, id int64) error {
	if err := s.borrowers.Delete(ctx, id); err != nil {
		return err
	}
	invalidateDelinquency(ctx, s.cache, s.log, id, s.now())
	s.log.Info("borrower deleted with loans and payments", zap.Int64("borrower_id", id))
	return nil
}

// Classify reports whether the borrower is currently a defaulter under the
// consecutive-missed walk. Results are cached per borrower per day and
// invalidated whenever a payment of theirs changes.
func (s *BorrowerService) Classify(ctx context.Context, borrowerID int64) (domain.Delinquency, error) {
	asOf := s.now()
	key := delinquencyKey(borrowerID, asOf)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var d domain.Delinquency
			if err := json.Unmarshal([]byte(data), &d); err == nil {
				return d, nil
			}
		}
	}

	if _, err := s.borrowers.GetByID(ctx, borrowerID); err != nil {
		return domain.Delinquency{}, err
	}

	payments, err := s.payments.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return domain.Delinquency{}, err
	}

	d := domain.ClassifyDelinquency(payments, asOf)

	if s.cache != nil {
		if data, err := json.Marshal(d); err == nil {
			if err := s.cache.Set(ctx, key, string(data), delinquencyTTL); err != nil {
				s.log.Warn("failed to cache delinquency classification", zap.Error(err))
			}
		}
	}

	return d, nil
}
