// file: internals/features/finance/fees/service/fee_service.go
package service

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/features/finance/fees/repository"
	studentModel "schoolku_backend/internals/features/school/students/model"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	helper "schoolku_backend/internals/helpers"
	"schoolku_backend/internals/services/notification"
)

const (
	defaultMaxReportStudents = 5000
	defaultCollectLockTTL    = 15 * time.Second
)

// Service engine tagihan & penagihan fee. Saldo tagihan tidak pernah disimpan;
// selalu dihitung ulang dari riwayat StudentFee.
type Service struct {
	repo     repository.Repository
	students studentRepo.Directory
	notifier notification.Notifier
	locker   *redislock.Client

	now               func() time.Time
	maxReportStudents int
	lockTTL           time.Duration
	log               *logrus.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocker: nil = tanpa redis, serialisasi cukup dari advisory lock DB.
func WithLocker(l *redislock.Client) Option {
	return func(s *Service) { s.locker = l }
}

func WithMaxReportStudents(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxReportStudents = n
		}
	}
}

func WithLockTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lockTTL = d
		}
	}
}

func NewService(repo repository.Repository, students studentRepo.Directory, notifier notification.Notifier, opts ...Option) *Service {
	s := &Service{
		repo:              repo,
		students:          students,
		notifier:          notifier,
		now:               time.Now,
		maxReportStudents: defaultMaxReportStudents,
		lockTTL:           defaultCollectLockTTL,
		log:               configs.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) loadStudent(ctx context.Context, schoolID, studentID uuid.UUID) (*studentModel.SchoolStudentModel, error) {
	st, err := s.students.GetStudent(ctx, schoolID, studentID)
	if err != nil {
		if studentRepo.IsNotFound(err) {
			return nil, helper.NotFound("siswa tidak ditemukan")
		}
		return nil, errors.Wrap(err, "get student")
	}
	return st, nil
}
