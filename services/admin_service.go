package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/repositories"
)

const (
	statsDailyWindowDays     = 30
	statsMonthlyWindowMonths = 12
)

type AdminService interface {
	Stats(ctx context.Context) (*models.AdminStats, error)
	Enrollments(ctx context.Context) (*models.EnrollmentReport, error)
}

type adminService struct {
	statsRepo       repositories.StatsRepository
	reservationRepo repositories.ReservationRepository
	enrollmentRepo  repositories.EnrollmentRepository
	clock           Clock
	logger          *slog.Logger
}

func NewAdminService(
	statsRepo repositories.StatsRepository,
	reservationRepo repositories.ReservationRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	clock Clock,
	logger *slog.Logger,
) AdminService {
	return &adminService{
		statsRepo:       statsRepo,
		reservationRepo: reservationRepo,
		enrollmentRepo:  enrollmentRepo,
		clock:           clock,
		logger:          orDefaultLogger(logger),
	}
}

// Stats gathers the dashboard figures. Only confirmed reservations count as
// income; the aggregate queries run concurrently.
func (s *adminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	today := s.clock.Today()
	dailySince := today.AddDays(-statsDailyWindowDays)
	monthlySince := today.AddMonths(-statsMonthlyWindowMonths)

	stats := &models.AdminStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, revenue, err := s.statsRepo.ConfirmedTotals(gctx)
		if err != nil {
			return fmt.Errorf("confirmed totals: %w", err)
		}
		stats.ConfirmedCount, stats.ConfirmedRevenue = count, revenue
		return nil
	})
	g.Go(func() error {
		perDay, err := s.statsRepo.RevenuePerDay(gctx, dailySince)
		if err != nil {
			return fmt.Errorf("revenue per day: %w", err)
		}
		stats.PerDay = perDay
		return nil
	})
	g.Go(func() error {
		perFacility, err := s.statsRepo.RevenuePerFacility(gctx)
		if err != nil {
			return fmt.Errorf("revenue per facility: %w", err)
		}
		stats.PerFacility = perFacility
		return nil
	})
	g.Go(func() error {
		perMonth, err := s.statsRepo.RevenuePerMonth(gctx, monthlySince)
		if err != nil {
			return fmt.Errorf("revenue per month: %w", err)
		}
		stats.PerMonth = perMonth
		return nil
	})
	g.Go(func() error {
		reservations, err := s.reservationRepo.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("all reservations: %w", err)
		}
		stats.Reservations = reservations
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build admin stats: %w", err)
	}
	stats.Reservations = completeElapsed(ctx, s.reservationRepo, s.clock, s.logger, stats.Reservations)
	return stats, nil
}

func (s *adminService) Enrollments(ctx context.Context) (*models.EnrollmentReport, error) {
	report := &models.EnrollmentReport{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		enrollments, err := s.enrollmentRepo.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("all enrollments: %w", err)
		}
		report.Enrollments = enrollments
		return nil
	})
	g.Go(func() error {
		totals, err := s.enrollmentRepo.Totals(gctx)
		if err != nil {
			return fmt.Errorf("enrollment totals: %w", err)
		}
		report.Totals = totals
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build enrollment report: %w", err)
	}
	return report, nil
}
