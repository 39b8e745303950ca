// Package admin serves the staff dashboard: headline counts across the
// catalog and circulation tables plus a short recent-activity feed.
package admin

import (
	"context"
	"fmt"
	"sort"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	pkgerrors "github.com/mehtakaran9/librarium-backend/pkg/errors"
)

const (
	defaultActivityLimit = 5
	maxActivityLimit     = 20
)

type service struct {
	repo Repository
}

// NewService builds a dashboard service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admin repository required")
	}
	return &service{repo: repo}, nil
}

// Stats gathers the dashboard headline numbers.
func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	stats := &StatsDTO{}
	var err error

	if stats.TotalTitles, err = s.repo.CountTitles(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count titles")
	}
	if stats.TotalCopies, err = s.repo.SumTotalCopies(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum copies")
	}
	if stats.TotalMembers, err = s.repo.CountMembers(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count members")
	}
	if stats.ActiveLoans, err = s.repo.CountActiveLoans(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active loans")
	}
	if stats.ActiveReservations, err = s.repo.CountActiveReservations(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active reservations")
	}
	if stats.FinesCollected, err = s.repo.SumFinePayments(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum fine payments")
	}
	return stats, nil
}

// RecentActivity merges the latest loans and reservations into one feed,
// newest first. A returned loan shows as a return stamped at its return
// date; everything else keeps its start date.
func (s *service) RecentActivity(ctx context.Context, limit int) ([]ActivityDTO, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	recentLoans, err := s.repo.RecentLoans(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recent loans")
	}
	recentHolds, err := s.repo.RecentReservations(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recent reservations")
	}

	feed := make([]ActivityDTO, 0, len(recentLoans)+len(recentHolds))
	for _, loan := range recentLoans {
		feed = append(feed, loanActivity(loan))
	}
	for _, hold := range recentHolds {
		entry := ActivityDTO{
			Type:     ActivityReservation,
			At:       hold.ReservedDate,
			MemberID: hold.MemberID,
			BookID:   hold.BookID,
		}
		if hold.Member != nil {
			entry.MemberName = hold.Member.Name
		}
		if hold.Book != nil {
			entry.BookTitle = hold.Book.Title
		}
		feed = append(feed, entry)
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].At.After(feed[j].At)
	})
	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed, nil
}

func loanActivity(loan models.Loan) ActivityDTO {
	entry := ActivityDTO{
		Type:     ActivityBorrow,
		At:       loan.IssueDate,
		MemberID: loan.MemberID,
		BookID:   loan.BookID,
	}
	if loan.ReturnDate != nil {
		entry.Type = ActivityReturn
		entry.At = *loan.ReturnDate
	}
	if loan.Member != nil {
		entry.MemberName = loan.Member.Name
	}
	if loan.Book != nil {
		entry.BookTitle = loan.Book.Title
	}
	return entry
}
