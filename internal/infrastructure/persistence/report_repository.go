package persistence

import (
	"context"
	"time"

	"github.com/estudio/backend/internal/domain/cashbox"
	"github.com/estudio/backend/internal/domain/report"
	"github.com/estudio/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository implements report.Repository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// DailyCashEvolution aggregates movements per drawer date in [from, to]
func (r *GormReportRepository) DailyCashEvolution(ctx context.Context, from, to time.Time) ([]report.DailyCashPoint, error) {
	var rows []struct {
		Date    time.Time
		Inflow  decimal.Decimal
		Outflow decimal.Decimal
	}
	if err := conn(ctx, r.db).WithContext(ctx).Model(&models.CashMovementModel{}).
		Select("cash_drawers.date as date, "+
			"COALESCE(SUM(CASE WHEN cash_movements.kind = ? THEN cash_movements.amount ELSE 0 END), 0) as inflow, "+
			"COALESCE(SUM(CASE WHEN cash_movements.kind = ? THEN cash_movements.amount ELSE 0 END), 0) as outflow",
			cashbox.MovementInflow, cashbox.MovementOutflow).
		Joins("JOIN cash_drawers ON cash_drawers.id = cash_movements.drawer_id").
		Where("cash_drawers.date >= ? AND cash_drawers.date <= ?", cashbox.NormalizeDate(from), cashbox.NormalizeDate(to)).
		Group("cash_drawers.date").
		Order("cash_drawers.date ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	points := make([]report.DailyCashPoint, len(rows))
	for i, row := range rows {
		points[i] = report.DailyCashPoint{
			Date:    row.Date,
			Inflow:  row.Inflow,
			Outflow: row.Outflow,
			Net:     row.Inflow.Sub(row.Outflow),
		}
	}
	return points, nil
}

// TopExpenseConcepts ranks expense descriptions by total spend in [from, to]
func (r *GormReportRepository) TopExpenseConcepts(ctx context.Context, from, to time.Time, limit int) ([]report.ConceptSpend, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []struct {
		Description string
		Total       decimal.Decimal
		Count       int64
	}
	if err := conn(ctx, r.db).WithContext(ctx).Model(&models.ExpenseModel{}).
		Select("description, COALESCE(SUM(amount), 0) as total, COUNT(*) as count").
		Where("date >= ? AND date <= ?", from, to).
		Group("description").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	spends := make([]report.ConceptSpend, len(rows))
	for i, row := range rows {
		spends[i] = report.ConceptSpend{
			Description: row.Description,
			Total:       row.Total,
			Count:       row.Count,
		}
	}
	return spends, nil
}
