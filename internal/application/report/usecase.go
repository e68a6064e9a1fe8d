// Package report contiene el resumen de ventas del gerente: totales, pedidos por estado,
// rendimiento y comisión por agente, ventas por tipo de producto y alertas de stock.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
)

// DateLayout formato de fecha de los parámetros from/to.
const DateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// ReportUseCase genera el resumen del período.
type ReportUseCase struct {
	reportRepo repository.ReportRepository
	now        func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(reportRepo repository.ReportRepository) *ReportUseCase {
	return &ReportUseCase{reportRepo: reportRepo, now: func() time.Time { return time.Now().UTC() }}
}

// Period resuelve from/to (YYYY-MM-DD, ambos inclusive). Sin from se usa el primer día
// del mes en curso; sin to, hoy. Devuelve el rango semiabierto [start, end).
func (uc *ReportUseCase) Period(fromStr, toStr string) (start, end time.Time, err error) {
	now := uc.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var msgs []string
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if s := strings.TrimSpace(fromStr); s != "" {
		if start, err = time.ParseInLocation(DateLayout, s, time.UTC); err != nil {
			msgs = append(msgs, "from: formato esperado YYYY-MM-DD")
		}
	}
	last := today
	if s := strings.TrimSpace(toStr); s != "" {
		if last, err = time.ParseInLocation(DateLayout, s, time.UTC); err != nil {
			msgs = append(msgs, "to: formato esperado YYYY-MM-DD")
		}
	}
	if len(msgs) > 0 {
		return time.Time{}, time.Time{}, domain.NewValidationError(msgs...)
	}
	if start.After(last) {
		return time.Time{}, time.Time{}, domain.NewValidationError("from: no puede ser posterior a to")
	}
	return start, last.AddDate(0, 0, 1), nil
}

// Summary ejecuta las consultas del resumen en paralelo.
func (uc *ReportUseCase) Summary(ctx context.Context, actor entity.Actor, fromStr, toStr string) (*dto.ReportSummaryResponse, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	from, to, err := uc.Period(fromStr, toStr)
	if err != nil {
		return nil, err
	}

	var (
		totals   repository.SalesTotals
		statuses map[string]int
		agents   []repository.AgentPerformanceResult
		products []repository.ProductTypeSalesResult
		lowStock int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = uc.reportRepo.SalesTotals(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		statuses, err = uc.reportRepo.StatusCounts(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		agents, err = uc.reportRepo.AgentPerformance(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		products, err = uc.reportRepo.ProductTypeSales(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		lowStock, err = uc.reportRepo.LowStockCount(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("report: resumen: %w", err)
	}

	resp := &dto.ReportSummaryResponse{
		From: from.Format(DateLayout),
		To:   to.AddDate(0, 0, -1).Format(DateLayout),
		Totals: dto.SalesTotalsDTO{
			Orders:   totals.Orders,
			Quantity: totals.Quantity,
			Amount:   totals.Amount.Round(2),
		},
		StatusCounts:  statuses,
		Agents:        make([]dto.AgentPerformanceDTO, 0, len(agents)),
		ProductTypes:  make([]dto.ProductTypeSalesDTO, 0, len(products)),
		LowStockCount: lowStock,
	}
	for _, a := range agents {
		resp.Agents = append(resp.Agents, dto.AgentPerformanceDTO{
			AgentID:        a.AgentID,
			AgentName:      a.AgentName,
			CommissionRate: a.CommissionRate,
			Orders:         a.Orders,
			Quantity:       a.Quantity,
			Amount:         a.Amount.Round(2),
			Commission:     Commission(a.Amount, a.CommissionRate),
		})
	}
	for _, p := range products {
		resp.ProductTypes = append(resp.ProductTypes, dto.ProductTypeSalesDTO{
			ProductType: p.ProductType,
			Quantity:    p.Quantity,
			Amount:      p.Amount.Round(2),
		})
	}
	return resp, nil
}

// Commission monto × tasa / 100, redondeado a 2 decimales.
func Commission(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred).Round(2)
}
