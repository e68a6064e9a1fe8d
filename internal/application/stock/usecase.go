package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/order"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/pkg/logger"
)

// StockUseCase ajustes manuales de inventario y alertas de stock bajo (solo gerentes).
type StockUseCase struct {
	tx    repository.TxRunner
	stock repository.StockRepository
	log   *logger.Logger
	now   func() time.Time
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(tx repository.TxRunner, stock repository.StockRepository, log *logger.Logger) *StockUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &StockUseCase{tx: tx, stock: stock, log: log.Component("stock"), now: func() time.Time { return time.Now().UTC() }}
}

// Adjust suma Delta a la fila tipo+color+talla (la crea si no existe).
// La cantidad resultante nunca puede ser negativa.
func (uc *StockUseCase) Adjust(ctx context.Context, actor entity.Actor, in dto.AdjustStockRequest) (*dto.StockItemResponse, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	key := entity.StockKey{
		ProductType: order.NormalizeName(in.ProductType),
		Color:       order.NormalizeName(in.Color),
		Size:        order.NormalizeSize(in.Size),
	}

	var item *entity.StockItem
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		row, err := r.Stock.GetByKeyForUpdate(ctx, key)
		if err != nil {
			return err
		}
		now := uc.now()
		if row == nil {
			row = &entity.StockItem{ProductType: key.ProductType, Color: key.Color, Size: key.Size, CreatedAt: now}
		}
		if row.Quantity+in.Delta < 0 {
			return fmt.Errorf("%w: disponible %d, ajuste %d", domain.ErrInsufficientStock, row.Quantity, in.Delta)
		}
		row.Quantity += in.Delta
		if in.ReorderLevel != nil {
			row.ReorderLevel = *in.ReorderLevel
		}
		row.UpdatedAt = now
		if err := r.Stock.Upsert(ctx, row); err != nil {
			return err
		}
		item = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("product_type", item.ProductType).
		Str("color", item.Color).
		Str("size", item.Size).
		Int("delta", in.Delta).
		Int("quantity", item.Quantity).
		Str("user_id", actor.UserID).
		Msg("stock ajustado")
	return ToStockResponse(item), nil
}

// ListLow filas en o bajo su punto de reorden.
func (uc *StockUseCase) ListLow(ctx context.Context, actor entity.Actor) ([]dto.StockItemResponse, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	rows, err := uc.stock.ListLow(ctx)
	if err != nil {
		return nil, fmt.Errorf("stock: listar stock bajo: %w", err)
	}
	out := make([]dto.StockItemResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, *ToStockResponse(r))
	}
	return out, nil
}

// ToStockResponse convierte la entidad a DTO.
func ToStockResponse(s *entity.StockItem) *dto.StockItemResponse {
	return &dto.StockItemResponse{
		ID:           s.ID,
		ProductType:  s.ProductType,
		Color:        s.Color,
		Size:         s.Size,
		Quantity:     s.Quantity,
		ReorderLevel: s.ReorderLevel,
		Low:          s.IsLow(),
		UpdatedAt:    s.UpdatedAt,
	}
}
