package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/trade"
	"github.com/jewelry/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id ASC")
	})
}

// Create inserts the order with its items and assigns the ID
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	model.ID = 0
	for i := range model.Items {
		model.Items[i].ID = 0
		model.Items[i].OrderID = 0
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.ID = model.ID
	for i := range order.Items {
		order.Items[i].ID = model.Items[i].ID
		order.Items[i].OrderID = model.ID
	}
	return nil
}

// FindByID loads an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*trade.Order, error) {
	var model models.OrderModel
	if err := preloadItems(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of orders (with items) and the total count
func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]*trade.Order, int64, error) {
	var orderModels []*models.OrderModel
	var total int64

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := preloadItems(query).
		Order("created_at DESC").Order("id DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}

	return toDomainOrders(orderModels), total, nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter trade.OrderFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		if id, err := strconv.ParseInt(strings.TrimPrefix(search, "#"), 10, 64); err == nil {
			query = query.Where("id = ? OR LOWER(shipping_full_name) LIKE ? OR LOWER(shipping_email) LIKE ?", id, like, like)
		} else {
			query = query.Where("LOWER(shipping_full_name) LIKE ? OR LOWER(shipping_email) LIKE ?", like, like)
		}
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	return query
}

// UpdateStatus writes the new status only while the row still holds from,
// so of two concurrent transitions out of the same status one wins.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, order *trade.Order, from trade.OrderStatus) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.OrderModel{}).
		Where("id = ? AND status = ?", order.ID, from).
		Updates(map[string]interface{}{
			"status":     order.Status,
			"updated_at": order.UpdatedAt,
		})
	if result.Error != nil || result.RowsAffected > 0 {
		return result.Error
	}
	var count int64
	if err := db.Model(&models.OrderModel{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return trade.ErrStatusChanged
}

// Delete removes an order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.OrderModel{}, "id = ?", id)
		return affected(result)
	})
}

// Resequence renumbers the remaining orders to 1..N by creation order.
// Every moved order first goes to a staging ID above the current maximum and
// then to its final ID, so no update collides with an existing key. Items
// follow each move. On PostgreSQL the table is locked for the duration and
// the id sequence is reset to N.
func (r *GormOrderRepository) Resequence(ctx context.Context) (trade.ResequencePlan, error) {
	var plan trade.ResequencePlan
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postgres := IsPostgres(tx)
		if postgres {
			if err := tx.Exec("LOCK TABLE orders IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
				return fmt.Errorf("failed to lock orders: %w", err)
			}
			// Row triggers stay quiet; one resequence notification is sent below
			if err := tx.Exec("SET LOCAL jewelry.suppress_change_notify = 'on'").Error; err != nil {
				return fmt.Errorf("failed to suppress change notifications: %w", err)
			}
		}

		var rows []struct {
			ID        int64
			CreatedAt time.Time
		}
		if err := tx.Model(&models.OrderModel{}).
			Select("id, created_at").
			Order("created_at ASC").Order("id ASC").
			Scan(&rows).Error; err != nil {
			return fmt.Errorf("failed to load order ids: %w", err)
		}

		refs := make([]trade.OrderRef, len(rows))
		for i, row := range rows {
			refs[i] = trade.OrderRef{ID: row.ID, CreatedAt: row.CreatedAt}
		}
		plan = trade.PlanResequence(refs)

		for _, move := range plan.Stage {
			if err := moveOrderID(tx, move); err != nil {
				return err
			}
		}
		for _, move := range plan.Final {
			if err := moveOrderID(tx, move); err != nil {
				return err
			}
		}

		if postgres {
			if err := resetOrderSequence(tx, plan.Count); err != nil {
				return err
			}
			if !plan.IsNoop() {
				return notifyResequence(tx)
			}
		}
		return nil
	})
	if err != nil {
		return trade.ResequencePlan{}, err
	}
	return plan, nil
}

func moveOrderID(tx *gorm.DB, move trade.IDMove) error {
	if err := tx.Exec("UPDATE orders SET id = ? WHERE id = ?", move.To, move.From).Error; err != nil {
		return fmt.Errorf("failed to move order %d to %d: %w", move.From, move.To, err)
	}
	if err := tx.Exec("UPDATE order_items SET order_id = ? WHERE order_id = ?", move.To, move.From).Error; err != nil {
		return fmt.Errorf("failed to move items of order %d to %d: %w", move.From, move.To, err)
	}
	return nil
}

// resetOrderSequence makes the next generated id count+1
func resetOrderSequence(tx *gorm.DB, count int) error {
	value, called := int64(count), true
	if count == 0 {
		value, called = 1, false
	}
	if err := tx.Exec("SELECT setval(pg_get_serial_sequence('orders', 'id'), ?, ?)", value, called).Error; err != nil {
		return fmt.Errorf("failed to reset order sequence: %w", err)
	}
	return nil
}

// changeChannel must match the channel used by notify_table_change() in the migrations
const changeChannel = "table_changes"

func notifyResequence(tx *gorm.DB) error {
	err := tx.Exec(
		"SELECT pg_notify(?, json_build_object('table', 'orders', 'action', 'resequence', 'id', '', 'at', now())::text)",
		changeChannel,
	).Error
	if err != nil {
		return fmt.Errorf("failed to notify resequence: %w", err)
	}
	return nil
}

// CountByUser returns the number of orders a customer placed
func (r *GormOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of orders per status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) ([]trade.StatusCount, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make([]trade.StatusCount, len(rows))
	for i, row := range rows {
		counts[i] = trade.StatusCount{Status: trade.OrderStatus(row.Status), Count: row.Count}
	}
	return counts, nil
}

// Revenue sums the totals of orders that were not cancelled
func (r *GormOrderRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select("COALESCE(SUM(total), 0)").
		Where("status <> ?", trade.OrderStatusCancelled).
		Row().Scan(&revenue); err != nil {
		return decimal.Zero, err
	}
	return revenue.Round(2), nil
}

// Recent returns the latest orders
func (r *GormOrderRepository) Recent(ctx context.Context, limit int) ([]*trade.Order, error) {
	if limit <= 0 {
		limit = 5
	}
	var orderModels []*models.OrderModel
	if err := preloadItems(r.db.WithContext(ctx)).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

func toDomainOrders(orderModels []*models.OrderModel) []*trade.Order {
	orders := make([]*trade.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = model.ToDomain()
	}
	return orders
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
