package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/eshop-api/internal/domain"
	"github.com/jhoicas/eshop-api/internal/domain/entity"
	"github.com/jhoicas/eshop-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo implementación del puerto CartRepository sobre PostgreSQL (usable con pool o tx).
type CartRepo struct {
	q Querier
}

// NewCartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

// Create inserta el carrito; si la sesión ya tiene uno no hace nada (ON CONFLICT).
func (r *CartRepo) Create(ctx context.Context, c *entity.Cart) error {
	query := `
		INSERT INTO carts (session_key, created_at, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_key) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, c.SessionKey, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("insert cart: %w", err)
	}
	return nil
}

func (r *CartRepo) GetBySessionKey(ctx context.Context, sessionKey string) (*entity.Cart, error) {
	return r.get(ctx, sessionKey, false)
}

// GetForUpdate bloquea la fila del carrito (SELECT FOR UPDATE) hasta el fin de la transacción.
// Solo tiene efecto cuando el repo está atado a una tx.
func (r *CartRepo) GetForUpdate(ctx context.Context, sessionKey string) (*entity.Cart, error) {
	return r.get(ctx, sessionKey, true)
}

func (r *CartRepo) get(ctx context.Context, sessionKey string, lock bool) (*entity.Cart, error) {
	query := `SELECT id, session_key, created_at, updated_at FROM carts WHERE session_key = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var c entity.Cart
	err := r.q.QueryRow(ctx, query, sessionKey).Scan(&c.ID, &c.SessionKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	items, err := r.items(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return &c, nil
}

func (r *CartRepo) items(ctx context.Context, cartID int64) ([]entity.CartItem, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.added_at, ci.updated_at,
		       p.id, p.category_id, c.name, c.slug, p.name, p.description, p.price, p.stock,
		       p.is_available, p.featured, p.image, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		JOIN categories c ON c.id = p.category_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at, ci.id`
	rows, err := r.q.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := []entity.CartItem{}
	for rows.Next() {
		var it entity.CartItem
		var p entity.Product
		if err := rows.Scan(
			&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.AddedAt, &it.UpdatedAt,
			&p.ID, &p.CategoryID, &p.CategoryName, &p.CategorySlug, &p.Name, &p.Description,
			&p.Price, &p.Stock, &p.IsAvailable, &p.Featured, &p.Image, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		it.Product = &p
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *CartRepo) Touch(ctx context.Context, cartID int64, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE carts SET updated_at = $2 WHERE id = $1`, cartID, at)
	if err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddItem inserta la línea. UNIQUE(cart_id, product_id) garantiza una línea por producto.
func (r *CartRepo) AddItem(ctx context.Context, item *entity.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, added_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		item.CartID, item.ProductID, item.Quantity, item.AddedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return mapWriteError(err, "insert cart item", false)
	}
	return nil
}

func (r *CartRepo) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE cart_items SET quantity = $2, updated_at = $3 WHERE id = $1`, itemID, quantity, at)
	if err != nil {
		return mapWriteError(err, "update cart item", false)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteItem borra la línea solo si pertenece al carrito indicado.
func (r *CartRepo) DeleteItem(ctx context.Context, cartID, itemID int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CartRepo) DeleteItems(ctx context.Context, cartID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *CartRepo) DeleteItemsByProduct(ctx context.Context, productID int64) (int, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE product_id = $1`, productID)
	if err != nil {
		return 0, fmt.Errorf("delete cart items by product: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
