package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/eshop-api/internal/domain"
	"github.com/jhoicas/eshop-api/internal/domain/entity"
	"github.com/jhoicas/eshop-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto y asigna su ID.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (category_id, name, description, price, stock, is_available, featured, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		p.CategoryID, p.Name, p.Description, p.Price, p.Stock,
		p.IsAvailable, p.Featured, p.Image, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return mapWriteError(err, "insert product", false)
	}
	return nil
}

// GetByID obtiene un producto por ID con su categoría.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update reemplaza los campos editables del producto.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products
		SET category_id = $2, name = $3, description = $4, price = $5, stock = $6,
		    is_available = $7, featured = $8, image = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.CategoryID, p.Name, p.Description, p.Price, p.Stock,
		p.IsAvailable, p.Featured, p.Image, p.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "update product", false)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Search aplica el filtro; devuelve la página y el total sin paginar.
func (r *ProductRepo) Search(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	where, args := buildProductWhere(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM products p JOIN categories c ON c.id = p.category_id` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := productSelect + where + productOrderBy(f.Ordering)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	list := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListIDsByCategory IDs de los productos de la categoría, ascendente.
func (r *ProductRepo) ListIDsByCategory(ctx context.Context, categoryID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM products WHERE category_id = $1 ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan product ids: %w", err)
	}
	return ids, nil
}

// Delete elimina el producto. Falla con ErrConflict si alguna línea de carrito aún lo referencia.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, "delete product", true)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.CategoryName, &p.CategorySlug, &p.Name, &p.Description,
		&p.Price, &p.Stock, &p.IsAvailable, &p.Featured, &p.Image, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
