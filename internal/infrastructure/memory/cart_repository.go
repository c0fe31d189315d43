package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/eshop-api/internal/domain"
	"github.com/jhoicas/eshop-api/internal/domain/entity"
	"github.com/jhoicas/eshop-api/internal/domain/repository"
)

// CartRepo implementación en memoria de repository.CartRepository.
type CartRepo struct {
	a access
}

var _ repository.CartRepository = (*CartRepo)(nil)

// Create no hace nada si ya existe un carrito con la misma SessionKey.
func (r *CartRepo) Create(_ context.Context, c *entity.Cart) error {
	return r.a.do(func(d *dataset) error {
		for _, existing := range d.carts {
			if existing.SessionKey == c.SessionKey {
				c.ID = existing.ID
				return nil
			}
		}
		d.lastCart++
		c.ID = d.lastCart
		stored := *c
		stored.Items = nil
		d.carts[c.ID] = stored
		return nil
	})
}

func (r *CartRepo) GetBySessionKey(_ context.Context, sessionKey string) (*entity.Cart, error) {
	var out *entity.Cart
	err := r.a.do(func(d *dataset) error {
		out = d.cartBySession(sessionKey)
		return nil
	})
	return out, err
}

// GetForUpdate en memoria el bloqueo lo da el mutex del store durante la transacción.
func (r *CartRepo) GetForUpdate(ctx context.Context, sessionKey string) (*entity.Cart, error) {
	return r.GetBySessionKey(ctx, sessionKey)
}

func (r *CartRepo) Touch(_ context.Context, cartID int64, at time.Time) error {
	return r.a.do(func(d *dataset) error {
		c, ok := d.carts[cartID]
		if !ok {
			return domain.ErrNotFound
		}
		c.UpdatedAt = at
		d.carts[cartID] = c
		return nil
	})
}

func (r *CartRepo) AddItem(_ context.Context, item *entity.CartItem) error {
	return r.a.do(func(d *dataset) error {
		if _, ok := d.carts[item.CartID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := d.products[item.ProductID]; !ok {
			return domain.ErrNotFound
		}
		if item.Quantity < 1 {
			return domain.ErrInvalidInput
		}
		for _, it := range d.items {
			if it.CartID == item.CartID && it.ProductID == item.ProductID {
				return domain.ErrDuplicate
			}
		}
		d.lastItem++
		item.ID = d.lastItem
		stored := *item
		stored.Product = nil
		d.items[item.ID] = stored
		return nil
	})
}

func (r *CartRepo) UpdateItemQuantity(_ context.Context, itemID int64, quantity int, at time.Time) error {
	return r.a.do(func(d *dataset) error {
		it, ok := d.items[itemID]
		if !ok {
			return domain.ErrNotFound
		}
		if quantity < 1 {
			return domain.ErrInvalidInput
		}
		it.Quantity = quantity
		it.UpdatedAt = at
		d.items[itemID] = it
		return nil
	})
}

func (r *CartRepo) DeleteItem(_ context.Context, cartID, itemID int64) error {
	return r.a.do(func(d *dataset) error {
		it, ok := d.items[itemID]
		if !ok || it.CartID != cartID {
			return domain.ErrNotFound
		}
		delete(d.items, itemID)
		return nil
	})
}

func (r *CartRepo) DeleteItems(_ context.Context, cartID int64) error {
	return r.a.do(func(d *dataset) error {
		for id, it := range d.items {
			if it.CartID == cartID {
				delete(d.items, id)
			}
		}
		return nil
	})
}

func (r *CartRepo) DeleteItemsByProduct(_ context.Context, productID int64) (int, error) {
	n := 0
	err := r.a.do(func(d *dataset) error {
		for id, it := range d.items {
			if it.ProductID == productID {
				delete(d.items, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

// cartBySession arma el carrito con sus líneas (orden de inserción) y productos.
func (d *dataset) cartBySession(sessionKey string) *entity.Cart {
	for _, c := range d.carts {
		if c.SessionKey != sessionKey {
			continue
		}
		c.Items = []entity.CartItem{}
		for _, it := range d.items {
			if it.CartID == c.ID {
				it.Product = d.product(it.ProductID)
				c.Items = append(c.Items, it)
			}
		}
		sort.Slice(c.Items, func(i, j int) bool {
			if !c.Items[i].AddedAt.Equal(c.Items[j].AddedAt) {
				return c.Items[i].AddedAt.Before(c.Items[j].AddedAt)
			}
			return c.Items[i].ID < c.Items[j].ID
		})
		return &c
	}
	return nil
}
