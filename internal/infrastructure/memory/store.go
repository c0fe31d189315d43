// Package memory implementa los repositorios sobre mapas en memoria.
// Se usa en tests y con STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/jhoicas/eshop-api/internal/domain/entity"
	"github.com/jhoicas/eshop-api/internal/domain/repository"
)

type dataset struct {
	categories map[int64]entity.Category
	products   map[int64]entity.Product
	carts      map[int64]entity.Cart // sin Items
	items      map[int64]entity.CartItem

	lastCategory int64
	lastProduct  int64
	lastCart     int64
	lastItem     int64
}

func newDataset() *dataset {
	return &dataset{
		categories: map[int64]entity.Category{},
		products:   map[int64]entity.Product{},
		carts:      map[int64]entity.Cart{},
		items:      map[int64]entity.CartItem{},
	}
}

func (d *dataset) clone() *dataset {
	c := *d
	c.categories = maps.Clone(d.categories)
	c.products = maps.Clone(d.products)
	c.carts = maps.Clone(d.carts)
	c.items = maps.Clone(d.items)
	return &c
}

// Store datos compartidos por los repositorios en memoria.
// Fuera de una transacción cada llamada es atómica; dentro de TxRunner.Run
// el mutex se mantiene durante toda la función.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// Categories repositorio de categorías fuera de transacción.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{a: liveAccess{s: s}} }

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{a: liveAccess{s: s}} }

// Carts repositorio de carritos fuera de transacción.
func (s *Store) Carts() *CartRepo { return &CartRepo{a: liveAccess{s: s}} }

// TxRunner transacciones sobre este store.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// access abstrae si se opera sobre los datos vivos (con lock) o sobre la copia de una tx.
type access interface {
	do(fn func(d *dataset) error) error
}

type liveAccess struct{ s *Store }

func (a liveAccess) do(fn func(d *dataset) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.data)
}

type txAccess struct{ d *dataset }

func (a txAccess) do(fn func(d *dataset) error) error { return fn(a.d) }

// TxRunner serializa las transacciones con el mutex del store. La función trabaja
// sobre una copia que solo reemplaza a los datos vivos si retorna nil.
// Los repositorios del store (no los de la tx) no deben usarse dentro de fn.
type TxRunner struct {
	s *Store
}

// Run ejecuta fn con repositorios atados a la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	work := r.s.data.clone()
	a := txAccess{d: work}
	if err := fn(&CategoryRepo{a: a}, &ProductRepo{a: a}, &CartRepo{a: a}); err != nil {
		return err
	}
	r.s.data = work
	return nil
}
