// Package asset resolves asset identifiers to tradable descriptors.
package asset

import (
	"time"

	"github.com/yanun0323/errors"

	"main/internal/model"
)

var (
	ErrUnknownAsset  = errors.New("asset id not found")
	ErrEmptySymbol   = errors.New("asset symbol is empty")
	ErrDuplicateID   = errors.New("asset id already exists")
	ErrDuplicateName = errors.New("asset symbol already exists")
)

// Asset describes one tradable instrument.
type Asset struct {
	ID       model.AssetID
	Symbol   string
	Exchange string
	Start    time.Time
	End      time.Time
}

// Registry stores asset descriptors keyed by id and symbol.
type Registry struct {
	assets   []Asset
	byID     map[model.AssetID]int
	bySymbol map[string]model.AssetID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[model.AssetID]int),
		bySymbol: make(map[string]model.AssetID),
	}
}

// Add registers a new asset.
func (r *Registry) Add(a Asset) error {
	if a.Symbol == "" {
		return ErrEmptySymbol
	}
	if _, ok := r.byID[a.ID]; ok {
		return errors.Wrapf(ErrDuplicateID, "id: %d", a.ID)
	}
	if _, ok := r.bySymbol[a.Symbol]; ok {
		return errors.Wrapf(ErrDuplicateName, "symbol: %s", a.Symbol)
	}
	r.byID[a.ID] = len(r.assets)
	r.bySymbol[a.Symbol] = a.ID
	r.assets = append(r.assets, a)
	return nil
}

// Resolve returns the descriptor for an asset id. Unknown ids are an
// error, never a placeholder.
func (r *Registry) Resolve(id model.AssetID) (Asset, error) {
	idx, ok := r.byID[id]
	if !ok {
		return Asset{}, errors.Wrapf(ErrUnknownAsset, "id: %d", id)
	}
	return r.assets[idx], nil
}

// IDBySymbol returns the asset id for a symbol.
func (r *Registry) IDBySymbol(symbol string) (model.AssetID, bool) {
	id, ok := r.bySymbol[symbol]
	return id, ok
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	return len(r.assets)
}

// At returns the i-th asset in registration order.
func (r *Registry) At(i int) (Asset, bool) {
	if i < 0 || i >= len(r.assets) {
		return Asset{}, false
	}
	return r.assets[i], true
}
