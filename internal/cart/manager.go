// Package cart keeps the storefront's cart in memory and reconciles it with
// its durable backing: the server for signed-in users, the local guest store
// otherwise.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront/internal/cartapi"
	"github.com/javajoker/storefront/internal/i18n"
	"github.com/javajoker/storefront/internal/models"
	"github.com/javajoker/storefront/internal/notify"
)

// Remote is the server-side cart, see cartapi.Client.
type Remote interface {
	GetCart(ctx context.Context) ([]models.RawCartItem, error)
	AddItem(ctx context.Context, req models.AddItemRequest) (models.RawCartItem, error)
	UpdateItem(ctx context.Context, cartItemID string, quantity int) (models.RawCartItem, error)
	RemoveItem(ctx context.Context, cartItemID string) error
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// GuestStore is the local slot holding the serialized guest cart.
// Load returns nil when nothing is stored.
type GuestStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// AuthState tells the manager which backing store is authoritative.
type AuthState interface {
	IsAuthenticated() bool
}

// State is a read-only copy of the manager's state.
type State struct {
	Items   []models.CartItem
	Loading bool
	Error   string
	Phase   Phase
}

// Manager owns the in-memory cart. All changes go through its methods.
type Manager struct {
	remote   Remote
	store    GuestStore
	auth     AuthState
	notifier notify.Notifier
	log      *logrus.Entry

	lang     string
	duration time.Duration
	newID    func() string

	gate gate

	mu      sync.RWMutex
	items   []models.CartItem
	loading bool
	lastErr string
}

func NewManager(remote Remote, store GuestStore, auth AuthState, notifier notify.Notifier) *Manager {
	return &Manager{
		remote:   remote,
		store:    store,
		auth:     auth,
		notifier: notifier,
		log:      logrus.WithField("component", "cart"),
		lang:     "en",
		duration: notify.DefaultDuration,
		newID:    func() string { return uuid.NewString() },
		items:    []models.CartItem{},
	}
}

// SetLanguage selects the locale of notification messages.
func (m *Manager) SetLanguage(lang string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lang = lang
}

// SetNotificationDuration sets how long notifications stay visible.
func (m *Manager) SetNotificationDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

// Items returns a copy of the committed cart.
func (m *Manager) Items() []models.CartItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneItems(m.items)
}

// State returns a copy of the items together with the loading flag, the last
// fetch error and the gate phase.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{
		Items:   cloneItems(m.items),
		Loading: m.loading,
		Error:   m.lastErr,
		Phase:   m.gate.current(),
	}
}

// Phase reports whether a mutation is in flight.
func (m *Manager) Phase() Phase {
	return m.gate.current()
}

// GetCartSummary derives totals from the committed cart.
func (m *Manager) GetCartSummary() models.CartSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Summarize(m.items)
}

// GetCartCount is the number of units in the cart.
func (m *Manager) GetCartCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return TotalQuantity(m.items)
}

// GetCartTotal is the summary's total including GST.
func (m *Manager) GetCartTotal() float64 {
	return m.GetCartSummary().TotalAmount
}

// FetchCart replaces the cart from its backing store. Unless force is set it
// does nothing while a mutation is in flight.
func (m *Manager) FetchCart(ctx context.Context, force bool) error {
	if !force && m.gate.current() == PhaseMutating {
		return nil
	}

	m.setLoading(true)
	defer m.setLoading(false)

	if !m.auth.IsAuthenticated() {
		items, err := m.loadGuest(ctx)
		if err != nil {
			// never rewrite the slot after a failed read
			m.mu.Lock()
			m.lastErr = err.Error()
			m.mu.Unlock()
			return fmt.Errorf("fetch cart: %w", err)
		}
		m.persistGuest(ctx, items)
		m.replace(items, true)
		return nil
	}

	raws, err := m.remote.GetCart(ctx)
	if err == nil {
		m.replace(NormalizeAll(raws), true)
		return nil
	}

	if errors.Is(err, cartapi.ErrUnauthorized) {
		m.log.Info("Session not accepted, showing guest cart")
		items, _ := m.loadGuest(ctx)
		m.replace(items, true)
		return nil
	}

	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
	m.log.WithError(err).Error("Failed to fetch cart")
	return fmt.Errorf("fetch cart: %w", err)
}

// AddToCart adds quantity units of product. Signed-in users go through the
// server and the cart is re-read afterwards; guests are merged locally.
// The bool is false when nothing was added.
func (m *Manager) AddToCart(ctx context.Context, product models.ProductSnapshot, quantity int, specs models.Specifications) (bool, error) {
	if product.ID == "" {
		return false, ErrInvalidProduct
	}
	if quantity < 1 {
		return false, ErrInvalidQuantity
	}
	if !m.gate.enter() {
		m.log.WithField("product_id", product.ID).Debug("Add skipped, another cart change is in progress")
		return false, nil
	}
	defer m.gate.leave()

	if m.auth.IsAuthenticated() {
		_, err := m.remote.AddItem(ctx, models.AddItemRequest{
			ProductID:      product.ID,
			Quantity:       quantity,
			Specifications: specs,
		})
		if err != nil {
			m.notify(notify.LevelError, i18n.KeyCartAddFailed)
			m.log.WithError(err).WithField("product_id", product.ID).Error("Failed to add item to cart")
			return false, fmt.Errorf("add to cart: %w", err)
		}
		if err := m.FetchCart(ctx, true); err != nil {
			m.log.WithError(err).Warn("Item added but cart refresh failed")
		}
		m.notify(notify.LevelSuccess, i18n.KeyCartAdded)
		return true, nil
	}

	items := m.mergeGuestLine(m.Items(), product, quantity, specs)
	items = filterValid(items)
	m.persistGuest(ctx, items)
	m.replace(items, false)
	m.notify(notify.LevelSuccess, i18n.KeyCartAdded)
	return true, nil
}

func (m *Manager) mergeGuestLine(items []models.CartItem, product models.ProductSnapshot, quantity int, specs models.Specifications) []models.CartItem {
	key := lineKey(product.ID, specs)
	for i := range items {
		if lineKey(items[i].ProductID, items[i].Specifications) == key {
			previous := items[i].Quantity
			items[i].Quantity += quantity
			refreshCalculations(&items[i], previous)
			return items
		}
	}

	id := product.ID
	if len(specs) > 0 {
		// variants of one product need distinct line ids
		id = m.newID()
	}

	snapshot := product.Clone()
	if len(snapshot.Images) == 0 {
		snapshot.Images = nil
	}

	return append(items, models.CartItem{
		ID:             id,
		ProductID:      product.ID,
		Quantity:       quantity,
		Product:        &snapshot,
		Specifications: specs.Clone(),
	})
}

// UpdateCartItem sets the quantity of one line. A quantity below 1, or a
// call made while another change is in flight, does nothing and returns false.
//
// When signed in and the server cannot be reached, or rejects the session,
// the quantity is applied locally and the call succeeds; the next fetch
// reconciles with the server. Any other failure restores the cart and
// returns the error.
func (m *Manager) UpdateCartItem(ctx context.Context, cartItemID string, quantity int) (bool, error) {
	if quantity < 1 {
		return false, nil
	}
	if !m.gate.enter() {
		m.log.WithField("cart_item_id", cartItemID).Debug("Update skipped, another cart change is in progress")
		return false, nil
	}
	defer m.gate.leave()

	snapshot := m.Items()

	items, err := m.updateItem(ctx, cloneItems(snapshot), cartItemID, quantity)
	if err != nil {
		m.replace(snapshot, false)
		m.notify(notify.LevelError, i18n.KeyCartUpdateFailed)
		m.log.WithError(err).WithField("cart_item_id", cartItemID).Error("Failed to update cart item")
		return false, err
	}

	m.replace(filterValid(items), false)
	m.notify(notify.LevelSuccess, i18n.KeyCartUpdated)
	return true, nil
}

func (m *Manager) updateItem(ctx context.Context, items []models.CartItem, cartItemID string, quantity int) ([]models.CartItem, error) {
	if !m.auth.IsAuthenticated() {
		items, err := updateLocal(items, cartItemID, quantity)
		if err != nil {
			return nil, err
		}
		m.persistGuest(ctx, filterValid(items))
		return items, nil
	}

	raw, err := m.remote.UpdateItem(ctx, cartItemID, quantity)
	switch {
	case err == nil:
		updated := Normalize(raw)
		if idx := indexOf(items, cartItemID); idx >= 0 {
			items[idx] = updated
		} else {
			items = append(items, updated)
		}
		return items, nil

	case cartapi.IsTransport(err) || errors.Is(err, cartapi.ErrUnauthorized):
		// keep what the user asked for; the next fetch reconciles with the server
		m.log.WithError(err).Warn("Server update unavailable, applying quantity locally")
		return updateLocal(items, cartItemID, quantity)

	default:
		return nil, fmt.Errorf("update cart item: %w", err)
	}
}

func updateLocal(items []models.CartItem, cartItemID string, quantity int) ([]models.CartItem, error) {
	idx := indexOf(items, cartItemID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, cartItemID)
	}
	previous := items[idx].Quantity
	items[idx].Quantity = quantity
	if items[idx].Product == nil && items[idx].ItemCalculations != nil {
		refreshCalculations(&items[idx], previous)
		return items, nil
	}
	calc := localCalculations(items[idx])
	items[idx].ItemCalculations = &calc
	return items, nil
}

// RemoveFromCart deletes one line. It returns false without error when another
// change is in flight. A server 404 yields ErrStaleItem.
func (m *Manager) RemoveFromCart(ctx context.Context, cartItemID string) (bool, error) {
	if !m.gate.enter() {
		m.log.WithField("cart_item_id", cartItemID).Debug("Remove skipped, another cart change is in progress")
		return false, nil
	}
	defer m.gate.leave()

	snapshot := m.Items()

	if m.auth.IsAuthenticated() {
		if err := m.remote.RemoveItem(ctx, cartItemID); err != nil {
			m.replace(snapshot, false)
			logger := m.log.WithError(err).WithField("cart_item_id", cartItemID)
			if errors.Is(err, cartapi.ErrNotFound) {
				m.notify(notify.LevelError, i18n.KeyCartStaleItem)
				logger.Warn("Server does not know this cart item")
				return false, fmt.Errorf("%w: %w", ErrStaleItem, err)
			}
			m.notify(notify.LevelError, i18n.KeyCartRemoveFailed)
			logger.Error("Failed to remove cart item")
			return false, fmt.Errorf("remove cart item: %w", err)
		}
		m.replace(removeLine(snapshot, cartItemID), false)
		m.notify(notify.LevelSuccess, i18n.KeyCartRemoved)
		return true, nil
	}

	items := removeLine(snapshot, cartItemID)
	m.persistGuest(ctx, items)
	m.replace(items, false)
	m.notify(notify.LevelSuccess, i18n.KeyCartRemoved)
	return true, nil
}

func removeLine(items []models.CartItem, cartItemID string) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if item.ID != cartItemID {
			out = append(out, item)
		}
	}
	return out
}

// ClearCart empties the cart right away and then clears the backing store.
// A failed server call is logged and otherwise ignored: the local cart stays
// empty and the user is told it was cleared.
func (m *Manager) ClearCart(ctx context.Context) error {
	if !m.gate.enter() {
		m.log.Debug("Clear skipped, another cart change is in progress")
		return nil
	}
	defer m.gate.leave()

	m.replace([]models.CartItem{}, false)

	if m.auth.IsAuthenticated() {
		if err := m.remote.Clear(ctx); err != nil {
			m.log.WithError(err).Warn("Server cart clear failed, local cart cleared anyway")
		}
	} else if err := m.store.Delete(ctx); err != nil {
		m.log.WithError(err).Warn("Failed to delete guest cart")
	}

	m.notify(notify.LevelSuccess, i18n.KeyCartClearedNotice)
	return nil
}

// Count asks the server for the cart count when signed in and falls back to
// the local count for guests or a rejected session.
func (m *Manager) Count(ctx context.Context) (int, error) {
	if !m.auth.IsAuthenticated() {
		return m.GetCartCount(), nil
	}
	count, err := m.remote.Count(ctx)
	if errors.Is(err, cartapi.ErrUnauthorized) {
		return m.GetCartCount(), nil
	}
	if err != nil {
		return 0, fmt.Errorf("cart count: %w", err)
	}
	return count, nil
}

// HandleAuthChange switches backing store after a login or logout. Logout
// shows the guest cart without any network call. Login re-reads the server
// cart; the guest cart is left in place and not merged.
func (m *Manager) HandleAuthChange(ctx context.Context, authenticated bool) {
	if !authenticated {
		items, _ := m.loadGuest(ctx)
		m.replace(items, true)
		return
	}
	if err := m.FetchCart(ctx, true); err != nil {
		m.log.WithError(err).Warn("Failed to load cart after sign-in")
	}
}

// loadGuest reads the guest slot. Corrupt data yields an empty cart and no
// error; the error is only set when the slot could not be read at all, in
// which case the items are empty and must not be written back.
func (m *Manager) loadGuest(ctx context.Context) ([]models.CartItem, error) {
	data, err := m.store.Load(ctx)
	if err != nil {
		m.log.WithError(err).Warn("Failed to read guest cart")
		return []models.CartItem{}, fmt.Errorf("read guest cart: %w", err)
	}
	raws, err := models.ParseRawItems(data)
	if err != nil {
		m.log.WithError(err).Warn("Guest cart is corrupt, starting empty")
		return []models.CartItem{}, nil
	}
	return mergeDuplicateLines(NormalizeAll(raws)), nil
}

// persistGuest never fails outwardly; a write error is only logged.
func (m *Manager) persistGuest(ctx context.Context, items []models.CartItem) {
	if items == nil {
		items = []models.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		m.log.WithError(err).Warn("Failed to encode guest cart")
		return
	}
	if err := m.store.Save(ctx, data); err != nil {
		m.log.WithError(err).Warn("Failed to save guest cart")
	}
}

func (m *Manager) replace(items []models.CartItem, clearErr bool) {
	if items == nil {
		items = []models.CartItem{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
	if clearErr {
		m.lastErr = ""
	}
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = loading
}

func (m *Manager) notify(level notify.Level, key string) {
	if m.notifier == nil {
		return
	}
	m.mu.RLock()
	lang, duration := m.lang, m.duration
	m.mu.RUnlock()
	m.notifier.Notify(notify.Notification{
		Level:    level,
		Message:  i18n.T(lang, key),
		Duration: duration,
	})
}
