package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	pkgerrors "github.com/webcraft-id/kantinku-backend/pkg/errors"
	"github.com/webcraft-id/kantinku-backend/pkg/logger"
	"github.com/webcraft-id/kantinku-backend/pkg/metrics"
)

// DefaultDebounce is the quiet period the bridge waits for before writing.
// Rapid quantity taps inside the window collapse into a single store write.
const DefaultDebounce = 100 * time.Millisecond

const flushTimeout = 5 * time.Second

// BridgeParams configure a persistence bridge.
type BridgeParams struct {
	Container *Container
	Store     Store
	Logger    *logger.Logger
	Metrics   *metrics.CartMetrics
	Debounce  time.Duration
}

// Bridge watches a container and mirrors its state into the record store.
// Items changes save under RecordItems (or remove the record when the cart
// empties); vendor changes save under RecordVendor likewise. Writes are
// debounced: a mutation inside the window cancels the pending write and
// reschedules it, so storage always settles on the latest state and writes
// never overlap. Nothing is written until Rehydrate has run, which keeps the
// initial load from immediately re-saving itself.
type Bridge struct {
	container *Container
	store     Store
	logg      *logger.Logger
	metrics   *metrics.CartMetrics
	debounce  time.Duration

	mu            sync.Mutex
	timer         *time.Timer
	pendingItems  bool
	pendingVendor bool
	loaded        bool
	closed        bool

	// writeMu serializes store writes. A mutation during a slow in-flight
	// write arms a fresh timer; its flush must queue behind the stalled one
	// or storage could settle on the older snapshot.
	writeMu sync.Mutex

	unsubscribe func()
}

// NewBridge wires a bridge to the container and starts observing it. Call
// Rehydrate before exposing the container to callers, and Close on teardown.
func NewBridge(params BridgeParams) (*Bridge, error) {
	if params.Container == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart container is required")
	}
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart store is required")
	}
	debounce := params.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	b := &Bridge{
		container: params.Container,
		store:     params.Store,
		logg:      params.Logger,
		metrics:   params.Metrics,
		debounce:  debounce,
	}
	b.unsubscribe = params.Container.Subscribe(b.onChange)
	return b, nil
}

// Rehydrate performs the one-time load of both records into the container
// and then arms persistence. A record that is absent or fails to parse is
// treated as empty; a broken saved cart must never take the session down.
func (b *Bridge) Rehydrate(ctx context.Context) error {
	var items []LineItem
	if raw, ok, err := b.store.Load(ctx, RecordItems); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart record")
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			b.metrics.IncLoadFailure()
			b.warn(ctx, "discarding unparseable cart record", err)
			items = nil
		}
	}

	var vendor *VendorDescriptor
	if raw, ok, err := b.store.Load(ctx, RecordVendor); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor record")
	} else if ok {
		var decoded VendorDescriptor
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			b.metrics.IncLoadFailure()
			b.warn(ctx, "discarding unparseable vendor record", err)
		} else {
			normalized := decoded.normalize()
			vendor = &normalized
		}
	}

	b.container.restore(items, vendor)

	b.mu.Lock()
	b.loaded = true
	b.mu.Unlock()
	return nil
}

// Flush cancels any pending timer and writes both records immediately.
func (b *Bridge) Flush(ctx context.Context) error {
	b.mu.Lock()
	if b.closed || !b.loaded {
		b.mu.Unlock()
		return nil
	}
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.pendingItems = false
	b.pendingVendor = false
	b.mu.Unlock()

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if err := b.writeItems(ctx); err != nil {
		return err
	}
	return b.writeVendor(ctx)
}

// Close detaches from the container and cancels any pending write so nothing
// touches the store after teardown. It does not flush; callers that want the
// final state persisted flush first.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

// onChange runs synchronously inside container mutations: it only records
// what became dirty and arms (or re-arms) the debounce timer.
func (b *Bridge) onChange(change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || !b.loaded {
		return
	}

	switch change {
	case ChangeItems:
		b.pendingItems = true
	case ChangeVendor:
		b.pendingVendor = true
	default:
		return
	}

	if b.timer != nil {
		// A write is already scheduled; restart its quiet period.
		b.timer.Reset(b.debounce)
		b.metrics.IncCollapsed()
		return
	}
	b.timer = time.AfterFunc(b.debounce, b.flushPending)
}

// flushPending runs on the timer goroutine once the quiet period elapses.
func (b *Bridge) flushPending() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	items := b.pendingItems
	vendor := b.pendingVendor
	b.pendingItems = false
	b.pendingVendor = false
	b.timer = nil
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if items {
		if err := b.writeItems(ctx); err != nil {
			b.warn(ctx, "persisting cart items failed", err)
		}
	}
	if vendor {
		if err := b.writeVendor(ctx); err != nil {
			b.warn(ctx, "persisting vendor descriptor failed", err)
		}
	}
}

// writeItems saves the item record, or removes it when the cart is empty.
// An absent record and an empty array rehydrate identically; removing keeps
// storage minimal.
func (b *Bridge) writeItems(ctx context.Context) error {
	items := b.container.Items()
	start := time.Now()
	defer func() { b.metrics.ObserveWriteDuration(time.Since(start)) }()

	if len(items) == 0 {
		b.metrics.IncWrite(RecordItems, "remove")
		if err := b.store.Remove(ctx, RecordItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart record")
		}
		return nil
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart record")
	}
	b.metrics.IncWrite(RecordItems, "save")
	if err := b.store.Save(ctx, RecordItems, string(encoded)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart record")
	}
	return nil
}

func (b *Bridge) writeVendor(ctx context.Context) error {
	vendor := b.container.Vendor()
	if vendor == nil {
		b.metrics.IncWrite(RecordVendor, "remove")
		if err := b.store.Remove(ctx, RecordVendor); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove vendor record")
		}
		return nil
	}

	encoded, err := json.Marshal(vendor)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode vendor record")
	}
	b.metrics.IncWrite(RecordVendor, "save")
	if err := b.store.Save(ctx, RecordVendor, string(encoded)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save vendor record")
	}
	return nil
}

func (b *Bridge) warn(ctx context.Context, msg string, err error) {
	if b.logg == nil {
		return
	}
	b.logg.Warn(b.logg.WithField(ctx, "error", err.Error()), msg)
}
