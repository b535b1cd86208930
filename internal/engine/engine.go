package engine

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"reversal-alert-bot/internal/store"
	"reversal-alert-bot/internal/types"
)

// QuoteProvider fetches a current price snapshot for a token.
type QuoteProvider interface {
	Quote(ctx context.Context, address string) (types.Quote, error)
}

// AlertSender delivers a fired reversal to an external notification channel.
type AlertSender interface {
	Send(ctx context.Context, alert types.ReversalAlert) error
}

// Config wires the engine's collaborators.
type Config struct {
	Store    *store.Store
	Quotes   QuoteProvider
	Alerts   AlertSender
	Interval time.Duration

	// OnFired runs after an alert fires, whether or not delivery succeeded.
	// Used for the audit log and metrics.
	OnFired func(alert types.ReversalAlert)
}

// Engine is the price monitor loop. Each tick walks a snapshot of the
// tracked tokens, lowers local bottoms and fires at-most-once reversal
// alerts through the store's atomic take operation.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Run ticks every Interval until ctx is cancelled. A failure on one token
// never stops the loop.
func (e *Engine) Run(ctx context.Context) {
	log.Infof("🔄 Price monitor started (interval %s)", e.cfg.Interval)

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		e.safeTick(ctx)

		select {
		case <-ctx.Done():
			log.Info("Price monitor stopped")
			return
		case <-ticker.C:
		}
	}
}

func (e *Engine) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("🔥 Panic recovered in price monitor tick: %v", r)
		}
	}()
	e.Tick(ctx)
}

// Tick runs one pass over the current token snapshot. Tokens added mid-tick
// are picked up next tick; tokens removed mid-tick are tolerated by the
// store's no-op semantics on absent records.
func (e *Engine) Tick(ctx context.Context) {
	for _, tracked := range e.cfg.Store.ListAll() {
		e.checkToken(ctx, tracked)
	}
}

func (e *Engine) checkToken(ctx context.Context, tracked types.TrackedToken) {
	record := tracked.Record

	quote, err := e.cfg.Quotes.Quote(ctx, tracked.Address)
	if err != nil {
		log.Warnf("⚠️ Skipping %s this tick, quote fetch failed: %v", record.Symbol, err)
		return
	}

	// A bottom-lowering tick can never also be a firing tick: the gain from
	// the new bottom is zero.
	if quote.Price < record.LocalBottom {
		e.cfg.Store.UpdateBottom(tracked.Address, quote.Price)
		log.Infof("📉 %s: new bottom $%.6f", record.Symbol, quote.Price)
		return
	}

	fired, ok := e.cfg.Store.TakeIfReversed(tracked.Address, quote.Price)
	if !ok {
		if record.LocalBottom > 0 {
			percentGain := (quote.Price - record.LocalBottom) / record.LocalBottom * 100
			log.Debugf("📊 %s: $%.6f (+%.1f%% from bottom, target: +%.1f%%)",
				record.Symbol, quote.Price, percentGain, record.TargetPercent)
		}
		return
	}

	alert := types.ReversalAlert{
		Address:     tracked.Address,
		Symbol:      fired.Symbol,
		Name:        fired.Name,
		PercentGain: (quote.Price - fired.LocalBottom) / fired.LocalBottom * 100,
		Price:       quote.Price,
		LocalBottom: fired.LocalBottom,
		FiredAt:     time.Now(),
	}

	log.Infof("🚀 %s: +%.1f%% from bottom!", alert.Symbol, alert.PercentGain)

	// The token has already left tracking; a delivery failure is logged,
	// never retried and never re-armed.
	if err := e.cfg.Alerts.Send(ctx, alert); err != nil {
		log.Errorf("❌ Failed to deliver reversal alert for %s: %v", alert.Symbol, err)
	} else {
		log.Infof("✅ Reversal alert delivered for %s", alert.Symbol)
	}

	if e.cfg.OnFired != nil {
		e.cfg.OnFired(alert)
	}
}
