package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/shopfloor/toolcrib/internal/catalog"
	"github.com/shopfloor/toolcrib/internal/compat"
	"github.com/shopfloor/toolcrib/internal/config"
	"github.com/shopfloor/toolcrib/internal/drawings"
	"gorm.io/gorm"
)

// Daemon is the main bot process. It connects to a chat platform via an
// Adapter, pumps inbound messages through the dialogue Engine, and posts
// the scheduled low-stock digest to the working channel.
type Daemon struct {
	db      *gorm.DB
	cfg     *config.Config
	adapter Adapter
	out     io.Writer
}

// DaemonOpts holds parameters for creating a new Daemon.
type DaemonOpts struct {
	DB      *gorm.DB
	Config  *config.Config
	Adapter Adapter
	Out     io.Writer // defaults to os.Stdout
}

// NewDaemon creates a Daemon with the given options.
func NewDaemon(opts DaemonOpts) (*Daemon, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("bot: db is required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("bot: config is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("bot: adapter is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Daemon{
		db:      opts.DB,
		cfg:     opts.Config,
		adapter: opts.Adapter,
		out:     out,
	}, nil
}

// Run starts the bot. It connects the adapter, builds the stores, menus
// and dialogue engine, and blocks until the context is cancelled. On
// shutdown it closes the adapter gracefully.
func (d *Daemon) Run(ctx context.Context) error {
	fmt.Fprintf(d.out, "Toolcrib connecting...\n")
	if err := d.adapter.Connect(ctx); err != nil {
		return fmt.Errorf("bot: connect: %w", err)
	}

	// Extract bot user ID if the adapter supports it.
	var botUserID string
	if bui, ok := d.adapter.(BotUserIDer); ok {
		botUserID = bui.BotUserID()
	}

	catalogStore, err := catalog.NewStore(catalog.StoreOpts{
		DB:          d.db,
		MaxQuantity: d.cfg.Limits.MaxQuantity,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("bot: build catalog store: %w", err)
	}
	compatStore, err := compat.NewStore(compat.StoreOpts{DB: d.db})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("bot: build compat store: %w", err)
	}
	drawingStore, err := drawings.NewStore(drawings.StoreOpts{
		DB:  d.db,
		Dir: d.cfg.Drawings.Dir,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("bot: build drawings store: %w", err)
	}

	menus, err := NewMenuRegistry(d.cfg.Stamps)
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("bot: build menus: %w", err)
	}

	engine, err := NewEngine(EngineOpts{
		Catalog:     catalogStore,
		Compat:      compatStore,
		Drawings:    drawingStore,
		Menus:       menus,
		Sessions:    NewSessionManager(),
		Adapter:     d.adapter,
		Stamps:      d.cfg.Stamps,
		ClockOffset: time.Duration(d.cfg.Report.ClockOffsetHours) * time.Hour,
		BotUserID:   botUserID,
		Out:         d.out,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("bot: build engine: %w", err)
	}

	// Start listening for inbound messages.
	inbound, err := d.adapter.Listen(ctx)
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("bot: listen: %w", err)
	}

	// Start digest scheduler goroutine.
	go d.runDigestScheduler(ctx, catalogStore)

	fmt.Fprintf(d.out, "Toolcrib online\n")

	// Main event loop: pump inbound messages until context is cancelled.
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(d.out, "Toolcrib shutting down...\n")
			if err := d.adapter.Close(); err != nil {
				log.Printf("bot: close adapter: %v", err)
			}
			fmt.Fprintf(d.out, "Toolcrib stopped\n")
			return nil

		case msg, ok := <-inbound:
			if !ok {
				// Adapter closed the channel.
				fmt.Fprintf(d.out, "Toolcrib inbound channel closed\n")
				return nil
			}
			engine.Handle(ctx, msg)
		}
	}
}

// runDigestScheduler manages the cron-based low-stock digest timer. It
// returns immediately when no schedule is configured.
func (d *Daemon) runDigestScheduler(ctx context.Context, store *catalog.Store) {
	digestCfg := d.cfg.Digest
	if digestCfg.Schedule == "" {
		return
	}
	if _, err := cronParser.Parse(digestCfg.Schedule); err != nil {
		log.Printf("bot: digest schedule %q: %v, digest disabled", digestCfg.Schedule, err)
		return
	}

	var timer *time.Timer
	if next := nextCronDuration(digestCfg.Schedule); next > 0 {
		timer = time.NewTimer(next)
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timerChan(timer):
			d.fireDigest(ctx, store, digestCfg.Threshold)
			if next := nextCronDuration(digestCfg.Schedule); next > 0 {
				timer.Reset(next)
			}
		}
	}
}

// fireDigest builds and sends a single low-stock digest.
func (d *Daemon) fireDigest(ctx context.Context, store *catalog.Store, threshold int) {
	text, err := BuildLowStockDigest(store, threshold)
	if err != nil {
		log.Printf("bot: low stock digest: %v", err)
		return
	}
	if text == "" {
		// Nothing is low, suppress the post.
		return
	}
	if err := d.adapter.Send(ctx, OutboundMessage{
		ChannelID: d.cfg.ChannelID,
		Text:      text,
	}); err != nil {
		log.Printf("bot: send low stock digest: %v", err)
	}
}

// timerChan returns the timer's channel, or nil if the timer is nil.
// A nil channel blocks forever in select, which is the desired behavior
// when the digest is not scheduled.
func timerChan(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}
