// Command watcher demonstrates the observable collection core without a
// database: a writer goroutine mutates an observable list while reader
// goroutines take consistent snapshots, and all notifications are
// delivered through a serial dispatcher the way a message loop would.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/observable-collections-go/collections"
	"github.com/AntonStoeckl/observable-collections-go/collections/syncengine"
)

const (
	defaultMutationIntervalMS = 250
	defaultReloadEvery        = 10
	defaultReaders            = 3
)

type Config struct {
	MutationInterval time.Duration
	ReloadEvery      int
	Readers          int
	Verbose          bool
}

// slogAdapter bridges the collection logger interface onto log/slog.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
func (a slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	dispatcher := collections.NewSerialDispatcher()
	defer func() {
		_ = dispatcher.Close() // makes no sense to handle this
	}()

	list, err := syncengine.NewObservableList(
		[]string{},
		syncengine.WithDispatcher(dispatcher),
		syncengine.WithCollectionName("watched-items"),
		syncengine.WithLogger(slogAdapter{logger: logger}),
	)
	if err != nil {
		log.Fatalf("Failed to create observable list: %v", err)
	}
	defer func() {
		_ = list.Close() // makes no sense to handle this
	}()

	unsubscribeReset := list.SubscribeReset(func() {
		count, countErr := list.Count()
		if countErr != nil {
			return
		}
		logger.Info("collection was reset", "count", count)
	})
	defer unsubscribeReset()

	unsubscribeProperty := list.SubscribePropertyChanged(func(property string) {
		logger.Debug("property changed", "property", property)
	})
	defer unsubscribeProperty()

	var wg sync.WaitGroup

	// Reader goroutines take snapshots concurrently with the writer.
	for readerNum := 0; readerNum < cfg.Readers; readerNum++ {
		wg.Add(1)
		go func(readerNum int) {
			defer wg.Done()
			runReader(ctx, logger, list, readerNum, cfg.MutationInterval*2)
		}(readerNum)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		runWriter(ctx, logger, list, cfg)
	}()

	log.Printf("Observable collection watcher started")
	log.Printf("Configuration: mutation_interval=%v, reload_every=%d mutations, readers=%d",
		cfg.MutationInterval, cfg.ReloadEvery, cfg.Readers)
	log.Printf("Press Ctrl+C to stop...")

	sig := <-sigChan
	log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	cancel()

	wg.Wait()
	log.Printf("Watcher stopped")
}

// runWriter appends one item per tick and periodically swaps the whole
// contents through Reload, which observers see as a single reset.
func runWriter(ctx context.Context, logger *slog.Logger, list *syncengine.ObservableList[string], cfg Config) {
	ticker := time.NewTicker(cfg.MutationInterval)
	defer ticker.Stop()

	mutations := 0
	generation := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mutations++

			if mutations%cfg.ReloadEvery == 0 {
				generation++
				if err := list.Reload(freshBatch(generation, cfg.ReloadEvery)); err != nil {
					logger.Error("reload failed", "error", err.Error())
					return
				}

				continue
			}

			if err := list.Add("item-" + uuid.New().String()); err != nil {
				logger.Error("add failed", "error", err.Error())
				return
			}
		}
	}
}

// runReader periodically drains an iterator to prove snapshots stay
// consistent while the writer keeps mutating.
func runReader(
	ctx context.Context,
	logger *slog.Logger,
	list *syncengine.ObservableList[string],
	readerNum int,
	interval time.Duration,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			it, err := list.Iterator()
			if err != nil {
				logger.Error("reader failed to create iterator", "reader", readerNum, "error", err.Error())
				return
			}

			seen := 0
			for it.Next() {
				seen++
			}

			if iterErr := it.Err(); iterErr != nil {
				logger.Warn("reader iteration aborted", "reader", readerNum, "error", iterErr.Error())
			} else {
				logger.Debug("reader finished a pass", "reader", readerNum, "items_seen", seen)
			}

			_ = it.Close() // makes no sense to handle this
		}
	}
}

func freshBatch(generation int, size int) []string {
	items := make([]string, 0, size)
	for i := 0; i < size; i++ {
		items = append(items, "gen-"+strconv.Itoa(generation)+"-item-"+strconv.Itoa(i))
	}

	return items
}

func parseFlags() Config {
	var (
		mutationIntervalMS = flag.Int("mutation-interval-ms", defaultMutationIntervalMS, "Milliseconds between mutations")
		reloadEvery        = flag.Int("reload-every", defaultReloadEvery, "Swap the whole contents every N mutations")
		readers            = flag.Int("readers", defaultReaders, "Number of concurrent reader goroutines")
		verbose            = flag.Bool("verbose", false, "Enable debug logging")
	)

	flag.Parse()

	if *mutationIntervalMS <= 0 {
		log.Fatalf("Invalid mutation interval: %d", *mutationIntervalMS)
	}
	if *reloadEvery <= 0 {
		log.Fatalf("Invalid reload-every value: %d", *reloadEvery)
	}
	if *readers <= 0 {
		log.Fatalf("Invalid readers value: %d", *readers)
	}

	return Config{
		MutationInterval: time.Duration(*mutationIntervalMS) * time.Millisecond,
		ReloadEvery:      *reloadEvery,
		Readers:          *readers,
		Verbose:          *verbose,
	}
}
