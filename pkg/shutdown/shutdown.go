// pkg/shutdown/shutdown.go
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/powledger/powledger/pkg/logger"
)

// Manager handles graceful shutdown of the miner: it cancels its context on
// the first OS signal, parent cancellation or explicit Shutdown call, then
// runs the registered callbacks.
type Manager struct {
	ctx       context.Context
	cancel    context.CancelFunc
	logger    logger.Logger
	wg        sync.WaitGroup
	signals   []os.Signal
	once      sync.Once
	callbacks []func()
	mu        sync.Mutex
}

// NewManager creates a new Manager.
// It accepts a parent context, a logger, and optional OS signals to listen for.
// SIGINT and SIGTERM are used when no signals are given.
func NewManager(ctx context.Context, logger logger.Logger, signals ...os.Signal) *Manager {
	ctx, cancel := context.WithCancel(ctx)
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	return &Manager{
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
		signals: signals,
	}
}

// Context returns the context cancelled when shutdown begins.
func (sm *Manager) Context() context.Context {
	return sm.ctx
}

// AddShutdownCallback registers a callback function to be called during shutdown.
// Callbacks run in reverse registration order.
func (sm *Manager) AddShutdownCallback(callback func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.callbacks = append(sm.callbacks, callback)
}

// Start begins listening for OS signals to initiate shutdown.
func (sm *Manager) Start() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, sm.signals...)

	sm.wg.Add(1)
	go sm.handleSignals(sigChan)
}

// Shutdown initiates shutdown from within the process.
func (sm *Manager) Shutdown() {
	sm.cancel()
}

// handleSignals listens for OS signals and initiates shutdown when received.
func (sm *Manager) handleSignals(sigChan chan os.Signal) {
	defer sm.wg.Done()
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		sm.logger.Info("Received shutdown signal", "signal", sig.String())
	case <-sm.ctx.Done():
		sm.logger.Info("Context canceled, shutting down")
	}
	sm.shutdown()
}

// shutdown performs the actual shutdown sequence, ensuring it's only executed once.
func (sm *Manager) shutdown() {
	sm.once.Do(func() {
		sm.cancel()
		sm.mu.Lock()
		defer sm.mu.Unlock()
		for i := len(sm.callbacks) - 1; i >= 0; i-- {
			sm.callbacks[i]()
		}
	})
}

// Wait blocks until the shutdown sequence is complete.
func (sm *Manager) Wait() {
	sm.wg.Wait()
}
