package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Status is a snapshot of dependency health.
type Status struct {
	Database  bool      `json:"database"`
	APIKey    bool      `json:"api_key"`
	LastCheck time.Time `json:"last_check"`
}

// Monitor periodically probes the database and reports combined health.
// API-key presence is fixed at startup; the database is re-checked on
// every tick.
type Monitor struct {
	db        *gorm.DB
	apiKeySet bool

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(db *gorm.DB, apiKeySet bool, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		db:        db,
		apiKeySet: apiKeySet,
		interval:  interval,
		stopCh:    make(chan struct{}),
		logger:    logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

func (m *Monitor) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Database && m.status.APIKey
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	status := Status{
		Database:  m.checkDatabase(),
		APIKey:    m.apiKeySet,
		LastCheck: time.Now(),
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()

	if !status.Database {
		m.logger.Warn("database health check failed")
	}
}

func (m *Monitor) checkDatabase() bool {
	if m.db == nil {
		return false
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx) == nil
}
