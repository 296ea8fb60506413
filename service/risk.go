package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"polycopy/model"
	"polycopy/reference"
	"polycopy/utils"
)

// High-exposure warning threshold as a share of the daily budget.
const exposureWarningRatio = 0.8

// ServiceRisk periodically checks total exposure and account balance.
// Warnings are advisory; nothing here halts trading.
type ServiceRisk struct {
	mtx      sync.Mutex
	ctx      context.Context
	copy     *ServiceCopy
	gateway  reference.Gateway
	notifier reference.Notifier
	settings model.Settings
	finish   chan bool
	status   Status
}

func NewServiceRisk(ctx context.Context, copySvc *ServiceCopy, gateway reference.Gateway, settings model.Settings) *ServiceRisk {
	return &ServiceRisk{
		ctx:      ctx,
		copy:     copySvc,
		gateway:  gateway,
		settings: settings,
		finish:   make(chan bool),
	}
}

func (s *ServiceRisk) SetNotifier(notifier reference.Notifier) {
	s.notifier = notifier
}

func (s *ServiceRisk) checkRisk() {
	exposure, err := s.copy.TotalExposure()
	if err != nil {
		utils.Log.Errorf("[RISK] exposure query failed: %v", err)
		return
	}
	if exposure > s.settings.MaxDailyBudget*exposureWarningRatio {
		s.warn("[RISK] high exposure detected: $%.2f", exposure)
	}

	balance, err := s.gateway.AvailableBalance(s.ctx)
	if err != nil {
		utils.Log.Errorf("[RISK] balance query failed: %v", err)
		return
	}
	if balance < s.settings.MinAccountBalance {
		s.warn("[RISK] low balance: $%.2f", balance)
	}
}

func (s *ServiceRisk) warn(format string, args ...interface{}) {
	utils.Log.Warnf(format, args...)
	if s.notifier != nil {
		s.notifier.Notify(fmt.Sprintf(format, args...))
	}
}

func (s *ServiceRisk) Status() Status {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.status
}

func (s *ServiceRisk) Start() {
	s.mtx.Lock()
	if s.status == StatusRunning {
		s.mtx.Unlock()
		return
	}
	s.status = StatusRunning
	s.mtx.Unlock()

	go func() {
		ticker := time.NewTicker(s.settings.RiskCheckInterval)
		for {
			select {
			case <-ticker.C:
				s.checkRisk()
			case <-s.finish:
				ticker.Stop()
				return
			}
		}
	}()
	utils.Log.Info("Risk monitor started.")
}

func (s *ServiceRisk) Stop() {
	s.mtx.Lock()
	if s.status != StatusRunning {
		s.mtx.Unlock()
		return
	}
	s.status = StatusStopped
	s.mtx.Unlock()

	s.finish <- true
	utils.Log.Info("Risk monitor stopped.")
}
