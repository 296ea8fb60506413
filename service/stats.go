package service

import (
	"context"
	"sync"
	"time"

	"polycopy/model"
	"polycopy/reference"
	"polycopy/utils"
)

// ServiceStats keeps trader profiles fresh. Profiles are read-mostly
// reference data; the decision path never waits on a refresh.
type ServiceStats struct {
	mtx      sync.RWMutex
	ctx      context.Context
	copy     *ServiceCopy
	profiler reference.Profiler
	profiles map[string]model.TraderProfile
	interval time.Duration
	finish   chan bool
	status   Status
}

func NewServiceStats(ctx context.Context, copySvc *ServiceCopy, profiler reference.Profiler, settings model.Settings) *ServiceStats {
	return &ServiceStats{
		ctx:      ctx,
		copy:     copySvc,
		profiler: profiler,
		profiles: make(map[string]model.TraderProfile),
		interval: settings.StatsInterval,
		finish:   make(chan bool),
	}
}

func (s *ServiceStats) refreshProfiles() {
	if s.profiler == nil {
		return
	}

	for _, trader := range s.copy.FollowedTraders() {
		profile, err := s.profiler.Profile(s.ctx, trader)
		if err != nil {
			utils.Log.Errorf("[STATS] profile refresh failed for %s: %v", trader, err)
			continue
		}

		s.mtx.Lock()
		s.profiles[trader] = profile
		s.mtx.Unlock()
		utils.Log.Debugf("[STATS] refreshed profile for %s (win rate %.0f%%)", trader, profile.WinRate*100)
	}
}

func (s *ServiceStats) Profile(trader string) (model.TraderProfile, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	profile, ok := s.profiles[trader]
	return profile, ok
}

func (s *ServiceStats) Profiles() map[string]model.TraderProfile {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	profiles := make(map[string]model.TraderProfile, len(s.profiles))
	for trader, profile := range s.profiles {
		profiles[trader] = profile
	}
	return profiles
}

func (s *ServiceStats) Status() Status {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.status
}

func (s *ServiceStats) Start() {
	s.mtx.Lock()
	if s.status == StatusRunning {
		s.mtx.Unlock()
		return
	}
	s.status = StatusRunning
	s.mtx.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		for {
			select {
			case <-ticker.C:
				s.refreshProfiles()
			case <-s.finish:
				ticker.Stop()
				return
			}
		}
	}()
	utils.Log.Info("Stats service started.")
}

func (s *ServiceStats) Stop() {
	s.mtx.Lock()
	if s.status != StatusRunning {
		s.mtx.Unlock()
		return
	}
	s.status = StatusStopped
	s.mtx.Unlock()

	s.finish <- true
	utils.Log.Info("Stats service stopped.")
}
