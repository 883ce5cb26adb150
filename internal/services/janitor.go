package services

import (
	"context"
	"log"
	"time"
)

type sessionSweeper interface {
	Sweep(now time.Time) []string
}

// SessionJanitor periodically ends sessions that have gone idle.
type SessionJanitor struct {
	store    sessionSweeper
	tutor    *TutorService
	interval time.Duration
	stopChan chan struct{}
}

func NewSessionJanitor(store sessionSweeper, tutor *TutorService, interval time.Duration) *SessionJanitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionJanitor{
		store:    store,
		tutor:    tutor,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (j *SessionJanitor) Start() {
	go j.loop()
	log.Printf("Session janitor started (every %s)", j.interval)
}

func (j *SessionJanitor) Stop() {
	select {
	case <-j.stopChan:
		return
	default:
		close(j.stopChan)
	}
}

func (j *SessionJanitor) loop() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			return
		case <-ticker.C:
			j.sweep(context.Background(), time.Now().UTC())
		}
	}
}

func (j *SessionJanitor) sweep(ctx context.Context, now time.Time) int {
	removed := j.store.Sweep(now)
	for _, id := range removed {
		j.tutor.End(ctx, id)
	}
	if len(removed) > 0 {
		log.Printf("janitor: ended %d idle session(s)", len(removed))
	}
	return len(removed)
}
