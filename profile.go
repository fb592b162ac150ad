package main

import (
	"log"
	"sync"
	"time"
)

const (
	profileQueueSize  = 1024
	profileBatchMax   = 50
	profileFlushEvery = 5 * time.Second
)

// MatchResult is the outcome of one finished run, folded into a profile
type MatchResult struct {
	Score int
	Kills int
	Coins int
	Died  bool
	Rank  int // arena placement, 0 outside arena
	Arena bool
}

type profileJob struct {
	accountID int64
	res       MatchResult
}

// ProfileStore persists match results off the game loop. Results are
// enqueued non-blocking and written in batches by a single background
// goroutine; after each write the owner is notified with fresh profile data.
type ProfileStore struct {
	db     *DB
	jobs   chan profileJob
	stop   chan struct{}
	wg     sync.WaitGroup
	notify func(accountID int64, msg UserDataUpdateMsg)
}

// NewProfileStore creates and starts the background writer. notify may be
// nil; it is invoked off the game loop after each persisted result.
func NewProfileStore(db *DB, notify func(int64, UserDataUpdateMsg)) *ProfileStore {
	ps := &ProfileStore{
		db:     db,
		jobs:   make(chan profileJob, profileQueueSize),
		stop:   make(chan struct{}),
		notify: notify,
	}
	ps.wg.Add(1)
	go ps.writer()
	return ps
}

// RecordResult enqueues a result for async persistence. Never blocks; a full
// queue drops the result rather than stalling a room tick. Results arriving
// after Stop are dropped.
func (ps *ProfileStore) RecordResult(accountID int64, res MatchResult) {
	select {
	case <-ps.stop:
		return
	default:
	}
	select {
	case ps.jobs <- profileJob{accountID: accountID, res: res}:
	default:
		log.Printf("profile queue full, dropping result for account %d", accountID)
	}
}

// Load reads a profile synchronously (join and profile requests)
func (ps *ProfileStore) Load(accountID int64) (*ProfileRow, error) {
	return ps.db.GetProfile(accountID)
}

// Stop flushes pending results and halts the writer
func (ps *ProfileStore) Stop() {
	close(ps.stop)
	ps.wg.Wait()
}

func (ps *ProfileStore) writer() {
	defer ps.wg.Done()

	batch := make([]profileJob, 0, profileBatchMax)
	ticker := time.NewTicker(profileFlushEvery)
	defer ticker.Stop()

	for {
		select {
		case job := <-ps.jobs:
			batch = append(batch, job)
			if len(batch) >= profileBatchMax {
				ps.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				ps.flush(batch)
				batch = batch[:0]
			}
		case <-ps.stop:
			// The jobs channel is never closed; late senders race the stop
			// signal, so drain what is buffered and leave it open
			for {
				select {
				case job := <-ps.jobs:
					batch = append(batch, job)
				default:
					if len(batch) > 0 {
						ps.flush(batch)
					}
					return
				}
			}
		}
	}
}

func (ps *ProfileStore) flush(batch []profileJob) {
	touched := make(map[int64]bool, len(batch))
	for _, job := range batch {
		if err := ps.db.ApplyResult(job.accountID, job.res); err != nil {
			log.Printf("profile: apply result error for account %d: %v", job.accountID, err)
			continue
		}
		touched[job.accountID] = true
	}
	if ps.notify == nil {
		return
	}
	for accountID := range touched {
		row, err := ps.db.GetProfile(accountID)
		if err != nil || row == nil {
			continue
		}
		ps.notify(accountID, profileUpdateMsg(row))
	}
}

// profileUpdateMsg converts a profile row into the client delta message
func profileUpdateMsg(row *ProfileRow) UserDataUpdateMsg {
	return UserDataUpdateMsg{
		Coins:       row.Coins,
		HighScore:   row.HighScore,
		TotalKills:  row.TotalKills,
		TotalDeaths: row.TotalDeaths,
		ArenaWins:   row.ArenaWins,
		ArenaTop2:   row.ArenaTop2,
		ArenaTop3:   row.ArenaTop3,
		Equipped:    row.EquippedSkin,
		OwnedSkins:  row.OwnedSkins,
	}
}
