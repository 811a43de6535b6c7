package db

import (
	"github.com/fieldrover/scanlink/internal/scan"
)

// RevolutionArchiver stores a per-revolution summary row for the session it
// was created with. It plugs into the capture loop as a revolution hook.
type RevolutionArchiver struct {
	db        *DB
	sessionID string
}

func NewRevolutionArchiver(db *DB, sessionID string) *RevolutionArchiver {
	return &RevolutionArchiver{db: db, sessionID: sessionID}
}

func (a *RevolutionArchiver) Name() string { return "archive" }

func (a *RevolutionArchiver) OnRevolution(rev scan.Revolution, frame []byte) error {
	stats := scan.Summarize(rev)
	return a.db.RecordRevolution(&RevolutionRecord{
		SessionID:      a.sessionID,
		Seq:            rev.Seq,
		CapturedAtNs:   rev.CapturedAt.UnixNano(),
		SampleCount:    stats.SampleCount,
		BucketsUpdated: stats.BucketsUpdated,
		MinDistance:    stats.MinDistance,
		MaxDistance:    stats.MaxDistance,
		MeanDistance:   stats.MeanDistance,
	})
}
