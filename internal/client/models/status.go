package models

import "fmt"

// SyncState is the discriminator of SyncStatus.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncSyncing SyncState = "syncing"
	SyncSynced  SyncState = "synced"
	SyncErrored SyncState = "error"
)

// SyncStatus is the aggregate state of the sync engine. Pending is set for
// Syncing, Failed and LastError for Error.
type SyncStatus struct {
	State     SyncState
	Pending   int
	Failed    int
	LastError string
}

func Idle() SyncStatus { return SyncStatus{State: SyncIdle} }

func Syncing(pending int) SyncStatus { return SyncStatus{State: SyncSyncing, Pending: pending} }

func Synced() SyncStatus { return SyncStatus{State: SyncSynced} }

func Errored(failed int, lastError string) SyncStatus {
	return SyncStatus{State: SyncErrored, Failed: failed, LastError: lastError}
}

func (s SyncStatus) String() string {
	switch s.State {
	case SyncSyncing:
		return fmt.Sprintf("syncing (%d pending)", s.Pending)
	case SyncErrored:
		return fmt.Sprintf("error (%d failed): %s", s.Failed, s.LastError)
	case "":
		return string(SyncIdle)
	default:
		return string(s.State)
	}
}

// SyncConflict is an advisory notice that local and remote state diverged.
type SyncConflict struct {
	EntityType EntityType
	EntityID   string
	Message    string
}
