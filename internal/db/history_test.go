package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/squareland/pinger/internal/ping"
)

var errTest = errors.New("connection refused")

func openTestDB(t *testing.T) *HistoryDatabase {
	t.Helper()

	hdb, err := NewHistoryDatabase(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewHistoryDatabase() error = %v", err)
	}
	t.Cleanup(func() { hdb.Close() })
	return hdb
}

func TestRecordAndRecent(t *testing.T) {
	hdb := openTestDB(t)

	status := &ping.Status{
		Dirty:   true,
		Version: &ping.Version{Protocol: 127, Server: "1.8"},
		MOTD:    "A Minecraft Server",
		Online:  ping.PlayerCount{Current: 5, Max: 20},
	}
	if err := hdb.RecordSuccess("lobby", "127.0.0.1:25565", status, 42*time.Millisecond); err != nil {
		t.Fatalf("RecordSuccess() error = %v", err)
	}
	if err := hdb.RecordFailure("lobby", "127.0.0.1:25565", errTest); err != nil {
		t.Fatalf("RecordFailure() error = %v", err)
	}

	samples, err := hdb.Recent("lobby", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("Recent() returned %d samples, want 2", len(samples))
	}

	var online, offline *Sample
	for i := range samples {
		if samples[i].Online {
			online = &samples[i]
		} else {
			offline = &samples[i]
		}
	}
	if online == nil || offline == nil {
		t.Fatalf("expected one online and one offline sample, got %+v", samples)
	}

	if online.MOTD != "A Minecraft Server" || online.Players != 5 || online.MaxPlayers != 20 {
		t.Errorf("online sample = %+v", online)
	}
	if online.Protocol != 127 || online.ServerVersion != "1.8" {
		t.Errorf("online version columns = %d %q", online.Protocol, online.ServerVersion)
	}
	if online.RTTMillis != 42 {
		t.Errorf("RTTMillis = %d, want 42", online.RTTMillis)
	}
	if offline.Error != errTest.Error() {
		t.Errorf("offline error = %q, want %q", offline.Error, errTest.Error())
	}
}

func TestRecentUnknownTarget(t *testing.T) {
	hdb := openTestDB(t)

	samples, err := hdb.Recent("nope", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("Recent() = %+v, want empty", samples)
	}
}

func TestPrune(t *testing.T) {
	hdb := openTestDB(t)

	status := &ping.Status{Dirty: true, MOTD: "motd", Online: ping.PlayerCount{Current: 1, Max: 2}}
	if err := hdb.RecordSuccess("lobby", "127.0.0.1:25565", status, time.Millisecond); err != nil {
		t.Fatalf("RecordSuccess() error = %v", err)
	}

	// A future cutoff removes everything, a past cutoff removes nothing.
	removed, err := hdb.Prune(-time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Prune() removed %d rows, want 1", removed)
	}

	removed, err = hdb.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 0 {
		t.Errorf("Prune() removed %d rows, want 0", removed)
	}
}
