package stats

import (
	"sync"
	"testing"
)

func TestRecordGift_Totals(t *testing.T) {
	s := NewSession()

	s.RecordGift("Rose", 1, 5, "alice")
	s.RecordGift("Cow", 10, 2, "bob")
	s.RecordGift("Rose", 1, 1, "alice")

	snap := s.Snapshot()

	if snap.TotalUnits != 8 {
		t.Errorf("TotalUnits = %d, want 8", snap.TotalUnits)
	}
	if snap.TotalScore != 26 {
		t.Errorf("TotalScore = %d, want 26", snap.TotalScore)
	}
	if len(snap.UniqueActors) != 2 {
		t.Errorf("UniqueActors count = %d, want 2", len(snap.UniqueActors))
	}
	if snap.ScoreByActor["alice"] != 6 {
		t.Errorf("ScoreByActor[alice] = %d, want 6", snap.ScoreByActor["alice"])
	}
	if snap.ScoreByActor["bob"] != 20 {
		t.Errorf("ScoreByActor[bob] = %d, want 20", snap.ScoreByActor["bob"])
	}
	if snap.UnitsByCategory["Rose"] != 6 {
		t.Errorf("UnitsByCategory[Rose] = %d, want 6", snap.UnitsByCategory["Rose"])
	}
}

func TestRecordGift_ZeroMagnitudeDefaultsToOne(t *testing.T) {
	s := NewSession()
	s.RecordGift("Rose", 3, 0, "alice")

	snap := s.Snapshot()
	if snap.TotalUnits != 1 {
		t.Errorf("TotalUnits = %d, want 1", snap.TotalUnits)
	}
	if snap.TotalScore != 3 {
		t.Errorf("TotalScore = %d, want 3", snap.TotalScore)
	}
}

func TestRecordAttempt_Invariant(t *testing.T) {
	s := NewSession()

	s.RecordAttempt(true)
	s.RecordAttempt(false)
	s.RecordAttempt(true)

	snap := s.Snapshot()
	if snap.CommandsAttempted != 3 {
		t.Errorf("CommandsAttempted = %d, want 3", snap.CommandsAttempted)
	}
	if snap.CommandsSucceeded != 2 {
		t.Errorf("CommandsSucceeded = %d, want 2", snap.CommandsSucceeded)
	}
	if snap.CommandsAttempted < snap.CommandsSucceeded {
		t.Error("invariant violated: attempted < succeeded")
	}
}

func TestSnapshot_UnitsMatchCategorySum(t *testing.T) {
	s := NewSession()
	s.RecordGift("Rose", 1, 5, "alice")
	s.RecordGift("Cow", 10, 3, "bob")
	s.RecordGift("Lion", 500, 1, "carol")

	snap := s.Snapshot()
	sum := 0
	for _, units := range snap.UnitsByCategory {
		sum += units
	}
	if sum != snap.TotalUnits {
		t.Errorf("sum(UnitsByCategory) = %d, want TotalUnits = %d", sum, snap.TotalUnits)
	}
}

func TestSnapshot_Isolation(t *testing.T) {
	s := NewSession()
	s.RecordGift("Rose", 1, 1, "alice")

	snap := s.Snapshot()
	snap.ScoreByActor["alice"] = 9999
	snap.UnitsByCategory["Rose"] = 9999

	fresh := s.Snapshot()
	if fresh.ScoreByActor["alice"] != 1 {
		t.Errorf("snapshot mutation leaked into session: ScoreByActor[alice] = %d, want 1", fresh.ScoreByActor["alice"])
	}
	if fresh.UnitsByCategory["Rose"] != 1 {
		t.Errorf("snapshot mutation leaked into session: UnitsByCategory[Rose] = %d, want 1", fresh.UnitsByCategory["Rose"])
	}
}

func TestSession_ConcurrentRecording(t *testing.T) {
	s := NewSession()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.RecordGift("Rose", 1, 1, "alice")
				s.RecordAttempt(j%2 == 0)
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	if snap.TotalUnits != 1000 {
		t.Errorf("TotalUnits = %d, want 1000", snap.TotalUnits)
	}
	if snap.CommandsAttempted != 1000 {
		t.Errorf("CommandsAttempted = %d, want 1000", snap.CommandsAttempted)
	}
	if snap.CommandsSucceeded != 500 {
		t.Errorf("CommandsSucceeded = %d, want 500", snap.CommandsSucceeded)
	}
}
