package sync

import (
	"testing"

	"github.com/mapacultural/eventos-sync/internal/model"
)

func rec(extID int64) Record {
	return Record{Evento: model.Event{ExternalID: extID, Nome: "x"}}
}

func TestPlanPartitions(t *testing.T) {
	records := []Record{rec(1), rec(2), rec(3), rec(4)}
	snapshot := map[int64]int64{2: 20, 4: 40}

	toInsert, toUpdate := Plan(records, snapshot)

	if len(toInsert) != 2 || toInsert[0].Evento.ExternalID != 1 || toInsert[1].Evento.ExternalID != 3 {
		t.Errorf("toInsert = %v", toInsert)
	}
	if len(toUpdate) != 2 {
		t.Fatalf("len(toUpdate) = %d, want 2", len(toUpdate))
	}
	if toUpdate[0].LocalID != 20 || toUpdate[1].LocalID != 40 {
		t.Errorf("LocalIDs = %d, %d, want 20, 40", toUpdate[0].LocalID, toUpdate[1].LocalID)
	}
}

func TestPlanEmptySnapshot(t *testing.T) {
	toInsert, toUpdate := Plan([]Record{rec(1), rec(2)}, map[int64]int64{})
	if len(toInsert) != 2 || len(toUpdate) != 0 {
		t.Errorf("insert=%d update=%d, want 2/0", len(toInsert), len(toUpdate))
	}
}

func TestPlanNoRecords(t *testing.T) {
	toInsert, toUpdate := Plan(nil, map[int64]int64{1: 10})
	if len(toInsert) != 0 || len(toUpdate) != 0 {
		t.Error("no records should produce empty plans")
	}
}
