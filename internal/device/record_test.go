package device

import "testing"

func TestRecordPreservesFirstSetOrder(t *testing.T) {
	rec := NewRecord()
	rec.Set("temp", 12.3, "12.3 °C")
	rec.SetText("stationID", "KCASANFR70")
	rec.Set("temp", 13.1, "13.1 °C")

	fields := rec.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != "temp" || fields[1].Key != "stationID" {
		t.Fatalf("unexpected field order: %q, %q", fields[0].Key, fields[1].Key)
	}
	if fields[0].Display != "13.1 °C" {
		t.Fatalf("overwrite did not update display: %q", fields[0].Display)
	}
}

func TestRecordMergeKeepsExistingOrder(t *testing.T) {
	base := NewRecord()
	base.SetText("onOffState", "ok")
	base.Set("temp", 12.3, "12.3 °C")

	other := NewRecord()
	other.SetText("temp", "overridden")
	other.SetText("alertStatus", "false")

	base.Merge(other)

	fields := base.Fields()
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if fields[1].Key != "temp" || fields[1].Display != "overridden" {
		t.Fatalf("merged key lost its slot: %+v", fields[1])
	}
	if fields[2].Key != "alertStatus" {
		t.Fatalf("new key not appended last: %q", fields[2].Key)
	}
}

func TestPublishDerivesScalars(t *testing.T) {
	rec := NewRecord()
	rec.Set("currentObservationEpoch", "1756400100", "1756400100")
	rec.Set("temp", 16.3, "16.3 °C")
	rec.SetText("alertStatus", "true")
	rec.SetOnline(true, "16.3 °C")

	store := NewStateStore()
	store.Publish("dev1", rec)

	st, err := store.Get("dev1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.ObservationEpoch != 1756400100 {
		t.Fatalf("expected epoch 1756400100, got %d", st.ObservationEpoch)
	}
	if st.Temperature != 16.3 {
		t.Fatalf("expected temperature 16.3, got %v", st.Temperature)
	}
	if !st.AlertActive || !st.Online {
		t.Fatalf("expected alert active and online, got %+v", st)
	}
	if store.ObservationEpoch("dev1") != 1756400100 {
		t.Fatalf("epoch accessor disagrees with state")
	}
}

func TestMarkOfflineKeepsPriorFields(t *testing.T) {
	rec := NewRecord()
	rec.Set("temp", 16.3, "16.3 °C")
	rec.SetOnline(true, "16.3 °C")

	store := NewStateStore()
	store.Publish("dev1", rec)
	store.MarkOffline("dev1", "No comm")

	st, err := store.Get("dev1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Online {
		t.Fatalf("device still reported online")
	}
	f, ok := st.Record.Get("onOffState")
	if !ok || f.Display != "No comm" {
		t.Fatalf("offline display not applied: %+v", f)
	}
	if _, ok := st.Record.Get("temp"); !ok {
		t.Fatalf("prior field dropped on offline mark")
	}
}

func TestStateStoreUnknownDevice(t *testing.T) {
	store := NewStateStore()
	if _, err := store.Get("missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.ObservationEpoch("missing") != 0 {
		t.Fatalf("expected zero epoch for unknown device")
	}
}
