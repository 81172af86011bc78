package snapshot

import (
	"errors"
	"reflect"
	"testing"
)

func sample(tick uint64) WorldSnapshotV1 {
	return WorldSnapshotV1{
		Header:  Header{WorldID: "genesis_1", RunID: "run-1", Tick: tick, CatalogsDigest: "abc"},
		Width:   3,
		Height:  2,
		Seed:    7,
		Terrain: []uint8{0, 1, 0, 2, 0, 0},
		Nodes: []NodeV1{
			{Type: "Food", X: 0, Y: 0, Quantity: 3, MaxQuantity: 5, RegenRate: 0.01},
			{Type: "Wood", X: 2, Y: 1, Quantity: 8, MaxQuantity: 8, RegenRate: 0.002},
		},
		Clock:       ClockV1{Elapsed: 1234.5, DayLength: 600, Day: 2},
		NextAgentID: 6,
		Tick:        tick,
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := sample(900)
	path := Path(dir, want.Tick)
	if err := WriteSnapshot(path, want); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	want.Header.Version = Version
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h != want.Header {
		t.Fatalf("header mismatch: %+v", h)
	}
}

func TestLatestPicksHighestTick(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := Latest(dir); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot for an empty dir, got %v", err)
	}
	for _, tick := range []uint64{900, 10800, 1800} {
		if err := WriteSnapshot(Path(dir, tick), sample(tick)); err != nil {
			t.Fatal(err)
		}
	}
	path, tick, err := Latest(dir)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if tick != 10800 || path != Path(dir, 10800) {
		t.Fatalf("expected tick 10800, got %d at %s", tick, path)
	}
}
