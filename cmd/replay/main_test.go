package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"genesis.ai/internal/persistence/indexdb"
	persistlog "genesis.ai/internal/persistence/log"
	"genesis.ai/internal/persistence/snapshot"
	"genesis.ai/internal/sim/world"
)

func writeLog(t *testing.T, worldDir string, entries ...world.TickLogEntry) {
	t.Helper()
	l := persistlog.NewTickLogger(worldDir)
	for _, e := range entries {
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

var sampleEntries = []world.TickLogEntry{
	{
		Tick: 0, Population: 2,
		Decisions: []world.RecordedDecision{
			{AgentID: 1, Action: "eat", Trigger: "decide"},
			{AgentID: 2, Action: "gather_wood", Trigger: "decide"},
		},
	},
	{
		Tick: 1, Population: 1,
		Outcomes: []world.RecordedOutcome{{AgentID: 1, Action: "eat", Status: "completed"}},
		Deaths:   []world.RecordedDeath{{AgentID: 2, Cause: "starvation", Pos: [2]int{4, 1}}},
	},
	{
		Tick: 2, Population: 1,
		Decisions: []world.RecordedDecision{{AgentID: 1, Action: "eat", Trigger: "decide"}},
	},
}

func TestSummarizeEventsCountsPerAgent(t *testing.T) {
	worldDir := t.TempDir()
	writeLog(t, worldDir, sampleEntries...)

	rep, err := summarizeEvents(persistlog.EventsDir(worldDir), 0, 0)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if rep.Ticks != 3 || rep.LastTick != 2 || rep.Population != 1 || len(rep.Deaths) != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if got := rep.Agents[1].Decisions["eat"]; got != 2 {
		t.Fatalf("agent 1 eat decisions=%d", got)
	}
	if got := rep.Agents[1].Outcomes["completed"]; got != 1 {
		t.Fatalf("agent 1 completed outcomes=%d", got)
	}

	var buf bytes.Buffer
	rep.write(&buf)
	out := buf.String()
	for _, want := range []string{"agent 1: eat=2 | completed=1", "agent 2: gather_wood=1 |", "death tick=1 agent=2 cause=starvation pos=4,1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestSummarizeEventsTickRange(t *testing.T) {
	worldDir := t.TempDir()
	writeLog(t, worldDir, sampleEntries...)

	rep, err := summarizeEvents(persistlog.EventsDir(worldDir), 1, 1)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if rep.Ticks != 1 || rep.FirstTick != 1 || len(rep.Agents[1].Decisions) != 0 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if _, err := summarizeEvents(persistlog.EventsDir(worldDir), 10, 0); err == nil {
		t.Fatalf("an empty range is an error")
	}
}

func TestPrintSnapshotSummary(t *testing.T) {
	snap := snapshot.WorldSnapshotV1{
		Header:      snapshot.Header{Version: snapshot.Version, WorldID: "w1", RunID: "r1", Tick: 900},
		Width:       4,
		Height:      3,
		Seed:        5,
		Nodes:       []snapshot.NodeV1{{Type: "Food", Quantity: 3}, {Type: "Food", Quantity: 2}, {Type: "Wood", Quantity: 8}},
		NextAgentID: 21,
		Tick:        900,
	}
	var buf bytes.Buffer
	printSnapshot(&buf, snap)
	out := buf.String()
	for _, want := range []string{"world=w1", "tick=900", "size=4x3", "nodes=3", "next_agent_id=21", "Food       nodes=2 units=5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintIndexDeaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.sqlite")
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, e := range sampleEntries {
		_ = idx.WriteTick(e)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := idx.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	_ = idx.Close()

	var buf bytes.Buffer
	if err := printIndexDeaths(&buf, path); err != nil {
		t.Fatalf("printIndexDeaths: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "index deaths=1") || !strings.Contains(out, "agent=2 cause=starvation pos=4,1 decisions=1") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
