package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"genesis.ai/internal/persistence/indexdb"
	persistlog "genesis.ai/internal/persistence/log"
	"genesis.ai/internal/persistence/snapshot"
	"genesis.ai/internal/sim/world"
)

func main() {
	var (
		snapPath  = flag.String("snapshot", "", "path to .snap.zst (optional)")
		eventsDir = flag.String("events", "", "events dir containing events-*.jsonl.zst (optional)")
		indexPath = flag.String("index", "", "world.sqlite read index to query deaths from (optional)")
		fromTick  = flag.Uint64("from_tick", 0, "first tick to count (inclusive, optional)")
		toTick    = flag.Uint64("to_tick", 0, "last tick to count (inclusive, optional)")
	)
	flag.Parse()

	if *snapPath == "" && *eventsDir == "" && *indexPath == "" {
		fmt.Fprintln(os.Stderr, "need -snapshot, -events or -index")
		os.Exit(2)
	}

	if *snapPath != "" {
		snap, err := snapshot.ReadSnapshot(*snapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		printSnapshot(os.Stdout, snap)
	}

	if *eventsDir != "" {
		rep, err := summarizeEvents(*eventsDir, *fromTick, *toTick)
		if err != nil {
			fmt.Fprintln(os.Stderr, "events:", err)
			os.Exit(1)
		}
		rep.write(os.Stdout)
	}

	if *indexPath != "" {
		if err := printIndexDeaths(os.Stdout, *indexPath); err != nil {
			fmt.Fprintln(os.Stderr, "index:", err)
			os.Exit(1)
		}
	}
}

func printSnapshot(out io.Writer, snap snapshot.WorldSnapshotV1) {
	byType := map[string]int{}
	units := map[string]int{}
	for _, n := range snap.Nodes {
		byType[string(n.Type)]++
		units[string(n.Type)] += n.Quantity
	}
	fmt.Fprintf(out, "snapshot v%d world=%s run=%s tick=%d seed=%d size=%dx%d nodes=%d next_agent_id=%d day=%d elapsed=%.1f\n",
		snap.Header.Version, snap.Header.WorldID, snap.Header.RunID, snap.Header.Tick, snap.Seed,
		snap.Width, snap.Height, len(snap.Nodes), snap.NextAgentID, snap.Clock.Day, snap.Clock.Elapsed)
	for _, t := range sortedKeys(byType) {
		fmt.Fprintf(out, "  %-10s nodes=%d units=%d\n", t, byType[t], units[t])
	}
}

type agentCounts struct {
	Decisions map[string]int
	Outcomes  map[string]int // keyed by status
}

type eventsReport struct {
	Ticks      int
	FirstTick  uint64
	LastTick   uint64
	Population int
	Agents     map[uint64]*agentCounts
	Deaths     []world.RecordedDeath
	DeathTicks []uint64
}

func summarizeEvents(dir string, from, to uint64) (*eventsReport, error) {
	rep := &eventsReport{Agents: map[uint64]*agentCounts{}}
	agent := func(id uint64) *agentCounts {
		c := rep.Agents[id]
		if c == nil {
			c = &agentCounts{Decisions: map[string]int{}, Outcomes: map[string]int{}}
			rep.Agents[id] = c
		}
		return c
	}
	err := persistlog.ReadTicks(dir, func(e world.TickLogEntry) error {
		if e.Tick < from || (to != 0 && e.Tick > to) {
			return nil
		}
		if rep.Ticks == 0 {
			rep.FirstTick = e.Tick
		}
		rep.Ticks++
		rep.LastTick = e.Tick
		rep.Population = e.Population
		for _, d := range e.Decisions {
			agent(d.AgentID).Decisions[d.Action]++
		}
		for _, o := range e.Outcomes {
			agent(o.AgentID).Outcomes[o.Status]++
		}
		for _, d := range e.Deaths {
			rep.Deaths = append(rep.Deaths, d)
			rep.DeathTicks = append(rep.DeathTicks, e.Tick)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rep.Ticks == 0 {
		return nil, fmt.Errorf("no tick entries in %s", dir)
	}
	return rep, nil
}

func (r *eventsReport) write(out io.Writer) {
	fmt.Fprintf(out, "events ticks=%d range=%d..%d final_population=%d deaths=%d\n",
		r.Ticks, r.FirstTick, r.LastTick, r.Population, len(r.Deaths))
	ids := make([]uint64, 0, len(r.Agents))
	for id := range r.Agents {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		c := r.Agents[id]
		fmt.Fprintf(out, "agent %d:", id)
		for _, a := range sortedKeys(c.Decisions) {
			fmt.Fprintf(out, " %s=%d", a, c.Decisions[a])
		}
		fmt.Fprintf(out, " |")
		for _, s := range sortedKeys(c.Outcomes) {
			fmt.Fprintf(out, " %s=%d", s, c.Outcomes[s])
		}
		fmt.Fprintln(out)
	}
	for i, d := range r.Deaths {
		fmt.Fprintf(out, "death tick=%d agent=%d cause=%s pos=%d,%d\n", r.DeathTicks[i], d.AgentID, d.Cause, d.Pos[0], d.Pos[1])
	}
}

func printIndexDeaths(out io.Writer, path string) error {
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer idx.Close()
	deaths, err := idx.Deaths()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "index deaths=%d\n", len(deaths))
	for _, d := range deaths {
		counts, err := idx.DecisionCounts(d.AgentID)
		if err != nil {
			return err
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		fmt.Fprintf(out, "death tick=%d agent=%d cause=%s pos=%d,%d decisions=%d\n", d.Tick, d.AgentID, d.Cause, d.X, d.Y, total)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
