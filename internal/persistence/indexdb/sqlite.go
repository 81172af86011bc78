package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"genesis.ai/internal/persistence/snapshot"
	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tuning"
	"genesis.ai/internal/sim/world"
)

const schemaVersion = "1"

// SQLiteIndex is a queryable copy of the tick log. Writes are queued and
// applied by a single goroutine; when the queue is full they are dropped.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick     atomic.Uint64
	dropSnapshot atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqSnapshot
	reqFlush
)

type req struct {
	kind reqKind

	tick     world.TickLogEntry
	snapshot snapshotRow
	done     chan struct{}
}

type snapshotRow struct {
	Tick        uint64
	Path        string
	Seed        int64
	Width       int
	Height      int
	Nodes       int
	NextAgentID uint64
}

// Stats reports queue pressure for /metrics.
type Stats struct {
	QueueDepth        int
	QueueCapacity     int
	DropTickTotal     uint64
	DropSnapshotTotal uint64
}

// DeathRow is one indexed death.
type DeathRow struct {
	Tick    uint64
	AgentID uint64
	Cause   string
	X, Y    int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	return openSQLite(path, 65536)
}

func openSQLite(path string, queue int) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, queue),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			sim_time REAL NOT NULL,
			population INTEGER NOT NULL,
			decisions INTEGER NOT NULL,
			outcomes INTEGER NOT NULL,
			deaths INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS decisions (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			agent_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			utility REAL NOT NULL,
			trigger_kind TEXT NOT NULL,
			PRIMARY KEY(tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_agent ON decisions(agent_id, tick);`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			agent_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			status TEXT NOT NULL,
			reason TEXT NOT NULL,
			PRIMARY KEY(tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_agent ON outcomes(agent_id, tick);`,
		`CREATE TABLE IF NOT EXISTS deaths (
			tick INTEGER NOT NULL,
			agent_id INTEGER NOT NULL,
			cause TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			PRIMARY KEY(tick, agent_id)
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			nodes INTEGER NOT NULL,
			next_agent_id INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
		// JSONL logs remain the source of truth.
		s.dropTick.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.WorldSnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Tick:        snap.Header.Tick,
		Path:        path,
		Seed:        snap.Seed,
		Width:       snap.Width,
		Height:      snap.Height,
		Nodes:       len(snap.Nodes),
		NextAgentID: snap.NextAgentID,
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
		s.dropSnapshot.Add(1)
	}
}

// Flush blocks until every write queued before it is committed.
func (s *SQLiteIndex) Flush(ctx context.Context) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{kind: reqFlush, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropTickTotal:     s.dropTick.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
	}
}

// RecordRun stores the world identity and the catalogs and tuning the run
// applies. Catalog files are stored verbatim; tuning as canonical JSON.
func (s *SQLiteIndex) RecordRun(worldID, runID string, seed int64, configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	read := func(name, file, digest string) {
		if configDir == "" {
			return
		}
		b, err := os.ReadFile(filepath.Join(configDir, file))
		if err != nil {
			return
		}
		rows = append(rows, kv{name: name, digest: digest, json: b})
	}
	read("resources", "resources.json", cats.Resources.Digest)
	read("recipes", "recipes.json", cats.Recipes.Digest)
	read("tools", "tools.json", cats.Tools.Digest)
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	meta := map[string]string{
		"schema_version":  schemaVersion,
		"world_id":        worldID,
		"run_id":          runID,
		"seed":            fmt.Sprint(seed),
		"catalogs_digest": cats.Digest(),
		"started_at":      now,
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`, k, v); err != nil {
			return err
		}
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Meta returns one meta value, or "" when unset.
func (s *SQLiteIndex) Meta(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key=?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

// DecisionCounts returns how often the agent chose each action.
func (s *SQLiteIndex) DecisionCounts(agentID uint64) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT action, COUNT(*) FROM decisions WHERE agent_id=? GROUP BY action`, int64(agentID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		out[action] = n
	}
	return out, rows.Err()
}

// Deaths lists every indexed death in tick order.
func (s *SQLiteIndex) Deaths() ([]DeathRow, error) {
	rows, err := s.db.Query(`SELECT tick, agent_id, cause, x, y FROM deaths ORDER BY tick, agent_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DeathRow
	for rows.Next() {
		var d DeathRow
		var tick, id int64
		if err := rows.Scan(&tick, &id, &d.Cause, &d.X, &d.Y); err != nil {
			return nil, err
		}
		d.Tick, d.AgentID = uint64(tick), uint64(id)
		out = append(out, d)
	}
	return out, rows.Err()
}

var writeStmts = map[string]string{
	"tick":     `INSERT OR REPLACE INTO ticks(tick,run_id,sim_time,population,decisions,outcomes,deaths,raw_json) VALUES(?,?,?,?,?,?,?,?)`,
	"decision": `INSERT OR REPLACE INTO decisions(tick,seq,agent_id,action,utility,trigger_kind) VALUES(?,?,?,?,?,?)`,
	"outcome":  `INSERT OR REPLACE INTO outcomes(tick,seq,agent_id,action,status,reason) VALUES(?,?,?,?,?,?)`,
	"death":    `INSERT OR REPLACE INTO deaths(tick,agent_id,cause,x,y) VALUES(?,?,?,?,?)`,
	"snapshot": `INSERT OR REPLACE INTO snapshots(tick,path,seed,width,height,nodes,next_agent_id) VALUES(?,?,?,?,?,?,?)`,
}

// batch groups queued writes into one transaction, committed after
// maxOps statements or maxWait, whichever comes first. A failed statement
// rolls back the whole open batch.
type batch struct {
	db      *sql.DB
	stmts   map[string]*sql.Stmt
	maxOps  int
	maxWait time.Duration

	tx      *sql.Tx
	ops     int
	started time.Time
}

func newBatch(db *sql.DB) *batch {
	b := &batch{db: db, stmts: map[string]*sql.Stmt{}, maxOps: 2000, maxWait: 2 * time.Second}
	for name, q := range writeStmts {
		if st, err := db.Prepare(q); err == nil {
			b.stmts[name] = st
		}
	}
	return b
}

func (b *batch) begin() bool {
	if b.tx != nil {
		return true
	}
	tx, err := b.db.BeginTx(context.Background(), nil)
	if err != nil {
		time.Sleep(50 * time.Millisecond)
		return false
	}
	b.tx, b.ops, b.started = tx, 0, time.Now()
	return true
}

func (b *batch) exec(name string, args ...any) bool {
	st := b.stmts[name]
	if st == nil || b.tx == nil {
		return false
	}
	if _, err := b.tx.Stmt(st).Exec(args...); err != nil {
		_ = b.tx.Rollback()
		b.tx = nil
		return false
	}
	b.ops++
	return true
}

func (b *batch) commit() {
	if b.tx == nil {
		return
	}
	_ = b.tx.Commit()
	b.tx = nil
}

func (b *batch) commitIfDue() {
	if b.tx != nil && (b.ops >= b.maxOps || time.Since(b.started) >= b.maxWait) {
		b.commit()
	}
}

func (b *batch) close() {
	b.commit()
	for _, st := range b.stmts {
		_ = st.Close()
	}
}

func (b *batch) writeTick(e world.TickLogEntry) {
	t := int64(e.Tick)
	raw, _ := json.Marshal(e)
	if !b.exec("tick", t, e.RunID, e.SimTime, e.Population, len(e.Decisions), len(e.Outcomes), len(e.Deaths), string(raw)) {
		return
	}
	for i, d := range e.Decisions {
		if !b.exec("decision", t, i, int64(d.AgentID), d.Action, d.Utility, d.Trigger) {
			return
		}
	}
	for i, o := range e.Outcomes {
		if !b.exec("outcome", t, i, int64(o.AgentID), o.Action, o.Status, o.Reason) {
			return
		}
	}
	for _, d := range e.Deaths {
		if !b.exec("death", t, int64(d.AgentID), d.Cause, d.Pos[0], d.Pos[1]) {
			return
		}
	}
}

func (s *SQLiteIndex) loop() {
	b := newBatch(s.db)
	defer b.close()

	for r := range s.ch {
		if r.kind == reqFlush {
			b.commit()
			close(r.done)
			continue
		}
		if !b.begin() {
			continue
		}
		switch r.kind {
		case reqTick:
			b.writeTick(r.tick)
		case reqSnapshot:
			sn := r.snapshot
			b.exec("snapshot", int64(sn.Tick), sn.Path, sn.Seed, sn.Width, sn.Height, sn.Nodes, int64(sn.NextAgentID))
		}
		b.commitIfDue()
	}
}
