package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

const fileSuffix = ".snap.zst"

var ErrNoSnapshot = errors.New("no snapshot found")

type Header struct {
	Version        int    `json:"version"`
	WorldID        string `json:"world_id"`
	RunID          string `json:"run_id"`
	Tick           uint64 `json:"tick"`
	CatalogsDigest string `json:"catalogs_digest"`
}

// WorldSnapshotV1 is the persisted world: terrain, nodes, clock and the agent
// id sequence. Agents themselves are not persisted.
type WorldSnapshotV1 struct {
	Header Header `json:"header"`

	Width  int   `json:"width"`
	Height int   `json:"height"`
	Seed   int64 `json:"seed"`

	Terrain []uint8  `json:"terrain"` // row-major terrain codes
	Nodes   []NodeV1 `json:"nodes"`
	Clock   ClockV1  `json:"clock"`

	NextAgentID uint64 `json:"next_agent_id"`
	Tick        uint64 `json:"tick"`
}

type NodeV1 struct {
	Type        string  `json:"type"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Quantity    int     `json:"quantity"`
	MaxQuantity int     `json:"max_quantity"`
	RegenRate   float64 `json:"regen_rate"`
}

type ClockV1 struct {
	Elapsed   float64 `json:"elapsed"`
	DayLength float64 `json:"day_length"`
	Day       int     `json:"day"`
}

// Path is where the snapshot for tick lives under a world directory.
func Path(worldDir string, tick uint64) string {
	return filepath.Join(worldDir, "snapshots", fmt.Sprintf("%d%s", tick, fileSuffix))
}

func WriteSnapshot(path string, snap WorldSnapshotV1) (err error) {
	if snap.Header.Version == 0 {
		snap.Header.Version = Version
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func ReadSnapshot(path string) (WorldSnapshotV1, error) {
	var snap WorldSnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	if _, err := readHeader(br); err != nil {
		return snap, err
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("snapshot %s: unsupported version %d", path, snap.Header.Version)
	}
	return snap, nil
}

// ReadHeader decodes only the JSON header line.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return Header{}, err
	}
	defer dec.Close()
	return readHeader(bufio.NewReader(dec))
}

func readHeader(br *bufio.Reader) (Header, error) {
	var h Header
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("snapshot header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("snapshot header: %w", err)
	}
	return h, nil
}

// Latest returns the snapshot with the highest tick under worldDir.
func Latest(worldDir string) (string, uint64, error) {
	entries, err := os.ReadDir(filepath.Join(worldDir, "snapshots"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", 0, ErrNoSnapshot
		}
		return "", 0, err
	}
	var ticks []uint64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, fileSuffix), 10, 64)
		if err != nil {
			continue
		}
		ticks = append(ticks, tick)
	}
	if len(ticks) == 0 {
		return "", 0, ErrNoSnapshot
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })
	tick := ticks[len(ticks)-1]
	return Path(worldDir, tick), tick, nil
}
