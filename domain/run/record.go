// Package run describes a finished recovery run as stored in the run ledger.
package run

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gocrack/domain/core"
	"gocrack/domain/series"
)

// Settings are the search parameters that determine a run's outcome
type Settings struct {
	Iterations    int     `db:"iterations" json:"iterations"`
	MaxBit        int     `db:"max_bit" json:"max_bit"`
	BitCycles     int     `db:"bit_cycles" json:"bit_cycles"`
	T0            float64 `db:"t0" json:"t0"`
	K             float64 `db:"k" json:"k"`
	Width         int     `db:"width" json:"width"`
	Restarts      int     `db:"restarts" json:"restarts"`
	Rebase        bool    `db:"rebase" json:"rebase"`
	FixedBaseline bool    `db:"fixed_baseline" json:"fixed_baseline"`
}

// Record is one ledger row
type Record struct {
	ID     core.RunID `db:"id" json:"id"`
	Source string     `db:"source" json:"source"`
	Seed   int64      `db:"seed" json:"seed"`

	Days     int `db:"days" json:"days"`
	Measures int `db:"measures" json:"measures"`
	Settings

	InitialEnergy float64  `db:"initial_energy" json:"initial_energy"`
	FinalEnergy   float64  `db:"final_energy" json:"final_energy"`
	PlainEnergy   *float64 `db:"plain_energy" json:"plain_energy,omitempty"`
	KeyMatch      *float64 `db:"key_match" json:"key_match,omitempty"`

	Mask        string    `db:"mask" json:"mask"`
	Fingerprint string    `db:"fingerprint" json:"fingerprint"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// NewRecord stamps a fresh ID, fingerprint and creation time
func NewRecord(source string, ct *series.Matrix, seed int64, settings Settings) *Record {
	return &Record{
		ID:          core.NewRunID(),
		Source:      source,
		Seed:        seed,
		Days:        ct.Days(),
		Measures:    ct.Measures(),
		Settings:    settings,
		Fingerprint: Fingerprint(ct, seed, settings),
		CreatedAt:   time.Now().UTC(),
	}
}

// Fingerprint identifies a replayable run: the same ciphertext, seed and
// settings give the same fingerprint and, with the same code, the same mask.
// The choice between full and incremental energy is left out; both produce
// identical energies.
func Fingerprint(ct *series.Matrix, seed int64, settings Settings) string {
	h := sha256.New()
	var word [4]byte
	for r := 0; r < ct.Days(); r++ {
		for _, v := range ct.Row(r) {
			binary.LittleEndian.PutUint32(word[:], uint32(v))
			h.Write(word[:])
		}
	}
	fmt.Fprintf(h, "|shape:%dx%d|seed:%d|iters:%d|bmax:%d|cycles:%d|t0:%g|k:%g|width:%d|restarts:%d|rebase:%t|fixed:%t",
		ct.Days(), ct.Measures(), seed,
		settings.Iterations, settings.MaxBit, settings.BitCycles, settings.T0, settings.K,
		settings.Width, settings.Restarts, settings.Rebase, settings.FixedBaseline)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// EncodeMask renders a keystream as space separated hex words
func EncodeMask(k series.Keystream) string {
	words := make([]string, len(k))
	for i, w := range k {
		words[i] = fmt.Sprintf("%08x", w)
	}
	return strings.Join(words, " ")
}

// DecodeMask parses the output of EncodeMask
func DecodeMask(s string) (series.Keystream, error) {
	fields := strings.Fields(s)
	k := make(series.Keystream, len(fields))
	for i, f := range fields {
		w, err := strconv.ParseUint(f, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("mask word %d: %w", i, err)
		}
		k[i] = uint32(w)
	}
	return k, nil
}
