package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/blobfield/internal/grid"
	"github.com/san-kum/blobfield/internal/model"
)

const (
	metadataFile = "metadata.json"
	fieldFile    = "field.csv"
	blobsFile    = "blobs.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// GridMeta mirrors grid.Params for persistence.
type GridMeta struct {
	Nx        int     `json:"nx"`
	Ny        int     `json:"ny"`
	Lx        float64 `json:"lx"`
	Ly        float64 `json:"ly"`
	Dt        float64 `json:"dt"`
	T         float64 `json:"t"`
	TInit     float64 `json:"t_init"`
	PeriodicY bool    `json:"periodic_y"`
}

func GridMetaFrom(p grid.Params) GridMeta {
	return GridMeta{Nx: p.Nx, Ny: p.Ny, Lx: p.Lx, Ly: p.Ly, Dt: p.Dt, T: p.T, TInit: p.TInit, PeriodicY: p.PeriodicY}
}

func (g GridMeta) Params() grid.Params {
	return grid.Params{Nx: g.Nx, Ny: g.Ny, Lx: g.Lx, Ly: g.Ly, Dt: g.Dt, T: g.T, TInit: g.TInit, PeriodicY: g.PeriodicY}
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Timestamp      time.Time          `json:"timestamp"`
	Seed           uint64             `json:"seed"`
	Grid           GridMeta           `json:"grid"`
	NumBlobs       int                `json:"num_blobs"`
	Shape          string             `json:"shape"`
	Factory        string             `json:"factory"`
	Drain          float64            `json:"t_drain,omitempty"`
	DrainProfile   []float64          `json:"t_drain_profile,omitempty"`
	OneDimensional bool               `json:"one_dimensional"`
	Labels         string             `json:"labels"`
	LabelBorder    float64            `json:"label_border"`
	SpeedUp        bool               `json:"speed_up"`
	Tolerance      float64            `json:"tolerance"`
	Elapsed        float64            `json:"elapsed_seconds"`
	Metrics        map[string]float64 `json:"metrics"`
}

// FieldRecord is one sample of field.csv.
type FieldRecord struct {
	Y     float64 `csv:"y"`
	X     float64 `csv:"x"`
	T     float64 `csv:"t"`
	N     float64 `csv:"n"`
	Label float64 `csv:"label"`
}

// BlobRecord is one row of blobs.csv.
type BlobRecord struct {
	ID        int     `csv:"id"`
	Amplitude float64 `csv:"amplitude"`
	WidthProp float64 `csv:"width_prop"`
	WidthPerp float64 `csv:"width_perp"`
	VX        float64 `csv:"v_x"`
	VY        float64 `csv:"v_y"`
	PosX      float64 `csv:"pos_x"`
	PosY      float64 `csv:"pos_y"`
	TInit     float64 `csv:"t_init"`
	Theta     float64 `csv:"theta"`
	Prop      string  `csv:"prop_shape"`
	Perp      string  `csv:"perp_shape"`
}

// Dataset is a stored realization: axes, density and optional labels.
type Dataset struct {
	Grid    *grid.Grid
	Density *grid.Field
	Labels  *grid.Field
}

func DatasetFrom(r *model.Realization) *Dataset {
	return &Dataset{Grid: r.Grid, Density: r.Density, Labels: r.Labels}
}

// Save writes a run directory and returns its id. meta.ID and
// meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, r *model.Realization) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Grid = GridMetaFrom(r.Grid.Params)
	// JSON has no encoding for NaN or Inf.
	for k, v := range meta.Metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			delete(meta.Metrics, k)
		}
	}

	if err := writeJSONFile(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	fieldOut, err := os.Create(filepath.Join(runDir, fieldFile))
	if err != nil {
		return "", err
	}
	defer fieldOut.Close()
	if err := gocsv.Marshal(FieldRecords(DatasetFrom(r)), fieldOut); err != nil {
		return "", fmt.Errorf("write field: %w", err)
	}

	blobsOut, err := os.Create(filepath.Join(runDir, blobsFile))
	if err != nil {
		return "", err
	}
	defer blobsOut.Close()
	if err := gocsv.Marshal(BlobRecords(r), blobsOut); err != nil {
		return "", fmt.Errorf("write blobs: %w", err)
	}

	return runID, nil
}

// FieldRecords flattens a dataset in (y, x, t) order.
func FieldRecords(ds *Dataset) []*FieldRecord {
	g, f := ds.Grid, ds.Density
	records := make([]*FieldRecord, 0, len(f.Data))
	for iy, y := range g.Y {
		for ix, x := range g.X {
			for it, t := range g.T {
				rec := &FieldRecord{Y: y, X: x, T: t, N: f.At(iy, ix, it)}
				if ds.Labels != nil {
					rec.Label = ds.Labels.At(iy, ix, it)
				}
				records = append(records, rec)
			}
		}
	}
	return records
}

func BlobRecords(r *model.Realization) []*BlobRecord {
	records := make([]*BlobRecord, len(r.Blobs))
	for i, b := range r.Blobs {
		p := b.Params()
		records[i] = &BlobRecord{
			ID:        p.ID,
			Amplitude: p.Amplitude,
			WidthProp: p.WidthProp,
			WidthPerp: p.WidthPerp,
			VX:        p.VX,
			VY:        p.VY,
			PosX:      p.PosX,
			PosY:      p.PosY,
			TInit:     p.TInit,
			Theta:     b.Theta(),
			Prop:      p.Prop.String(),
			Perp:      p.Perp.String(),
		}
	}
	return records
}

// List returns the stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadField rebuilds the dataset of a run from its metadata and field.csv.
func (s *Store) LoadField(runID string) (*Dataset, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, fieldFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []*FieldRecord
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, fmt.Errorf("read field: %w", err)
	}

	g := grid.New(meta.Grid.Params())
	ds := &Dataset{Grid: g, Density: g.NewField()}
	if len(records) != len(ds.Density.Data) {
		return nil, fmt.Errorf("field of run %s has %d samples, grid needs %d", runID, len(records), len(ds.Density.Data))
	}
	if meta.Labels != "" && meta.Labels != model.LabelsOff.String() {
		ds.Labels = g.NewField()
	}

	for i, rec := range records {
		ds.Density.Data[i] = rec.N
		if ds.Labels != nil {
			ds.Labels.Data[i] = rec.Label
		}
	}
	return ds, nil
}

func (s *Store) LoadBlobs(runID string) ([]*BlobRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, blobsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []*BlobRecord
	if err := gocsv.UnmarshalFile(file, &records); err != nil && !errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return nil, fmt.Errorf("read blobs: %w", err)
	}
	return records, nil
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
