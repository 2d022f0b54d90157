package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

type ExportData struct {
	Metadata RunMetadata   `json:"metadata"`
	X        []float64     `json:"x"`
	Y        []float64     `json:"y"`
	T        []float64     `json:"t"`
	N        [][][]float64 `json:"n"`
	Labels   [][][]float64 `json:"blob_labels,omitempty"`
}

// NewExportData nests the fields as [y][x][t].
func NewExportData(meta RunMetadata, ds *Dataset) ExportData {
	data := ExportData{
		Metadata: meta,
		X:        ds.Grid.X,
		Y:        ds.Grid.Y,
		T:        ds.Grid.T,
		N:        nest(ds, false),
	}
	if ds.Labels != nil {
		data.Labels = nest(ds, true)
	}
	return data
}

func nest(ds *Dataset, labels bool) [][][]float64 {
	f := ds.Density
	if labels {
		f = ds.Labels
	}
	out := make([][][]float64, f.Ny)
	for iy := range out {
		out[iy] = make([][]float64, f.Nx)
		for ix := range out[iy] {
			start := f.Index(iy, ix, 0)
			out[iy][ix] = f.Data[start : start+f.Nt]
		}
	}
	return out
}

func WriteJSON(w io.Writer, meta RunMetadata, ds *Dataset) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, ds))
}

func ExportJSON(path string, meta RunMetadata, ds *Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, ds)
}

func ExportJSONStdout(meta RunMetadata, ds *Dataset) error {
	return WriteJSON(os.Stdout, meta, ds)
}

// ExportCSV writes the dataset in the long format of field.csv.
func ExportCSV(path string, ds *Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return gocsv.Marshal(FieldRecords(ds), file)
}

// ProfileRecord is one row of a time-averaged profile export.
type ProfileRecord struct {
	X          float64 `csv:"x"`
	Mean       float64 `csv:"mean"`
	Analytical float64 `csv:"analytical"`
}

func WriteProfileCSV(w io.Writer, records []*ProfileRecord) error {
	return gocsv.Marshal(records, w)
}
