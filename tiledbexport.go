package ek60

import (
	"errors"
	"math"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

var ErrCreateGridTdb = errors.New("error creating tiledb array for calibrated grid")
var ErrCreateRawTdb = errors.New("error creating tiledb array for raw channel data")

// gridValueAttr's tags drive CreateAttr's attribute + filter pipeline
// construction for the dense grid "value" attribute, the same
// struct-tag-driven schema approach the donor uses for its per-ping
// attitude/SVP records, generalized to the one-attribute-per-grid shape
// every CalibratedGrid/raw power or angle export needs. gridArray always
// resolves tags for the "Value" field; its dtype is always float64 and only
// attrName varies per call.
type gridValueAttr struct {
	Value float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
}

// gridArray builds (but does not populate) a dense 2D TileDB array schema
// sized nrows x ncols, with one compressed "value" attribute. Generalizes
// attitude.go's single-dimension attitude_tiledb_array to the
// two-dimensional ping x sample shape every CalibratedGrid/raw power or
// angle matrix shares.
func gridArray(fileUri string, ctx *tiledb.Context, nrows, ncols uint64, attrName string) error {
	rowTile := uint64(math.Min(500, float64(nrows)))
	colTile := uint64(math.Min(4096, float64(ncols)))

	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}
	defer domain.Free()

	rowDim, err := tiledb.NewDimension(ctx, "ping", tiledb.TILEDB_UINT64, []uint64{0, nrows - 1}, rowTile)
	if err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}
	defer rowDim.Free()

	colDim, err := tiledb.NewDimension(ctx, "sample", tiledb.TILEDB_UINT64, []uint64{0, ncols - 1}, colTile)
	if err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}
	defer colDim.Free()

	if err := domain.AddDimensions(rowDim, colDim); err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_DENSE)
	if err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}
	defer schema.Free()

	if err := schema.SetDomain(domain); err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}
	if err := schema.SetCellOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}
	if err := schema.SetTileOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}

	filtDefs, _ := stgpsr.ParseStruct(&gridValueAttr{}, "filters")
	tdbDefs, _ := stgpsr.ParseStruct(&gridValueAttr{}, "tiledb")
	fieldTdbDefs := make(map[string]stgpsr.Definition)
	for _, v := range tdbDefs["Value"] {
		fieldTdbDefs[v.Name()] = v
	}
	if err := CreateAttr(attrName, filtDefs["Value"], fieldTdbDefs, schema, ctx); err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}

	array, err := tiledb.NewArray(ctx, fileUri)
	if err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}
	defer array.Free()
	return array.Create(schema)
}

// writeGridFloat64 creates and populates a dense 2D array from a ragged
// [][]float64 (rows may differ in length; missing cells are written as
// NaN, matching CalibratedGrid's padding convention).
func writeGridFloat64(fileUri string, ctx *tiledb.Context, attrName string, rows [][]float64) error {
	nrows := uint64(len(rows))
	ncols := uint64(0)
	for _, r := range rows {
		if uint64(len(r)) > ncols {
			ncols = uint64(len(r))
		}
	}
	if nrows == 0 || ncols == 0 {
		return nil
	}

	if err := gridArray(fileUri, ctx, nrows, ncols, attrName); err != nil {
		return err
	}

	flat := make([]float64, nrows*ncols)
	for i := range flat {
		flat[i] = math.NaN()
	}
	for i, r := range rows {
		for j, v := range r {
			flat[uint64(i)*ncols+uint64(j)] = v
		}
	}

	array, err := ArrayOpen(ctx, fileUri, tiledb.TILEDB_WRITE)
	if err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}
	defer array.Free()
	defer array.Close()

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}
	defer query.Free()
	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}
	if _, err := query.SetDataBuffer(attrName, flat); err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}
	if err := query.Submit(); err != nil {
		return errors.Join(ErrCreateGridTdb, err)
	}
	return query.Finalize()
}

// ExportCalibratedGrid writes a CalibratedGrid's Data matrix to a dense
// TileDB array at fileUri, then attaches Range/Time as JSON array metadata
// (one-dimensional axis vectors too small to warrant their own array).
func ExportCalibratedGrid(g CalibratedGrid, fileUri string, ctx *tiledb.Context) error {
	if err := writeGridFloat64(fileUri, ctx, "value", g.Data); err != nil {
		return err
	}
	meta := map[string]any{
		"channel_id": g.ChannelID,
		"time":       g.Time,
		"range":      g.Range,
	}
	return WriteArrayMetadata(ctx, fileUri, "axes", meta)
}

// ExportRawChannelData writes one pulse_length group's power (converted to
// dB) and alongship electrical angle (degrees) to two sibling dense TileDB
// arrays under baseUri ("<baseUri>/power", "<baseUri>/angle"); the
// athwartship angle is not exported. Padding cells and rows with a nil
// matrix (ping carried no samples of that kind) export as NaN.
func ExportRawChannelData(c *RawChannelData, pulseLength float64, baseUri string, ctx *tiledb.Context) error {
	g, err := c.Group(pulseLength)
	if err != nil {
		return err
	}

	power := make([][]float64, g.nPings)
	angle := make([][]float64, g.nPings)
	for i := 0; i < g.nPings; i++ {
		if row := g.IndexedPower[i]; row != nil {
			power[i] = PowerRowToDb(row)
		}
		if row := g.IndexedAngle[i]; row != nil {
			out := make([]float64, len(row))
			for j, v := range row {
				if v == AnglePad {
					out[j] = math.NaN()
					continue
				}
				along, _ := DecodeElectricalAngle(v)
				out[j] = along
			}
			angle[i] = out
		}
	}

	if err := writeGridFloat64(baseUri+"/power", ctx, "value", power); err != nil {
		return errors.Join(ErrCreateRawTdb, err)
	}
	if err := writeGridFloat64(baseUri+"/angle", ctx, "value", angle); err != nil {
		return errors.Join(ErrCreateRawTdb, err)
	}

	meta := map[string]any{
		"channel_id":   c.ChannelID,
		"pulse_length": pulseLength,
	}
	return WriteArrayMetadata(ctx, baseUri+"/power", "meta", meta)
}
