package table

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/vizcli/viz/pkg/errors"
)

// Load reads a table from a file, dispatching on the filename suffix.
// Supported suffixes: .csv, .json, .parquet (case-insensitive).
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return LoadReader(f, path)
}

// LoadReader reads a table from an in-memory stream. The filename hint is
// used only for format dispatch; it fails with UNSUPPORTED_FORMAT for any
// suffix outside the supported set.
func LoadReader(r io.Reader, filenameHint string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filenameHint)) {
	case ".csv":
		return readCSV(r)
	case ".json":
		return readJSON(r)
	case ".parquet":
		return readParquet(r)
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedFormat,
			"unsupported format: %s (supported: .csv, .json, .parquet)", filenameHint)
	}
}

// =============================================================================
// CSV
// =============================================================================

// readCSV decodes a headered CSV stream via Arrow's inferring reader, which
// detects numeric, boolean, and string columns from the data.
func readCSV(r io.Reader) (*Table, error) {
	rdr := csv.NewInferringReader(r,
		csv.WithChunk(1024),
		csv.WithHeader(true),
		csv.WithNullReader(true, ""),
	)
	defer rdr.Release()

	var recs []arrow.Record
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()
	for rdr.Next() {
		rec := rdr.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := rdr.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read CSV")
	}
	return fromRecords(recs)
}

// fromRecords converts a sequence of Arrow records sharing a schema into a
// Table by concatenating the per-record chunks column by column.
func fromRecords(recs []arrow.Record) (*Table, error) {
	if len(recs) == 0 {
		return New()
	}
	schema := recs[0].Schema()
	cols := make([]Column, schema.NumFields())
	for i := range schema.NumFields() {
		var values []Value
		for _, rec := range recs {
			chunk, err := fromArrowArray(rec.Column(i))
			if err != nil {
				return nil, err
			}
			values = append(values, chunk...)
		}
		cols[i] = FromValues(schema.Field(i).Name, values)
	}
	return New(cols...)
}

// fromArrowArray converts one Arrow array into cell values. Integer and
// float types map to numbers, temporal and binary types to their string
// forms.
func fromArrowArray(arr arrow.Array) ([]Value, error) {
	n := arr.Len()
	values := make([]Value, n)
	for i := range n {
		if arr.IsNull(i) {
			values[i] = Null()
			continue
		}
		switch a := arr.(type) {
		case *array.Int8:
			values[i] = NumberValue(float64(a.Value(i)))
		case *array.Int16:
			values[i] = NumberValue(float64(a.Value(i)))
		case *array.Int32:
			values[i] = NumberValue(float64(a.Value(i)))
		case *array.Int64:
			values[i] = NumberValue(float64(a.Value(i)))
		case *array.Uint8:
			values[i] = NumberValue(float64(a.Value(i)))
		case *array.Uint16:
			values[i] = NumberValue(float64(a.Value(i)))
		case *array.Uint32:
			values[i] = NumberValue(float64(a.Value(i)))
		case *array.Uint64:
			values[i] = NumberValue(float64(a.Value(i)))
		case *array.Float32:
			values[i] = NumberValue(float64(a.Value(i)))
		case *array.Float64:
			values[i] = NumberValue(a.Value(i))
		case *array.Boolean:
			values[i] = BoolValue(a.Value(i))
		case *array.String:
			values[i] = StringValue(a.Value(i))
		case *array.LargeString:
			values[i] = StringValue(a.Value(i))
		case *array.Timestamp:
			unit := a.DataType().(*arrow.TimestampType).Unit
			values[i] = StringValue(a.Value(i).ToTime(unit).UTC().Format("2006-01-02T15:04:05Z"))
		case *array.Date32:
			values[i] = StringValue(a.Value(i).ToTime().Format("2006-01-02"))
		case *array.Date64:
			values[i] = StringValue(a.Value(i).ToTime().Format("2006-01-02"))
		default:
			return nil, errors.New(errors.ErrCodeUnsupportedFormat,
				"unsupported column type %s", arr.DataType())
		}
	}
	return values, nil
}

// =============================================================================
// Parquet
// =============================================================================

// readParquet decodes a Parquet stream into a Table via pqarrow. The whole
// stream is buffered because Parquet requires random access.
func readParquet(r io.Reader) (*Table, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read parquet stream")
	}

	pf, err := file.NewParquetReader(bytes.NewReader(buf))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open parquet")
	}
	defer pf.Close()

	rdr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read parquet")
	}

	at, err := rdr.ReadTable(context.Background())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode parquet")
	}
	defer at.Release()

	cols := make([]Column, at.NumCols())
	for i := range int(at.NumCols()) {
		var values []Value
		for _, chunk := range at.Column(i).Data().Chunks() {
			vs, err := fromArrowArray(chunk)
			if err != nil {
				return nil, err
			}
			values = append(values, vs...)
		}
		cols[i] = FromValues(at.Column(i).Name(), values)
	}
	return New(cols...)
}

// =============================================================================
// JSON (row-oriented)
// =============================================================================

// readJSON decodes a row-oriented JSON array of objects. Column order is the
// first-seen key order across all rows, which encoding/json maps would lose,
// so objects are walked token by token.
func readJSON(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read JSON")
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"JSON input must be an array of row objects")
	}

	var order []string
	byName := map[string][]Value{}
	row := 0
	for dec.More() {
		if err := readJSONRow(dec, &order, byName, row); err != nil {
			return nil, err
		}
		row++
		// Backfill nulls for columns absent from this row.
		for _, name := range order {
			if len(byName[name]) < row {
				byName[name] = append(byName[name], Null())
			}
		}
	}
	if _, err := dec.Token(); err != nil { // consume closing ']'
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read JSON")
	}

	cols := make([]Column, len(order))
	for i, name := range order {
		cols[i] = FromValues(name, byName[name])
	}
	return New(cols...)
}

// readJSONRow consumes one row object, appending its cells and registering
// newly seen keys in encounter order.
func readJSONRow(dec *json.Decoder, order *[]string, byName map[string][]Value, row int) error {
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read JSON row")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New(errors.ErrCodeInvalidInput, "JSON row %d is not an object", row)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "read JSON row")
		}
		key := keyTok.(string)
		if _, known := byName[key]; !known {
			*order = append(*order, key)
			// Rows before this key first appeared hold nulls. The zero Value
			// is a non-null number, so the backfill must be explicit.
			prior := make([]Value, row)
			for i := range prior {
				prior[i] = Null()
			}
			byName[key] = prior
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode JSON value for %q", key)
		}
		v, err := jsonValue(raw)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "row %d, key %q", row, key)
		}
		byName[key] = append(byName[key], v)
	}
	if _, err := dec.Token(); err != nil { // consume closing '}'
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read JSON row")
	}
	return nil
}

// jsonValue maps a decoded JSON scalar to a cell value.
func jsonValue(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null(), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Value{}, err
		}
		return NumberValue(f), nil
	case string:
		return StringValue(v), nil
	case bool:
		return BoolValue(v), nil
	default:
		return Value{}, fmt.Errorf("nested JSON values are not supported (got %T)", raw)
	}
}
