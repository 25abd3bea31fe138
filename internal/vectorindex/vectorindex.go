// Package vectorindex keeps the memory store's three vector-backed tables
// (cache, nodes, library) in LanceDB. Tables are created without a vector
// index: Search runs LanceDB's nearest-neighbour VectorSearch over the
// vector column, and the HNSW values below are not passed to LanceDB.
package vectorindex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	arrowmem "github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/lancedb/lancedb-go/pkg/contracts"
	"github.com/lancedb/lancedb-go/pkg/lancedb"
)

// Dimension is the embedding width fixed by the embedding engine.
const Dimension = 384

// HNSW tuning values. Nothing in this package applies them; no table has an
// HNSW index.
const (
	IndexM             = 50
	IndexEfConstruction = 200
	SearchEf            = 100
)

// Entry is one row of a vector-indexed collection.
type Entry struct {
	ID       string
	Content  string
	Vector   []float32
	Distance float32 // populated on Search results only
}

// Collection is one LanceDB table, opened or created lazily under a shared
// connection — one per memory table that carries an embedding column
// (cache, nodes, library).
type Collection struct {
	table  contracts.ITable
	schema *arrow.Schema
}

// Store owns the LanceDB connection shared by every Collection.
type Store struct {
	conn contracts.IConnection
	cols map[string]*Collection
}

// Open connects to (or creates) the LanceDB directory at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create vector index dir: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	conn, err := lancedb.Connect(ctx, abs, nil)
	if err != nil {
		return nil, fmt.Errorf("connect lancedb at %s: %w", abs, err)
	}
	return &Store{conn: conn, cols: make(map[string]*Collection)}, nil
}

// Close releases every open table and the connection.
func (s *Store) Close() error {
	for _, c := range s.cols {
		c.table.Close()
	}
	return s.conn.Close()
}

// Collection opens (creating if absent) the named table with the fixed
// id/content/vector schema every memory table shares.
func (s *Store) Collection(ctx context.Context, name string) (*Collection, error) {
	if c, ok := s.cols[name]; ok {
		return c, nil
	}

	fields := []arrow.Field{
		{Name: "id", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "content", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "vector", Type: arrow.FixedSizeListOf(int32(Dimension), arrow.PrimitiveTypes.Float32), Nullable: false},
	}
	arrowSchema := arrow.NewSchema(fields, nil)

	table, err := s.conn.OpenTable(ctx, name)
	if err != nil {
		schema, err := lancedb.NewSchema(arrowSchema)
		if err != nil {
			return nil, fmt.Errorf("build schema for %s: %w", name, err)
		}
		table, err = s.conn.CreateTable(ctx, name, schema)
		if err != nil {
			return nil, fmt.Errorf("create table %s: %w", name, err)
		}
	}

	c := &Collection{table: table, schema: arrowSchema}
	s.cols[name] = c
	return c, nil
}

// Insert adds one id/content/vector row.
func (c *Collection) Insert(ctx context.Context, e Entry) error {
	record, err := c.toRecord(e)
	if err != nil {
		return err
	}
	defer record.Release()
	return c.table.Add(ctx, record, nil)
}

// Search returns the k nearest rows to query, ascending by distance —
// the k-nearest lookup every memory search operation is built on.
func (c *Collection) Search(ctx context.Context, query []float32, k int) ([]Entry, error) {
	rows, err := c.table.VectorSearch(ctx, "vector", query, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		e := rowToEntry(row)
		if e != nil {
			out = append(out, *e)
		}
	}
	return out, nil
}

// Delete removes rows matching a LanceDB SQL filter expression, e.g.
// "id = 'x'".
func (c *Collection) Delete(ctx context.Context, filterExpr string) error {
	return c.table.Delete(ctx, filterExpr)
}

func (c *Collection) toRecord(e Entry) (arrow.Record, error) {
	pool := arrowmem.NewGoAllocator()

	idB := array.NewStringBuilder(pool)
	idB.Append(e.ID)
	idArr := idB.NewArray()
	defer idArr.Release()

	contentB := array.NewStringBuilder(pool)
	contentB.Append(e.Content)
	contentArr := contentB.NewArray()
	defer contentArr.Release()

	vectorArr, err := buildVectorArray(pool, e.Vector)
	if err != nil {
		return nil, err
	}
	defer vectorArr.Release()

	cols := []arrow.Array{idArr, contentArr, vectorArr}
	return array.NewRecord(c.schema, cols, 1), nil
}

func buildVectorArray(pool arrowmem.Allocator, vec []float32) (arrow.Array, error) {
	if len(vec) != Dimension {
		return nil, fmt.Errorf("vector dimension mismatch: expected %d, got %d", Dimension, len(vec))
	}
	floatB := array.NewFloat32Builder(pool)
	floatB.AppendValues(vec, nil)
	floatArr := floatB.NewArray()
	defer floatArr.Release()

	listType := arrow.FixedSizeListOf(int32(Dimension), arrow.PrimitiveTypes.Float32)
	listData := array.NewData(listType, 1, []*arrowmem.Buffer{nil},
		[]arrow.ArrayData{floatArr.Data()}, 0, 0)
	return array.NewFixedSizeListData(listData), nil
}

func rowToEntry(row map[string]interface{}) *Entry {
	e := &Entry{}
	if v, ok := row["id"].(string); ok {
		e.ID = v
	}
	if v, ok := row["content"].(string); ok {
		e.Content = v
	}
	if v, ok := toFloat32(row["_distance"]); ok {
		e.Distance = v
	}
	if e.ID == "" {
		return nil
	}
	return e
}

func toFloat32(v interface{}) (float32, bool) {
	switch n := v.(type) {
	case float32:
		return n, true
	case float64:
		return float32(n), true
	}
	return 0, false
}
