package memory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/criticalinsight/sly/pkg/protocol"
)

// AddNode inserts a single node (and its out-edges) as a one-element batch.
func (s *Store) AddNode(ctx context.Context, node GraphNode) error {
	return s.BatchAddNodes(ctx, []GraphNode{node})
}

// BatchAddNodes computes embeddings for every node's content in one batch,
// then inserts the nodes and their out-edges inside a single transaction.
// One "batch_add_nodes" event is appended per call.
func (s *Store) BatchAddNodes(ctx context.Context, nodes []GraphNode) error {
	if len(nodes) == 0 {
		return nil
	}

	contents := make([]string, len(nodes))
	for i, n := range nodes {
		contents[i] = n.Content
	}
	vectors := s.embedder.BatchEmbed(contents)

	col, err := s.vectors.Collection(ctx, "nodes")
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	nodeStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO nodes (id, content, node_type, path) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer nodeStmt.Close()

	edgeStmt, err := tx.PrepareContext(ctx, `INSERT INTO edges (from_id, to_id, rel_type) VALUES (?, ?, 'related')`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	paths := make([]string, 0, len(nodes))
	for i, n := range nodes {
		if _, err := nodeStmt.ExecContext(ctx, n.ID, n.Content, n.Type, n.Path); err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
		for _, to := range n.Edges {
			if _, err := edgeStmt.ExecContext(ctx, n.ID, to); err != nil {
				return fmt.Errorf("insert edge %s->%s: %w", n.ID, to, err)
			}
		}
		if err := col.Insert(ctx, vectorEntry(n.ID, n.Content, vectors[i])); err != nil {
			return fmt.Errorf("insert node vector %s: %w", n.ID, err)
		}
		paths = append(paths, n.Path)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return s.RecordEvent(ctx, protocol.OpBatchAddNodes, map[string]any{
		"count": len(nodes),
		"paths": paths,
	})
}

// FindRelated returns the k nodes whose embeddings are nearest to query's,
// ascending by distance.
func (s *Store) FindRelated(ctx context.Context, query string, k int) ([]RelatedNode, error) {
	vec := s.embedder.Embed(query)

	col, err := s.vectors.Collection(ctx, "nodes")
	if err != nil {
		return nil, err
	}
	hits, err := col.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("find_related search: %w", err)
	}

	out := make([]RelatedNode, 0, len(hits))
	for _, h := range hits {
		node, err := s.getNode(ctx, h.ID)
		if err != nil {
			continue // a vector row without a matching node row is skipped, not fatal
		}
		out = append(out, RelatedNode{Node: node, Distance: h.Distance})
	}
	return out, nil
}

// GetNeighborhood returns the union of nodes sharing key as their path and
// nodes on either side of an edge touching key.
func (s *Store) GetNeighborhood(ctx context.Context, key string) ([]GraphNode, error) {
	seen := make(map[string]GraphNode)

	rows, err := s.db.QueryContext(ctx, `SELECT id, content, node_type, path FROM nodes WHERE path = ? OR id = ?`, key, key)
	if err != nil {
		return nil, fmt.Errorf("get_neighborhood by path: %w", err)
	}
	if err := scanNodesInto(rows, seen); err != nil {
		return nil, err
	}

	edgeRows, err := s.db.QueryContext(ctx, `SELECT from_id, to_id FROM edges WHERE from_id = ? OR to_id = ?`, key, key)
	if err != nil {
		return nil, fmt.Errorf("get_neighborhood edges: %w", err)
	}
	var neighborIDs []string
	for edgeRows.Next() {
		var from, to string
		if err := edgeRows.Scan(&from, &to); err != nil {
			edgeRows.Close()
			return nil, err
		}
		if from == key {
			neighborIDs = append(neighborIDs, to)
		} else {
			neighborIDs = append(neighborIDs, from)
		}
	}
	edgeRows.Close()

	for _, id := range neighborIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		n, err := s.getNode(ctx, id)
		if err == nil {
			seen[id] = n
		}
	}

	out := make([]GraphNode, 0, len(seen))
	for _, n := range seen {
		out = append(out, n)
	}
	return out, nil
}

func scanNodesInto(rows *sql.Rows, seen map[string]GraphNode) error {
	defer rows.Close()
	for rows.Next() {
		var n GraphNode
		if err := rows.Scan(&n.ID, &n.Content, &n.Type, &n.Path); err != nil {
			return err
		}
		seen[n.ID] = n
	}
	return rows.Err()
}

func (s *Store) getNode(ctx context.Context, id string) (GraphNode, error) {
	var n GraphNode
	err := s.db.QueryRowContext(ctx, `SELECT id, content, node_type, path FROM nodes WHERE id = ?`, id).
		Scan(&n.ID, &n.Content, &n.Type, &n.Path)
	return n, err
}
