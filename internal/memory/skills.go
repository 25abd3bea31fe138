package memory

import (
	"context"
	"database/sql"
	"fmt"
)

// Skill is a bootstrap-loadable unit of agent capability.
type Skill struct {
	Name        string
	Code        string
	Description string
	Signature   string
}

// RegisterSkill inserts or replaces a skill definition.
func (s *Store) RegisterSkill(ctx context.Context, sk Skill) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO skills (name, code, description, signature) VALUES (?, ?, ?, ?)`,
		sk.Name, sk.Code, sk.Description, sk.Signature)
	if err != nil {
		return fmt.Errorf("register_skill: %w", err)
	}
	return nil
}

// GetSkill looks up a skill by name.
func (s *Store) GetSkill(ctx context.Context, name string) (Skill, bool, error) {
	var sk Skill
	sk.Name = name
	err := s.db.QueryRowContext(ctx, `SELECT code, description, signature FROM skills WHERE name = ?`, name).
		Scan(&sk.Code, &sk.Description, &sk.Signature)
	if err == sql.ErrNoRows {
		return Skill{}, false, nil
	}
	if err != nil {
		return Skill{}, false, fmt.Errorf("get_skill: %w", err)
	}
	return sk, true, nil
}

// AllSkills returns every registered skill, for bootstrap_skills.
func (s *Store) AllSkills(ctx context.Context) ([]Skill, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, code, description, signature FROM skills`)
	if err != nil {
		return nil, fmt.Errorf("all_skills: %w", err)
	}
	defer rows.Close()

	var out []Skill
	for rows.Next() {
		var sk Skill
		if err := rows.Scan(&sk.Name, &sk.Code, &sk.Description, &sk.Signature); err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}
