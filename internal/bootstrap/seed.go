// Package bootstrap seeds the memory store's skills table with the
// baseline skill set the bootstrap_skills directive loads at startup.
package bootstrap

import (
	"context"

	"github.com/criticalinsight/sly/internal/memory"
)

// defaultSkills are seeded once per store; an already-registered name is
// left untouched so user-modified skills survive restarts.
var defaultSkills = []memory.Skill{
	{
		Name:        "summarize_file",
		Code:        `(file) => read(file).slice(0, 4000)`,
		Description: "Read a workspace file and produce a short summary of its purpose.",
		Signature:   "summarize_file(path: string) -> string",
	},
	{
		Name:        "list_definitions",
		Code:        `(file) => definitions(read(file))`,
		Description: "List the named top-level definitions in a source file.",
		Signature:   "list_definitions(path: string) -> [string]",
	},
	{
		Name:        "grep_workspace",
		Code:        `(pattern) => search(pattern)`,
		Description: "Search the workspace for lines matching a pattern.",
		Signature:   "grep_workspace(pattern: string) -> [match]",
	},
}

// Seed registers every default skill missing from the store and reports
// how many were inserted.
func Seed(ctx context.Context, store *memory.Store) (int, error) {
	seeded := 0
	for _, sk := range defaultSkills {
		_, exists, err := store.GetSkill(ctx, sk.Name)
		if err != nil {
			return seeded, err
		}
		if exists {
			continue
		}
		if err := store.RegisterSkill(ctx, sk); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}
