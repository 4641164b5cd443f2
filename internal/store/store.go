// Package store persists frameworks, criteria, and definitions in SQLite.
// It is a thin CRUD layer: all reconciliation logic lives above it, and the
// only invariant it enforces itself is criterion-name uniqueness per
// framework.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/textnorm"
)

const schema = `
	CREATE TABLE IF NOT EXISTS data_sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		imported_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS frameworks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		authors TEXT NOT NULL DEFAULT '',
		year INTEGER,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		objectives TEXT NOT NULL DEFAULT '',
		methodology TEXT NOT NULL DEFAULT '',
		algorithm_used TEXT NOT NULL DEFAULT '',
		top_model TEXT NOT NULL DEFAULT '',
		accuracy TEXT NOT NULL DEFAULT '',
		advantages TEXT NOT NULL DEFAULT '',
		drawbacks TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		data_source_id INTEGER REFERENCES data_sources(id),
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_frameworks_name ON frameworks(name);
	CREATE INDEX IF NOT EXISTS idx_frameworks_year ON frameworks(year);

	CREATE TABLE IF NOT EXISTS criteria (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		framework_id INTEGER NOT NULL REFERENCES frameworks(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		name_normalized TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE (framework_id, name_normalized)
	);
	CREATE INDEX IF NOT EXISTS idx_criteria_name ON criteria(name_normalized);

	CREATE TABLE IF NOT EXISTS definitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		criterion_id INTEGER NOT NULL REFERENCES criteria(id) ON DELETE CASCADE,
		definition_text TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_definitions_criterion ON definitions(criterion_id);
`

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path. Use ":memory:" for an
// ephemeral store.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsConstraintViolation reports whether err stems from the
// (framework, normalized criterion name) uniqueness constraint. Reaching it
// means the matcher failed to detect a duplicate — a bug, not a user error.
func IsConstraintViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateDataSource inserts a provenance record and sets its ID.
func (s *Store) CreateDataSource(ds *model.DataSource) error {
	if ds.ImportedAt.IsZero() {
		ds.ImportedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(
		`INSERT INTO data_sources (label, kind, imported_at) VALUES (?, ?, ?)`,
		ds.Label, ds.Kind, ds.ImportedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert data source: %w", err)
	}
	ds.ID, err = res.LastInsertId()
	return err
}

// CreateFramework inserts a framework and sets its ID and timestamps.
func (s *Store) CreateFramework(fw *model.Framework) error {
	now := time.Now().UTC()
	fw.CreatedAt, fw.UpdatedAt = now, now
	res, err := s.db.Exec(`
		INSERT INTO frameworks
			(name, authors, year, title, description, objectives, methodology,
			 algorithm_used, top_model, accuracy, advantages, drawbacks, source,
			 data_source_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fw.Name, fw.Authors, nullableInt(fw.Year), fw.Title, fw.Description,
		fw.Objectives, fw.Methodology, fw.AlgorithmUsed, fw.TopModel,
		fw.Accuracy, fw.Advantages, fw.Drawbacks, fw.Source,
		nullableInt64(fw.DataSourceID), now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert framework %q: %w", fw.Name, err)
	}
	fw.ID, err = res.LastInsertId()
	return err
}

// UpdateFramework writes all mutable fields of fw.
func (s *Store) UpdateFramework(fw *model.Framework) error {
	fw.UpdatedAt = time.Now().UTC()
	_, err := s.db.Exec(`
		UPDATE frameworks SET
			name = ?, authors = ?, year = ?, title = ?, description = ?,
			objectives = ?, methodology = ?, algorithm_used = ?, top_model = ?,
			accuracy = ?, advantages = ?, drawbacks = ?, source = ?,
			data_source_id = ?, updated_at = ?
		WHERE id = ?`,
		fw.Name, fw.Authors, nullableInt(fw.Year), fw.Title, fw.Description,
		fw.Objectives, fw.Methodology, fw.AlgorithmUsed, fw.TopModel,
		fw.Accuracy, fw.Advantages, fw.Drawbacks, fw.Source,
		nullableInt64(fw.DataSourceID), fw.UpdatedAt.Unix(), fw.ID,
	)
	if err != nil {
		return fmt.Errorf("update framework %d: %w", fw.ID, err)
	}
	return nil
}

// DeleteFramework removes a framework. Criteria and definitions cascade.
func (s *Store) DeleteFramework(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM frameworks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete framework %d: %w", id, err)
	}
	return nil
}

// CreateCriterion inserts a criterion and sets its ID. The normalized name
// column backs the per-framework uniqueness constraint.
func (s *Store) CreateCriterion(c *model.Criterion) error {
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	res, err := s.db.Exec(`
		INSERT INTO criteria
			(framework_id, name, name_normalized, description, category, position,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.FrameworkID, c.Name, textnorm.Normalize(c.Name), c.Description,
		c.Category, c.Position, now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert criterion %q: %w", c.Name, err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

// UpdateCriterion writes all mutable fields of c, including a reparenting
// framework_id change.
func (s *Store) UpdateCriterion(c *model.Criterion) error {
	c.UpdatedAt = time.Now().UTC()
	_, err := s.db.Exec(`
		UPDATE criteria SET
			framework_id = ?, name = ?, name_normalized = ?, description = ?,
			category = ?, position = ?, updated_at = ?
		WHERE id = ?`,
		c.FrameworkID, c.Name, textnorm.Normalize(c.Name), c.Description,
		c.Category, c.Position, c.UpdatedAt.Unix(), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update criterion %d: %w", c.ID, err)
	}
	return nil
}

// DeleteCriterion removes a criterion. Definitions cascade.
func (s *Store) DeleteCriterion(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM criteria WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete criterion %d: %w", id, err)
	}
	return nil
}

// CreateDefinition inserts a definition and sets its ID.
func (s *Store) CreateDefinition(d *model.Definition) error {
	d.CreatedAt = time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO definitions (criterion_id, definition_text, notes, created_at) VALUES (?, ?, ?, ?)`,
		d.CriterionID, d.Text, d.Notes, d.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert definition: %w", err)
	}
	d.ID, err = res.LastInsertId()
	return err
}

// ReparentDefinition moves a definition under another criterion.
func (s *Store) ReparentDefinition(id, criterionID int64) error {
	if _, err := s.db.Exec(`UPDATE definitions SET criterion_id = ? WHERE id = ?`, criterionID, id); err != nil {
		return fmt.Errorf("reparent definition %d: %w", id, err)
	}
	return nil
}

// DeleteDefinition removes a definition.
func (s *Store) DeleteDefinition(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM definitions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete definition %d: %w", id, err)
	}
	return nil
}

// ListFrameworks returns bare framework rows (no children) in display
// order: newest year first, then name; frameworks without a year sort last.
func (s *Store) ListFrameworks() ([]*model.Framework, error) {
	rows, err := s.db.Query(frameworkSelect + ` ORDER BY year IS NULL, year DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list frameworks: %w", err)
	}
	defer rows.Close()
	return scanFrameworks(rows)
}

// LoadSnapshot loads every framework with its criteria and definitions,
// ordered by creation so reconciliation passes are deterministic.
func (s *Store) LoadSnapshot() (*model.Snapshot, error) {
	rows, err := s.db.Query(frameworkSelect + ` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	frameworks, err := scanFrameworks(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*model.Framework, len(frameworks))
	for _, fw := range frameworks {
		byID[fw.ID] = fw
	}

	crows, err := s.db.Query(`
		SELECT id, framework_id, name, description, category, position, created_at, updated_at
		FROM criteria ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("load criteria: %w", err)
	}
	criteria := make(map[int64]*model.Criterion)
	for crows.Next() {
		c := &model.Criterion{}
		var created, updated int64
		if err := crows.Scan(&c.ID, &c.FrameworkID, &c.Name, &c.Description,
			&c.Category, &c.Position, &created, &updated); err != nil {
			crows.Close()
			return nil, fmt.Errorf("scan criterion: %w", err)
		}
		c.CreatedAt = time.Unix(created, 0).UTC()
		c.UpdatedAt = time.Unix(updated, 0).UTC()
		criteria[c.ID] = c
		if fw, ok := byID[c.FrameworkID]; ok {
			fw.Criteria = append(fw.Criteria, c)
		}
	}
	crows.Close()
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("iterate criteria: %w", err)
	}

	drows, err := s.db.Query(`
		SELECT id, criterion_id, definition_text, notes, created_at
		FROM definitions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	for drows.Next() {
		d := &model.Definition{}
		var created int64
		if err := drows.Scan(&d.ID, &d.CriterionID, &d.Text, &d.Notes, &created); err != nil {
			drows.Close()
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		d.CreatedAt = time.Unix(created, 0).UTC()
		if c, ok := criteria[d.CriterionID]; ok {
			c.Definitions = append(c.Definitions, d)
		}
	}
	drows.Close()
	if err := drows.Err(); err != nil {
		return nil, fmt.Errorf("iterate definitions: %w", err)
	}

	return &model.Snapshot{Frameworks: frameworks}, nil
}

// Counts returns the number of frameworks, criteria, and definitions.
func (s *Store) Counts() (frameworks, criteria, definitions int, err error) {
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM frameworks`).Scan(&frameworks); err != nil {
		return
	}
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM criteria`).Scan(&criteria); err != nil {
		return
	}
	err = s.db.QueryRow(`SELECT COUNT(*) FROM definitions`).Scan(&definitions)
	return
}

const frameworkSelect = `
	SELECT id, name, authors, year, title, description, objectives, methodology,
	       algorithm_used, top_model, accuracy, advantages, drawbacks, source,
	       data_source_id, created_at, updated_at
	FROM frameworks`

func scanFrameworks(rows *sql.Rows) ([]*model.Framework, error) {
	var out []*model.Framework
	for rows.Next() {
		fw := &model.Framework{}
		var year sql.NullInt64
		var dataSource sql.NullInt64
		var created, updated int64
		if err := rows.Scan(&fw.ID, &fw.Name, &fw.Authors, &year, &fw.Title,
			&fw.Description, &fw.Objectives, &fw.Methodology, &fw.AlgorithmUsed,
			&fw.TopModel, &fw.Accuracy, &fw.Advantages, &fw.Drawbacks, &fw.Source,
			&dataSource, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan framework: %w", err)
		}
		if year.Valid {
			y := int(year.Int64)
			fw.Year = &y
		}
		if dataSource.Valid {
			id := dataSource.Int64
			fw.DataSourceID = &id
		}
		fw.CreatedAt = time.Unix(created, 0).UTC()
		fw.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, fw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frameworks: %w", err)
	}
	return out, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
