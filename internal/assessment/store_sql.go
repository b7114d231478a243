package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	now    func() time.Time
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, now: time.Now}
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func notFound(kind string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return err
}

func affectedOrNotFound(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}

// ---- rubrics ----

const rubricCols = `id,name,description,categories_json,max_score,created_at`

type scanner interface{ Scan(dest ...any) error }

func scanRubric(row scanner) (Rubric, error) {
	var (
		r       Rubric
		desc    sql.NullString
		catJSON string
		created int64
	)
	if err := row.Scan(&r.ID, &r.Name, &desc, &catJSON, &r.MaxScore, &created); err != nil {
		return Rubric{}, err
	}
	if desc.Valid {
		r.Description = &desc.String
	}
	if err := json.Unmarshal([]byte(catJSON), &r.Categories); err != nil {
		return Rubric{}, fmt.Errorf("rubric %d categories: %w", r.ID, err)
	}
	r.CreatedAt = fromMillis(created)
	return r, nil
}

func (s *SQLStore) ListRubrics(ctx context.Context) ([]Rubric, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+rubricCols+` FROM rubrics ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Rubric{}
	for rows.Next() {
		r, err := scanRubric(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetRubric(ctx context.Context, id int64) (Rubric, error) {
	r, err := scanRubric(s.db.QueryRowContext(ctx, `SELECT `+rubricCols+` FROM rubrics WHERE id=$1`, id))
	if err != nil {
		return Rubric{}, notFound("rubric", id, err)
	}
	return r, nil
}

func (s *SQLStore) CreateRubric(ctx context.Context, r Rubric) (Rubric, error) {
	cj, err := json.Marshal(r.Categories)
	if err != nil {
		return Rubric{}, err
	}
	r.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO rubrics (name,description,categories_json,max_score,created_at)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		r.Name, r.Description, string(cj), r.MaxScore, toMillis(r.CreatedAt)).Scan(&r.ID)
	if err != nil {
		return Rubric{}, err
	}
	return r, nil
}

func (s *SQLStore) UpdateRubric(ctx context.Context, r Rubric) (Rubric, error) {
	cj, err := json.Marshal(r.Categories)
	if err != nil {
		return Rubric{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE rubrics SET name=$1, description=$2, categories_json=$3, max_score=$4 WHERE id=$5`,
		r.Name, r.Description, string(cj), r.MaxScore, r.ID)
	if err != nil {
		return Rubric{}, err
	}
	if err := affectedOrNotFound(res, "rubric", r.ID); err != nil {
		return Rubric{}, err
	}
	return s.GetRubric(ctx, r.ID)
}

func (s *SQLStore) DeleteRubric(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rubrics WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, "rubric", id)
}

// ---- candidates ----

const candidateCols = `id,name,email,position,created_at`

func scanCandidate(row scanner) (Candidate, error) {
	var (
		c       Candidate
		created int64
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Position, &created); err != nil {
		return Candidate{}, err
	}
	c.CreatedAt = fromMillis(created)
	return c, nil
}

// ListCandidates filters in Go with the same matcher as the memory store.
// SQL LIKE treats % and _ as wildcards and SQLite's LOWER is ASCII only.
func (s *SQLStore) ListCandidates(ctx context.Context, opts CandidateListOpts) ([]Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+candidateCols+` FROM candidates ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	q := strings.ToLower(strings.TrimSpace(opts.Q))
	out := []Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		if q != "" && !matchesCandidate(c, q) {
			continue
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetCandidate(ctx context.Context, id int64) (Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx, `SELECT `+candidateCols+` FROM candidates WHERE id=$1`, id))
	if err != nil {
		return Candidate{}, notFound("candidate", id, err)
	}
	return c, nil
}

func (s *SQLStore) CreateCandidate(ctx context.Context, c Candidate) (Candidate, error) {
	c.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO candidates (name,email,position,created_at) VALUES ($1,$2,$3,$4) RETURNING id`,
		c.Name, c.Email, c.Position, toMillis(c.CreatedAt)).Scan(&c.ID)
	if err != nil {
		return Candidate{}, err
	}
	return c, nil
}

func (s *SQLStore) UpdateCandidate(ctx context.Context, c Candidate) (Candidate, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE candidates SET name=$1, email=$2, position=$3 WHERE id=$4`,
		c.Name, c.Email, c.Position, c.ID)
	if err != nil {
		return Candidate{}, err
	}
	if err := affectedOrNotFound(res, "candidate", c.ID); err != nil {
		return Candidate{}, err
	}
	return s.GetCandidate(ctx, c.ID)
}

func (s *SQLStore) DeleteCandidate(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM candidates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, "candidate", id)
}

// ---- evaluations ----

const evaluationCols = `id,candidate_id,rubric_id,scores_json,overall_score,notes,evaluator_name,status,created_at,updated_at`

func scanEvaluation(row scanner) (Evaluation, error) {
	var (
		e                Evaluation
		sj               string
		notes            sql.NullString
		status           string
		created, updated int64
	)
	if err := row.Scan(&e.ID, &e.CandidateID, &e.RubricID, &sj, &e.OverallScore, &notes,
		&e.EvaluatorName, &status, &created, &updated); err != nil {
		return Evaluation{}, err
	}
	if err := json.Unmarshal([]byte(sj), &e.Scores); err != nil {
		return Evaluation{}, fmt.Errorf("evaluation %d scores: %w", e.ID, err)
	}
	if e.Scores == nil {
		e.Scores = map[string]float64{}
	}
	if notes.Valid {
		e.Notes = &notes.String
	}
	e.Status = Status(status)
	e.CreatedAt = fromMillis(created)
	e.UpdatedAt = fromMillis(updated)
	return e, nil
}

func marshalScores(s map[string]float64) (string, error) {
	if s == nil {
		s = map[string]float64{}
	}
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *SQLStore) ListEvaluations(ctx context.Context, opts EvaluationListOpts) ([]Evaluation, error) {
	sqlStr := `SELECT ` + evaluationCols + ` FROM evaluations`
	var args []any
	if opts.CandidateID != 0 {
		sqlStr += ` WHERE candidate_id=$1`
		args = append(args, opts.CandidateID)
	}
	sqlStr += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetEvaluation(ctx context.Context, id int64) (Evaluation, error) {
	e, err := scanEvaluation(s.db.QueryRowContext(ctx, `SELECT `+evaluationCols+` FROM evaluations WHERE id=$1`, id))
	if err != nil {
		return Evaluation{}, notFound("evaluation", id, err)
	}
	return e, nil
}

func (s *SQLStore) CreateEvaluation(ctx context.Context, e Evaluation) (Evaluation, error) {
	sj, err := marshalScores(e.Scores)
	if err != nil {
		return Evaluation{}, err
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	e.CreatedAt, e.UpdatedAt = now, now
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO evaluations (candidate_id,rubric_id,scores_json,overall_score,notes,evaluator_name,status,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		e.CandidateID, e.RubricID, sj, e.OverallScore, e.Notes, e.EvaluatorName, string(e.Status),
		toMillis(now), toMillis(now)).Scan(&e.ID)
	if err != nil {
		return Evaluation{}, err
	}
	return e, nil
}

func (s *SQLStore) UpdateEvaluation(ctx context.Context, e Evaluation) (Evaluation, error) {
	sj, err := marshalScores(e.Scores)
	if err != nil {
		return Evaluation{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE evaluations SET candidate_id=$1, rubric_id=$2, scores_json=$3, overall_score=$4,
		 notes=$5, evaluator_name=$6, status=$7, updated_at=$8 WHERE id=$9`,
		e.CandidateID, e.RubricID, sj, e.OverallScore, e.Notes, e.EvaluatorName, string(e.Status),
		toMillis(s.now().UTC()), e.ID)
	if err != nil {
		return Evaluation{}, err
	}
	if err := affectedOrNotFound(res, "evaluation", e.ID); err != nil {
		return Evaluation{}, err
	}
	return s.GetEvaluation(ctx, e.ID)
}

func (s *SQLStore) DeleteEvaluation(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM evaluations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, "evaluation", id)
}

func (s *SQLStore) CountEvaluationsFor(ctx context.Context, candidateID, rubricID int64) (int, error) {
	sqlStr := `SELECT COUNT(*) FROM evaluations WHERE 1=1`
	var args []any
	if candidateID != 0 {
		args = append(args, candidateID)
		sqlStr += fmt.Sprintf(` AND candidate_id=$%d`, len(args))
	}
	if rubricID != 0 {
		args = append(args, rubricID)
		sqlStr += fmt.Sprintf(` AND rubric_id=$%d`, len(args))
	}
	var n int
	err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n)
	return n, err
}
