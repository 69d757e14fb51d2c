package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/vitalpath/VitalPath/internal/api"
	"github.com/vitalpath/VitalPath/internal/services"
)

// SQLiteStore is the durable api.Store. Assessment drafts are stored as a
// JSON column; the fields the back office filters and sorts on (email,
// status, created_at) are lifted into their own columns.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

var _ api.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func toNullString(v string) sql.NullString {
	if strings.TrimSpace(v) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func encodeDraft(d services.Draft) (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeDraft(ns sql.NullString) services.Draft {
	var d services.Draft
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return d
	}
	if err := json.Unmarshal([]byte(ns.String), &d); err != nil {
		log.Printf("sqlite store: decode draft: %v", err)
	}
	return d
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func scanAssessment(scan func(dest ...any) error) (*services.Assessment, error) {
	var a services.Assessment
	var email, draft sql.NullString
	var bmi sql.NullFloat64
	var created string
	if err := scan(&a.ID, &email, &a.Status, &bmi, &draft, &created); err != nil {
		return nil, err
	}
	a.Email = email.String
	a.BMI = bmi.Float64
	a.Draft = decodeDraft(draft)
	a.CreatedAt = parseTime(created)
	return &a, nil
}

const assessmentCols = "id, email, status, bmi, draft_json, created_at"

func (s *SQLiteStore) InsertAssessment(a *services.Assessment) (*services.Assessment, error) {
	if a == nil {
		return nil, errors.New("nil assessment")
	}
	draft, err := encodeDraft(a.Draft)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	var bmi sql.NullFloat64
	if a.BMI > 0 {
		bmi = sql.NullFloat64{Float64: a.BMI, Valid: true}
	}
	_, err = s.db.Exec(`INSERT INTO assessments (id, email, status, bmi, draft_json, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, toNullString(a.Email), a.Status, bmi, draft, a.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	cp := *a
	return &cp, nil
}

func (s *SQLiteStore) GetAssessment(id string) (*services.Assessment, error) {
	row := s.db.QueryRow(`SELECT `+assessmentCols+` FROM assessments WHERE id = ?`, id)
	a, err := scanAssessment(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *SQLiteStore) queryAssessments(query string, args ...any) ([]*services.Assessment, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("queryAssessments: rows.Close", cerr)
		}
	}()
	out := []*services.Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) SearchAssessments(email string) ([]*services.Assessment, error) {
	return s.queryAssessments(`SELECT `+assessmentCols+` FROM assessments
      WHERE email IS NOT NULL AND LOWER(email) = LOWER(?) ORDER BY created_at DESC, rowid ASC`, email)
}

func (s *SQLiteStore) ListAssessments(status string) ([]*services.Assessment, error) {
	if status == "" {
		return s.queryAssessments(`SELECT ` + assessmentCols + ` FROM assessments ORDER BY rowid ASC`)
	}
	return s.queryAssessments(`SELECT `+assessmentCols+` FROM assessments WHERE status = ? ORDER BY rowid ASC`, status)
}

func (s *SQLiteStore) UpdateAssessmentStatus(id, status string) (bool, error) {
	res, err := s.db.Exec(`UPDATE assessments SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) DeleteAssessmentsByEmail(email string) (int, error) {
	res, err := s.db.Exec(`DELETE FROM assessments WHERE email IS NOT NULL AND LOWER(email) = LOWER(?)`, email)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *SQLiteStore) AddUser(u *services.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO users (id, email, name, pass_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, strings.ToLower(u.Email), toNullString(u.Name), u.PassHash, created.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) FindUserByEmail(email string) (*services.User, error) {
	row := s.db.QueryRow(`SELECT id, email, name, pass_hash, created_at FROM users WHERE email = LOWER(?)`, email)
	var u services.User
	var name sql.NullString
	var created string
	if err := row.Scan(&u.ID, &u.Email, &name, &u.PassHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Name = name.String
	u.CreatedAt = parseTime(created)
	return &u, nil
}

func (s *SQLiteStore) AddAudit(e services.AuditEntry) {
	ts := e.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO audit_log (ts, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`,
		ts.UTC().Format(time.RFC3339Nano), e.Actor, e.Action, toNullString(e.Target), toNullString(e.Note))
	s.logErr("AddAudit", err)
}

func (s *SQLiteStore) ListAudit() []services.AuditEntry {
	rows, err := s.db.Query(`SELECT ts, actor, action, target, note FROM audit_log ORDER BY rowid DESC LIMIT 500`)
	if err != nil {
		s.logErr("ListAudit: query", err)
		return nil
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListAudit: rows.Close", cerr)
		}
	}()
	out := []services.AuditEntry{}
	for rows.Next() {
		var e services.AuditEntry
		var ts string
		var target, note sql.NullString
		if err := rows.Scan(&ts, &e.Actor, &e.Action, &target, &note); err != nil {
			s.logErr("ListAudit: scan", err)
			return out
		}
		e.Time = parseTime(ts)
		e.Target = target.String
		e.Note = note.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		s.logErr("ListAudit: rows.Err", err)
	}
	return out
}
