package testlib

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
)

type Check struct {
	Name     string
	Actual   int
	Expected int
	Pass     bool
}

// Harness collects assertion results for one test scenario and signals
// completion at most once.
type Harness struct {
	checks     []Check
	finished   bool
	FinishFunc func()
}

func NewHarness() *Harness {
	return &Harness{}
}

// Is records a comparison of actual against expected and reports it.
func (h *Harness) Is(actual, expected int, name string) bool {
	pass := actual == expected
	h.checks = append(h.checks, Check{
		Name:     name,
		Actual:   actual,
		Expected: expected,
		Pass:     pass,
	})
	if pass {
		log.Printf("ok %d - %s: %d", len(h.checks), name, actual)
	} else {
		log.Printf("not ok %d - %s: got %d, expected %d", len(h.checks), name, actual, expected)
	}
	return pass
}

// Finish signals completion. Repeat calls are no-ops; finishing with no
// recorded checks is an error.
func (h *Harness) Finish() error {
	if h.finished {
		return nil
	}
	if len(h.checks) == 0 {
		return errors.New("finish without checks")
	}
	h.finished = true
	passed := 0
	for _, c := range h.checks {
		if c.Pass {
			passed++
		}
	}
	log.Printf("finished: %d/%d checks passed", passed, len(h.checks))
	if h.FinishFunc != nil {
		h.FinishFunc()
	}
	return nil
}

func (h *Harness) Finished() bool {
	return h.finished
}

// Passed reports whether every recorded check passed.
func (h *Harness) Passed() bool {
	if len(h.checks) == 0 {
		return false
	}
	for _, c := range h.checks {
		if !c.Pass {
			return false
		}
	}
	return true
}

func (h *Harness) Checks() []Check {
	return h.checks
}

// SaveResults inserts one row per check into resultsTableName, creating the
// table if needed.
func (h *Harness) SaveResults(db *sql.DB, resultsTableName string) error {
	_, err := db.Exec(fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s(Name TEXT, Actual INTEGER, Expected INTEGER, Pass INTEGER)",
		resultsTableName))
	if err != nil {
		return err
	}
	stmt, err := db.Prepare(fmt.Sprintf(
		"INSERT INTO %s(Name, Actual, Expected, Pass) VALUES (?, ?, ?, ?)",
		resultsTableName))
	if err != nil {
		return err
	}
	defer stmt.Close()
	var inserted int64
	for _, c := range h.checks {
		res, err := stmt.Exec(c.Name, c.Actual, c.Expected, c.Pass)
		if err != nil {
			return err
		}
		affect, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted += affect
	}
	log.Printf("rows inserted: %d", inserted)
	return nil
}
