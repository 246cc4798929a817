package adapter

import (
	"fmt"

	pkg "refit.dev/pkg/refit/pkg"
)

// JournalStore persists the operations applied by a run so they can be
// reviewed later with `refit view`.
type JournalStore interface {
	// Record replaces the journal with the operations of the latest run.
	Record(ops []AppliedOp) error
	// LastRun returns the operations of the most recent recorded run.
	LastRun() ([]AppliedOp, error)
}

type fileJournalStore struct {
	path string
}

// NewJournalStore constructs a JournalStore backed by a gob journal file.
func NewJournalStore(path string) JournalStore {
	return &fileJournalStore{path: path}
}

func (s *fileJournalStore) Record(ops []AppliedOp) error {
	journal, err := pkg.NewJournal[AppliedOp](s.path)
	if err != nil {
		return err
	}

	for _, op := range ops {
		if err := journal.Append(op); err != nil {
			_ = journal.Close()
			return fmt.Errorf("failed to journal %s: %w", op.Path, err)
		}
	}

	return journal.Close()
}

func (s *fileJournalStore) LastRun() ([]AppliedOp, error) {
	journal, err := pkg.OpenJournal[AppliedOp](s.path)
	if err != nil {
		return nil, err
	}
	defer journal.Close()

	ops := make([]AppliedOp, 0, journal.Len())

	err = journal.Range(func(_ uint64, op AppliedOp) error {
		ops = append(ops, op)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ops, nil
}
