// Package civictest provides in-memory stores for exercising the civic pipeline in tests.
package civictest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/civic-lens/civic-backend/pkg/blobstore"
	civicTypes "github.com/civic-lens/civic-backend/pkg/civic/types"
	"github.com/civic-lens/civic-backend/pkg/db"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrCommit is returned by MemStore.WithTransaction when FailCommit is set.
var ErrCommit = fmt.Errorf("%w: simulated", db.ErrCommitFailed)

// MemStore is an in-memory document store with snapshot based transactions. It implements
// the report store, solution store and transactor of the pipeline.
type MemStore struct {
	mu         sync.Mutex
	reports    map[primitive.ObjectID]civicTypes.Report
	solutions  map[primitive.ObjectID]civicTypes.Solution
	FailCommit bool
	FailWrites error
}

func NewMemStore() *MemStore {
	return &MemStore{
		reports:   map[primitive.ObjectID]civicTypes.Report{},
		solutions: map[primitive.ObjectID]civicTypes.Solution{},
	}
}

func cloneReport(r civicTypes.Report) civicTypes.Report {
	r.Media = append([]string{}, r.Media...)
	r.Upvoters = append([]primitive.ObjectID{}, r.Upvoters...)
	r.Coordinates = append([]civicTypes.Coordinates{}, r.Coordinates...)
	return r
}

func (m *MemStore) snapshot() (map[primitive.ObjectID]civicTypes.Report, map[primitive.ObjectID]civicTypes.Solution) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reports := map[primitive.ObjectID]civicTypes.Report{}
	for k, v := range m.reports {
		reports[k] = cloneReport(v)
	}
	solutions := map[primitive.ObjectID]civicTypes.Solution{}
	for k, v := range m.solutions {
		solutions[k] = v
	}
	return reports, solutions
}

func (m *MemStore) WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	reports, solutions := m.snapshot()
	rollback := func() {
		m.mu.Lock()
		m.reports, m.solutions = reports, solutions
		m.mu.Unlock()
	}
	if err := fn(ctx); err != nil {
		rollback()
		return err
	}
	if m.FailCommit {
		rollback()
		return ErrCommit
	}
	return nil
}

func (m *MemStore) GetReports(ctx context.Context) ([]civicTypes.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []civicTypes.Report{}
	for _, r := range m.reports {
		out = append(out, cloneReport(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) GetReportByID(ctx context.Context, id primitive.ObjectID) (civicTypes.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return civicTypes.Report{}, mongo.ErrNoDocuments
	}
	return cloneReport(r), nil
}

func (m *MemStore) ReportExists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.reports[id]
	return ok, nil
}

func (m *MemStore) AddReport(ctx context.Context, report civicTypes.Report) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return primitive.NilObjectID, m.FailWrites
	}
	m.reports[report.ID] = cloneReport(report)
	return report.ID, nil
}

// modifyReport applies fn to the report under lock, mirroring a single-document update.
func (m *MemStore) modifyReport(id primitive.ObjectID, fn func(r *civicTypes.Report) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	r, ok := m.reports[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if !fn(&r) {
		return mongo.ErrNoDocuments
	}
	m.reports[id] = r
	return nil
}

func (m *MemStore) UpdateReport(ctx context.Context, id primitive.ObjectID, update civicTypes.ReportUpdate) error {
	return m.modifyReport(id, func(r *civicTypes.Report) bool {
		if update.Title != nil {
			r.Title = *update.Title
		}
		if update.Description != nil {
			r.Description = *update.Description
		}
		if update.Coordinates != nil {
			r.Coordinates = update.Coordinates
		}
		if update.Status != nil {
			r.Status = *update.Status
		}
		t := update.LastUpdatedAt
		r.LastUpdatedAt = &t
		return true
	})
}

func (m *MemStore) DeleteReport(ctx context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return false, m.FailWrites
	}
	_, ok := m.reports[id]
	delete(m.reports, id)
	return ok, nil
}

func (m *MemStore) PushReportMedia(ctx context.Context, id primitive.ObjectID, ref string) error {
	return m.modifyReport(id, func(r *civicTypes.Report) bool {
		r.Media = append(r.Media, ref)
		return true
	})
}

func (m *MemStore) PullReportMedia(ctx context.Context, id primitive.ObjectID, ref string) error {
	return m.modifyReport(id, func(r *civicTypes.Report) bool {
		if !r.HasMedia(ref) {
			return false
		}
		kept := []string{}
		for _, existing := range r.Media {
			if existing != ref {
				kept = append(kept, existing)
			}
		}
		r.Media = kept
		return true
	})
}

func (m *MemStore) AddUpvoter(ctx context.Context, id primitive.ObjectID, voterID primitive.ObjectID) error {
	return m.modifyReport(id, func(r *civicTypes.Report) bool {
		if !r.HasUpvoter(voterID) {
			r.Upvoters = append(r.Upvoters, voterID)
		}
		return true
	})
}

func (m *MemStore) RemoveUpvoter(ctx context.Context, id primitive.ObjectID, voterID primitive.ObjectID) error {
	return m.modifyReport(id, func(r *civicTypes.Report) bool {
		kept := []primitive.ObjectID{}
		for _, v := range r.Upvoters {
			if v != voterID {
				kept = append(kept, v)
			}
		}
		r.Upvoters = kept
		return true
	})
}

func (m *MemStore) IsMediaReferenced(ctx context.Context, ref string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.HasMedia(ref) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemStore) GetSolutions(ctx context.Context) ([]civicTypes.Solution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []civicTypes.Solution{}
	for _, s := range m.solutions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) GetSolutionByID(ctx context.Context, id primitive.ObjectID) (civicTypes.Solution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.solutions[id]
	if !ok {
		return civicTypes.Solution{}, mongo.ErrNoDocuments
	}
	return s, nil
}

func (m *MemStore) AddSolution(ctx context.Context, solution civicTypes.Solution) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return primitive.NilObjectID, m.FailWrites
	}
	m.solutions[solution.ID] = solution
	return solution.ID, nil
}

func (m *MemStore) modifySolution(id primitive.ObjectID, fn func(s *civicTypes.Solution)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	s, ok := m.solutions[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	fn(&s)
	m.solutions[id] = s
	return nil
}

func (m *MemStore) UpdateSolution(ctx context.Context, id primitive.ObjectID, update civicTypes.SolutionUpdate) error {
	return m.modifySolution(id, func(s *civicTypes.Solution) {
		if update.Title != nil {
			s.Title = *update.Title
		}
		if update.Description != nil {
			s.Description = *update.Description
		}
		if update.Status != nil {
			s.Status = *update.Status
		}
		t := update.LastUpdatedAt
		s.LastUpdatedAt = &t
	})
}

func (m *MemStore) SetSolutionBudget(ctx context.Context, id primitive.ObjectID, budget *civicTypes.Budget, updatedAt time.Time) error {
	return m.modifySolution(id, func(s *civicTypes.Solution) {
		s.Budget = budget
		s.LastUpdatedAt = &updatedAt
	})
}

func (m *MemStore) DeleteSolution(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.solutions, id)
	return nil
}

func (m *MemStore) DeleteSolutionsForReport(ctx context.Context, reportID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.solutions {
		if s.ReportID == reportID {
			delete(m.solutions, id)
			n++
		}
	}
	return n, nil
}

// MemBlobs is a blob store that only records which references exist.
type MemBlobs struct {
	mu         sync.Mutex
	blobs      map[string]time.Time
	FailPut    bool
	FailRemove bool
	Removed    []string
}

func NewMemBlobs() *MemBlobs {
	return &MemBlobs{blobs: map[string]time.Time{}}
}

func (b *MemBlobs) Reference(name string) string {
	return "mem://" + name
}

func (b *MemBlobs) Put(ctx context.Context, srcPath string, name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailPut {
		return "", &blobstore.StorageError{Op: "put", Ref: name, Err: errors.New("disk full")}
	}
	if err := os.Remove(srcPath); err != nil {
		return "", &blobstore.StorageError{Op: "put", Ref: name, Err: err}
	}
	ref := b.Reference(name)
	b.blobs[ref] = time.Now()
	return ref, nil
}

func (b *MemBlobs) Remove(ctx context.Context, ref string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Removed = append(b.Removed, ref)
	if b.FailRemove {
		return &blobstore.StorageError{Op: "remove", Ref: ref, Err: errors.New("unavailable")}
	}
	delete(b.blobs, ref)
	return nil
}

func (b *MemBlobs) List(ctx context.Context) ([]blobstore.BlobInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []blobstore.BlobInfo{}
	for ref, modTime := range b.blobs {
		out = append(out, blobstore.BlobInfo{Ref: ref, ModTime: modTime})
	}
	return out, nil
}

// Has reports whether ref is currently stored.
func (b *MemBlobs) Has(ref string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[ref]
	return ok
}

// Seed stores ref with the given modification time without going through Put.
func (b *MemBlobs) Seed(ref string, modTime time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[ref] = modTime
}

// StubSpam answers every check with Spam and records the checked texts.
type StubSpam struct {
	Spam  bool
	Calls []string
}

func (s *StubSpam) IsSpam(ctx context.Context, text string) bool {
	s.Calls = append(s.Calls, text)
	return s.Spam
}
