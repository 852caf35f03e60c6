package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityMapping(t *testing.T) {
	s := New()

	_, ok := s.Identity("a1")
	assert.False(t, ok)

	s.MapIdentity("a1", Identity{ID: 7, DocumentID: "doc7", Type: "article"})

	id, ok := s.Identity("a1")
	require.True(t, ok)
	assert.Equal(t, 7, id.ID)
	assert.Equal(t, "doc7", id.DocumentID)

	all := s.Identities()
	assert.Len(t, all, 1)

	// The returned map is a copy.
	all["a2"] = Identity{ID: 8}
	assert.Len(t, s.Identities(), 1)
}

func TestAssetMapping(t *testing.T) {
	s := New()

	s.MapAsset("image-abc", 3)

	id, ok := s.Asset("image-abc")
	require.True(t, ok)
	assert.Equal(t, 3, id)

	_, ok = s.Asset("image-missing")
	assert.False(t, ok)
}

func TestPendingQueue(t *testing.T) {
	s := New()

	s.Defer(PendingRelation{SourceID: "a1", FieldName: "author"})
	s.Defer(PendingRelation{SourceID: "a2", FieldName: "tags"})
	assert.Equal(t, 2, s.PendingCount())

	pending := s.TakePending()
	require.Len(t, pending, 2)
	assert.Equal(t, "a1", pending[0].SourceID)

	// Taking drains the queue.
	assert.Equal(t, 0, s.PendingCount())
	assert.Empty(t, s.TakePending())
}

func TestErrorLogOrdered(t *testing.T) {
	s := New()

	s.RecordError("assets", "ref1", "missing file")
	s.RecordError("entities", "a1", "rejected")

	errs := s.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "assets", errs[0].Phase)
	assert.Equal(t, "entities", errs[1].Phase)
	assert.Equal(t, "rejected", errs[1].Message)
}

func TestCountersConcurrent(t *testing.T) {
	s := New()
	s.AddEntityTotal(100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%4 == 0 {
				s.EntityFailed()
			} else {
				s.EntityCompleted()
			}
		}(i)
	}
	wg.Wait()

	_, entities, _ := s.Snapshot()
	assert.Equal(t, 100, entities.Total)
	assert.Equal(t, 75, entities.Completed)
	assert.Equal(t, 25, entities.Failed)
}
