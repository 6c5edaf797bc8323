// Package historytest holds behaviour tests shared by every history.Store.
package historytest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/wardrobe/internal/domain"
	"github.com/vbonduro/wardrobe/internal/history"
)

// Entry returns a text-based entry for userID with recommendation text rec.
func Entry(userID, rec string) domain.HistoryEntry {
	return domain.HistoryEntry{
		UserID:         userID,
		Occasion:       domain.OccasionWork,
		Weather:        domain.WeatherCool,
		Style:          domain.StyleMinimalist,
		Recommendation: rec,
		Timestamp:      "2025-03-01 09:30:00",
	}
}

// Run exercises newStore against the history.Store contract.
func Run(t *testing.T, newStore func(t *testing.T) history.Store) {
	t.Run("LoadUnknownUserIsEmpty", func(t *testing.T) {
		s := newStore(t)
		entries, err := s.Load(context.Background(), "nobody")
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("AppendThenLoad", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		before, err := s.Load(ctx, "7")
		require.NoError(t, err)

		clothing := "T-shirt"
		e := Entry("7", "White tee, denim shorts.")
		e.ClothingType = &clothing
		e.PhotoKey = "7_abc.jpg"
		require.NoError(t, s.Append(ctx, e))

		after, err := s.Load(ctx, "7")
		require.NoError(t, err)
		require.Len(t, after, len(before)+1)
		assert.Equal(t, e, after[len(after)-1])
	})

	t.Run("InsertionOrderPreserved", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		want := []domain.HistoryEntry{
			Entry("42", "first"),
			Entry("42", "second"),
			Entry("42", "third"),
		}
		want[1].Style = ""
		want[2].Weather = domain.WeatherSnowy
		for _, e := range want {
			require.NoError(t, s.Append(ctx, e))
		}

		got, err := s.Load(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("DuplicatesAllowed", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		e := Entry("dup", "same")
		require.NoError(t, s.Append(ctx, e))
		require.NoError(t, s.Append(ctx, e))

		got, err := s.Load(ctx, "dup")
		require.NoError(t, err)
		assert.Equal(t, []domain.HistoryEntry{e, e}, got)
	})

	t.Run("UsersAreIsolated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Append(ctx, Entry("alice", "a")))
		require.NoError(t, s.Append(ctx, Entry("bob", "b")))

		got, err := s.Load(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].Recommendation)
	})

	t.Run("ConcurrentAppendsAreKept", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		const n = 25

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.Append(ctx, Entry("busy", fmt.Sprintf("rec-%d", i))))
			}(i)
		}
		wg.Wait()

		got, err := s.Load(ctx, "busy")
		require.NoError(t, err)
		assert.Len(t, got, n)
	})

	t.Run("InvalidUserRejected", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		assert.ErrorIs(t, s.Append(ctx, Entry("../escape", "x")), domain.ErrInvalidUserID)
		_, err := s.Load(ctx, "../escape")
		assert.ErrorIs(t, err, domain.ErrInvalidUserID)
	})
}
