package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carai-site-backend/internal/intake"
	"carai-site-backend/internal/store"
)

func testLead(email string) store.Lead {
	return store.NewLead(intake.Payload{
		ServiceType: intake.ServiceOnePage,
		FullName:    "Jane Doe",
		Email:       email,
		Message:     "A landing page",
		Fields:      map[string]any{"goal": "A landing page"},
	})
}

func TestFileLeadStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.jsonl")
	s := store.NewFileLeadStore(path)

	require.NoError(t, s.SaveLead(testLead("first@example.com")))
	require.NoError(t, s.SaveLead(testLead("second@example.com")))

	leads, err := s.RecentLeads(50)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	// newest first
	assert.Equal(t, "second@example.com", leads[0].Email)
	assert.Equal(t, "first@example.com", leads[1].Email)
	assert.Equal(t, "one-page", leads[0].ServiceType)
	assert.Equal(t, "A landing page", leads[0].Fields["goal"])
}

func TestFileLeadStoreLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.jsonl")
	s := store.NewFileLeadStore(path)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.SaveLead(testLead("lead@example.com")))
	}

	leads, err := s.RecentLeads(3)
	require.NoError(t, err)
	assert.Len(t, leads, 3)
}

func TestFileLeadStoreRejectsMissingEmail(t *testing.T) {
	s := store.NewFileLeadStore(filepath.Join(t.TempDir(), "leads.jsonl"))
	require.Error(t, s.SaveLead(store.Lead{FullName: "Jane Doe"}))
}

func TestFileLeadStoreMissingFile(t *testing.T) {
	s := store.NewFileLeadStore(filepath.Join(t.TempDir(), "absent.jsonl"))
	leads, err := s.RecentLeads(10)
	require.NoError(t, err)
	assert.Nil(t, leads)
}

func TestFileLeadStoreSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.jsonl")
	s := store.NewFileLeadStore(path)
	require.NoError(t, s.SaveLead(testLead("good@example.com")))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("{not json}\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	leads, err := s.RecentLeads(10)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "good@example.com", leads[0].Email)
}
