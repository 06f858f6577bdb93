package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"carai-site-backend/internal/assistant"
	"carai-site-backend/internal/intake"
	"carai-site-backend/internal/store"
)

func TestRegistrySessionGetOrCreate(t *testing.T) {
	r := store.NewRegistry()
	created := 0
	create := func() *assistant.Session {
		created++
		return assistant.NewSession(nil, &assistant.Persona{Greeting: "hi"}, zap.NewNop().Sugar())
	}

	a := r.Session("s_1", create)
	b := r.Session("s_1", create)
	c := r.Session("s_2", create)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, created)
}

func TestRegistryFormGetOrCreate(t *testing.T) {
	r := store.NewRegistry()
	created := 0
	create := func() *intake.Form {
		created++
		return intake.NewForm(intake.DefaultService, intake.Options{})
	}

	a := r.Form("s_1", create)
	b := r.Form("s_1", create)

	assert.Same(t, a, b)
	assert.Equal(t, 1, created)

	// a mutation through one handle is visible through the other
	a.SetField("fullName", "Jane Doe")
	assert.Equal(t, "Jane Doe", b.View().Values["fullName"])
}

func TestRegistrySessionAndFormAreIndependent(t *testing.T) {
	r := store.NewRegistry()
	_ = r.Form("s_1", func() *intake.Form {
		return intake.NewForm(intake.DefaultService, intake.Options{})
	})
	s := r.Session("s_1", func() *assistant.Session {
		return assistant.NewSession(nil, &assistant.Persona{Greeting: "hi"}, zap.NewNop().Sugar())
	})
	assert.NotNil(t, s)
}
